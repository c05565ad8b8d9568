package domain

// Role is a named grant a user references through User.RoleID.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RolePatch carries the fields of a partial role update.
type RolePatch struct {
	Name        *string
	Description *string
}

func (p RolePatch) Empty() bool {
	return p.Name == nil && p.Description == nil
}

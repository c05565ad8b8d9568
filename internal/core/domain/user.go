package domain

import (
	"fmt"
	"time"
)

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// User models an account managed by the lifecycle service. The role
// association is stored as a bare RoleID; the role itself is resolved on
// demand through the role repository.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	RoleID       string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// UserPatch carries the fields of a partial update. Nil fields are left untouched.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	RoleID       *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil && p.RoleID == nil
}

// UserView is the public, credential-free projection of a User. It is the
// shape returned over the API and the shape stored in the cache.
type UserView struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	LastLogin *time.Time `json:"last_login"`
}

// View projects the user onto its public representation.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		LastLogin: u.LastLogin,
	}
}

// UserCacheKey returns the cache key under which the view of user id is stored.
func UserCacheKey(id string) string {
	return fmt.Sprintf("USER:%s", id)
}

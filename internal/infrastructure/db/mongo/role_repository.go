package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accessdesk/user-service/internal/core/domain"
)

const collectionRoles = "roles"

var errUnexpectedID = errors.New("inserted id is not an ObjectID")

type RoleRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewRoleRepository(db *mongo.Database, timeout time.Duration) *RoleRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RoleRepository{col: db.Collection(collectionRoles), timeout: timeout}
}

type roleDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
}

func (d *roleDocument) toDomain() *domain.Role {
	return &domain.Role{ID: d.ID.Hex(), Name: d.Name, Description: d.Description}
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, domain.NewPersistenceError("list roles", err)
	}
	defer cur.Close(ctx)

	var docs []roleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.NewPersistenceError("list roles", err)
	}

	roles := make([]*domain.Role, 0, len(docs))
	for i := range docs {
		roles = append(roles, docs[i].toDomain())
	}
	return roles, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := objectID(id, domain.ErrRoleNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc roleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate("find role", err, domain.ErrRoleNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc roleDocument
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		return nil, translate("find role by name", err, domain.ErrRoleNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := roleDocument{Name: role.Name, Description: role.Description}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, translate("insert role", err, domain.ErrRoleNotFound, domain.ErrRoleExists)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, domain.NewPersistenceError("insert role", errUnexpectedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *RoleRepository) Update(ctx context.Context, id string, patch domain.RolePatch) (*domain.Role, error) {
	oid, err := objectID(id, domain.ErrRoleNotFound)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc roleDocument
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translate("update role", err, domain.ErrRoleNotFound, domain.ErrRoleExists)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrRoleNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.NewPersistenceError("delete role", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

// EnsureIndexes creates the unique name index on the roles collection.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

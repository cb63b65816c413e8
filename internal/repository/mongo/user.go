package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/chronoflow/internal/apperror"
	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

// CreateUser inserts a user. The unique index on email turns a racing
// duplicate into a duplicate-key error, reported as a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	doc := userDocument{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: time.Now(),
	}

	res, err := db.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("mongo: inserting user (email=%s): %w", user.Email, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("mongo: unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = oid.Hex()
	user.CreatedAt = doc.CreatedAt
	return nil
}

// GetUserByEmail looks a user up by exact email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var doc userDocument
	err := db.users.FindOne(ctx, bson.M{model.FieldOwnerEmail: email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFoundMessage("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: getting user by email: %w", err)
	}
	return doc.toModel(), nil
}

// GetUserByID looks a user up by ObjectID hex. A malformed id is simply not found.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("user", id)
	}

	var doc userDocument
	err = db.users.FindOne(ctx, bson.M{model.FieldID: oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: getting user %s: %w", id, err)
	}
	return doc.toModel(), nil
}

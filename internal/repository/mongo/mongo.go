// Package mongo implements the repository interfaces on MongoDB.
//
// COLLECTIONS:
//
//	users   { _id, username, email (unique), password, created_at }
//	events  { _id, email, title, description, date, time, category, reminder,
//	          photo, soundType, triggered, bgColor, created_at, updated_at }
//
// Documents are decoded into package-private structs carrying bson tags and
// converted to model types at the boundary, so nothing outside this package
// knows about ObjectIDs.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/repository"
)

const (
	usersCollection  = "users"
	eventsCollection = "events"
)

var _ repository.Store = (*DB)(nil)

// DB holds a connected client and the two collections.
type DB struct {
	client *mongo.Client
	users  *mongo.Collection
	events *mongo.Collection
}

// New connects to MongoDB and verifies the connection with a ping.
//
// No timeouts are layered on top of the driver's own defaults; a caller that
// wants a bound on startup passes a context with a deadline.
func New(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}

	db := client.Database(database)
	return &DB{
		client: client,
		users:  db.Collection(usersCollection),
		events: db.Collection(eventsCollection),
	}, nil
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Ping checks the primary is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping: %w", err)
	}
	return nil
}

// ValidID reports whether id is a 24-char hex ObjectID.
func (db *DB) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// EnsureSchema creates the indexes the application relies on. MongoDB
// creates collections lazily, and creating an index that already exists
// with the same definition is a no-op, so this runs on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: model.FieldOwnerEmail, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: creating users.email index: %w", err)
	}

	_, err = db.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: model.FieldOwnerEmail, Value: 1}}},
		{Keys: bson.D{{Key: model.FieldDate, Value: 1}, {Key: model.FieldTime, Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: creating events indexes: %w", err)
	}

	return nil
}

// Stats returns document counts per collection.
func (db *DB) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, 2)
	for name, coll := range map[string]*mongo.Collection{
		usersCollection:  db.users,
		eventsCollection: db.events,
	} {
		n, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("mongo: counting %s: %w", name, err)
		}
		stats[name] = n
	}
	return stats, nil
}

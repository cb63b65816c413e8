// Package repository declares the storage contracts the services depend on.
//
// Two implementations exist: repository/mongo (the document store used in
// production) and repository/sqlite (an embedded store for single-binary
// deployments and for tests). Services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/sakif/chronoflow/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// CreateUser inserts a user and fills in ID and CreatedAt.
	// Returns an apperror.ErrConflict error if the email is taken.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail returns apperror.ErrNotFound when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// EventRepository is the event store.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	ListEventsByOwner(ctx context.Context, ownerEmail string) ([]model.Event, error)
	// UpdateEvent applies the patch and sets updated_at. Returns
	// apperror.ErrNotFound when no document was modified.
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) error
	DeleteEvent(ctx context.Context, id string) error
	// FindDueEvents returns untriggered events whose date and time strings
	// equal the given ones exactly.
	FindDueEvents(ctx context.Context, date, timeOfDay string) ([]model.Event, error)
	// ValidID reports whether id is in the store's native identifier format.
	ValidID(id string) bool
}

// Store is everything the server needs from a backend.
type Store interface {
	UserRepository
	EventRepository
	Ping(ctx context.Context) error
	// EnsureSchema creates collections/tables and indexes. Idempotent.
	EnsureSchema(ctx context.Context) error
	// Stats returns document counts per collection, for diagnostics.
	Stats(ctx context.Context) (map[string]int64, error)
	Close(ctx context.Context) error
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/chronoflow/internal/apperror"
	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/repository"
)

var _ repository.EventRepository = (*DB)(nil)

type eventDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	OwnerEmail      string             `bson:"email"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	Date            string             `bson:"date"`
	Time            string             `bson:"time"`
	Category        string             `bson:"category"`
	ReminderChannel string             `bson:"reminder"`
	Photo           *string            `bson:"photo"`
	SoundType       string             `bson:"soundType"`
	Triggered       bool               `bson:"triggered"`
	Color           string             `bson:"bgColor"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       *time.Time         `bson:"updated_at,omitempty"`
}

func eventToDocument(e *model.Event) eventDocument {
	return eventDocument{
		OwnerEmail:      e.OwnerEmail,
		Title:           e.Title,
		Description:     e.Description,
		Date:            e.Date,
		Time:            e.Time,
		Category:        e.Category,
		ReminderChannel: e.ReminderChannel,
		Photo:           e.Photo,
		SoundType:       e.SoundType,
		Triggered:       e.Triggered,
		Color:           e.Color,
		CreatedAt:       e.CreatedAt,
	}
}

func (d eventDocument) toModel() model.Event {
	return model.Event{
		ID:              d.ID.Hex(),
		OwnerEmail:      d.OwnerEmail,
		Title:           d.Title,
		Description:     d.Description,
		Date:            d.Date,
		Time:            d.Time,
		Category:        d.Category,
		ReminderChannel: d.ReminderChannel,
		Photo:           d.Photo,
		SoundType:       d.SoundType,
		Triggered:       d.Triggered,
		Color:           d.Color,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// dueFilter matches untriggered events at exactly date and timeOfDay.
func dueFilter(date, timeOfDay string) bson.D {
	return bson.D{
		{Key: model.FieldTriggered, Value: false},
		{Key: model.FieldDate, Value: date},
		{Key: model.FieldTime, Value: timeOfDay},
	}
}

// setDocument builds the $set body for a patch. updated_at is always set.
func setDocument(patch model.EventPatch, now time.Time) bson.D {
	fields := patch.Fields()
	set := make(bson.D, 0, len(fields)+1)
	for _, f := range fields {
		set = append(set, bson.E{Key: f.Name, Value: f.Value})
	}
	return append(set, bson.E{Key: model.FieldUpdatedAt, Value: now})
}

// CreateEvent inserts an event and fills in ID and CreatedAt.
func (db *DB) CreateEvent(ctx context.Context, event *model.Event) error {
	event.CreatedAt = time.Now()
	event.UpdatedAt = nil

	res, err := db.events.InsertOne(ctx, eventToDocument(event))
	if err != nil {
		return fmt.Errorf("mongo: creating event: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("mongo: unexpected inserted id type %T", res.InsertedID)
	}
	event.ID = oid.Hex()
	return nil
}

// ListEventsByOwner returns the owner's events in natural order.
func (db *DB) ListEventsByOwner(ctx context.Context, ownerEmail string) ([]model.Event, error) {
	events, err := db.findEvents(ctx, bson.D{{Key: model.FieldOwnerEmail, Value: ownerEmail}})
	if err != nil {
		return nil, fmt.Errorf("mongo: listing events: %w", err)
	}
	return events, nil
}

// FindDueEvents returns untriggered events whose date and time match exactly.
func (db *DB) FindDueEvents(ctx context.Context, date, timeOfDay string) ([]model.Event, error) {
	events, err := db.findEvents(ctx, dueFilter(date, timeOfDay))
	if err != nil {
		return nil, fmt.Errorf("mongo: finding due events: %w", err)
	}
	return events, nil
}

// UpdateEvent $sets the patched fields. A zero ModifiedCount, whether the id
// is unknown or nothing changed, is reported as not found.
func (db *DB) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFoundMessage("Event not found or no changes made")
	}

	res, err := db.events.UpdateOne(ctx,
		bson.D{{Key: model.FieldID, Value: oid}},
		bson.D{{Key: "$set", Value: setDocument(patch, time.Now())}},
	)
	if err != nil {
		return fmt.Errorf("mongo: updating event %s: %w", id, err)
	}
	if res.ModifiedCount == 0 {
		return apperror.NotFoundMessage("Event not found or no changes made")
	}
	return nil
}

// DeleteEvent removes one event by id.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFoundMessage("Event not found")
	}

	res, err := db.events.DeleteOne(ctx, bson.D{{Key: model.FieldID, Value: oid}})
	if err != nil {
		return fmt.Errorf("mongo: deleting event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFoundMessage("Event not found")
	}
	return nil
}

func (db *DB) findEvents(ctx context.Context, filter bson.D) ([]model.Event, error) {
	cursor, err := db.events.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}

	events := make([]model.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toModel())
	}
	return events, nil
}

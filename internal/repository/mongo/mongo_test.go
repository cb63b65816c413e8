package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/chronoflow/internal/model"
)

// These tests cover the pure conversion helpers. Anything touching a live
// server belongs in an integration suite run against a real mongod.

func TestValidID(t *testing.T) {
	db := &DB{}

	tests := []struct {
		id   string
		want bool
	}{
		{primitive.NewObjectID().Hex(), true},
		{"507f1f77bcf86cd799439011", true},
		{"", false},
		{"not-an-id", false},
		{"507f1f77bcf86cd79943901", false}, // 23 chars
		{"cn1ke9p4n8rrcdp1ioa0", false},    // xid, not an ObjectID
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, db.ValidID(tt.id), "ValidID(%q)", tt.id)
	}
}

func TestDueFilter(t *testing.T) {
	got := dueFilter("2024-01-01", "09:00:00")

	want := bson.D{
		{Key: "triggered", Value: false},
		{Key: "date", Value: "2024-01-01"},
		{Key: "time", Value: "09:00:00"},
	}
	assert.Equal(t, want, got)
}

func TestSetDocument(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	title, photo := "new", "p.png"
	triggered := true

	got := setDocument(model.EventPatch{Title: &title, Photo: &photo, Triggered: &triggered}, now)

	want := bson.D{
		{Key: "title", Value: "new"},
		{Key: "photo", Value: "p.png"},
		{Key: "triggered", Value: true},
		{Key: "updated_at", Value: now},
	}
	assert.Equal(t, want, got)
}

func TestSetDocument_EmptyPatchOnlyTouchesUpdatedAt(t *testing.T) {
	now := time.Now()

	got := setDocument(model.EventPatch{}, now)

	require.Len(t, got, 1)
	assert.Equal(t, "updated_at", got[0].Key)
}

func TestEventDocumentRoundTrip(t *testing.T) {
	photo := "cat.png"
	in := &model.Event{
		OwnerEmail: "a@x.com",
		Title:      "Vet",
		Date:       "2024-02-02",
		Time:       "10:30:00",
		Photo:      &photo,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	in.ApplyDefaults()

	doc := eventToDocument(in)
	doc.ID = primitive.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded eventDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	out := decoded.toModel()
	assert.Equal(t, doc.ID.Hex(), out.ID)
	assert.Equal(t, "a@x.com", out.OwnerEmail)
	assert.Equal(t, model.DefaultColor, out.Color)
	require.NotNil(t, out.Photo)
	assert.Equal(t, "cat.png", *out.Photo)
	assert.Nil(t, out.UpdatedAt)
	assert.True(t, out.CreatedAt.Equal(in.CreatedAt))
}

func TestEventDocumentKeys(t *testing.T) {
	raw, err := bson.Marshal(eventDocument{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))

	for _, key := range []string{
		model.FieldID, model.FieldOwnerEmail, model.FieldTitle, model.FieldDate,
		model.FieldTime, model.FieldReminderChannel, model.FieldPhoto,
		model.FieldSoundType, model.FieldTriggered, model.FieldColor, model.FieldCreatedAt,
	} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, model.FieldUpdatedAt, "unset updated_at must be omitted")
}

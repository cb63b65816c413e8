package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	e := Event{Title: "Call", Date: "2024-01-01", Time: "09:00:00"}
	e.ApplyDefaults()

	assert.Equal(t, DefaultCategory, e.Category)
	assert.Equal(t, DefaultReminderChannel, e.ReminderChannel)
	assert.Equal(t, DefaultSoundType, e.SoundType)
	assert.Equal(t, DefaultColor, e.Color)
	assert.Nil(t, e.Photo)
	assert.False(t, e.Triggered)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	e := Event{Category: "work", ReminderChannel: "sound", SoundType: "bell", Color: "#000000"}
	e.ApplyDefaults()

	assert.Equal(t, "work", e.Category)
	assert.Equal(t, "sound", e.ReminderChannel)
	assert.Equal(t, "bell", e.SoundType)
	assert.Equal(t, "#000000", e.Color)
}

// The immutable keys have no home in EventPatch, so they vanish on decode.
func TestEventPatch_DropsImmutableKeys(t *testing.T) {
	var p EventPatch
	body := `{"_id":"x","email":"evil@x.com","title":"New title","triggered":true}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	fields := p.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, FieldUpdate{Name: FieldTitle, Value: "New title"}, fields[0])
	assert.Equal(t, FieldUpdate{Name: FieldTriggered, Value: true}, fields[1])

	for _, f := range fields {
		assert.NotEqual(t, FieldID, f.Name)
		assert.NotEqual(t, FieldOwnerEmail, f.Name)
	}
}

func TestEventPatch_EmptyHasNoFields(t *testing.T) {
	assert.Empty(t, EventPatch{}.Fields())
}

func TestEventPatch_Apply(t *testing.T) {
	e := Event{ID: "1", OwnerEmail: "a@x.com", Title: "old", Category: "personal"}
	title := "new"
	photo := "photos/1.png"
	triggered := true
	EventPatch{Title: &title, Photo: &photo, Triggered: &triggered}.Apply(&e)

	assert.Equal(t, "new", e.Title)
	require.NotNil(t, e.Photo)
	assert.Equal(t, "photos/1.png", *e.Photo)
	assert.True(t, e.Triggered)
	assert.Equal(t, "personal", e.Category)
	assert.Equal(t, "1", e.ID)
	assert.Equal(t, "a@x.com", e.OwnerEmail)
}

func TestUserPublic_StripsHash(t *testing.T) {
	u := User{ID: "1", Email: "a@x.com", PasswordHash: "$2a$04$hash"}

	out, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "password")
	assert.NotContains(t, string(out), "$2a$")
	assert.Equal(t, "$2a$04$hash", u.PasswordHash, "Public must not mutate the receiver")
}

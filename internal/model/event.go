package model

import "time"

// Defaults applied to optional event fields when the client omits them.
const (
	DefaultCategory        = "personal"
	DefaultReminderChannel = "both"
	DefaultSoundType       = "chime"
	DefaultColor           = "#6c5ce7"
)

// Layouts of the date and time strings stored on every event. The poller
// formats "now" with the same layouts and compares by string equality.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Stored field names. MongoDB keys and SQLite columns use the same strings,
// so a patch can be applied to either store without translation.
const (
	FieldID              = "_id"
	FieldOwnerEmail      = "email"
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldDate            = "date"
	FieldTime            = "time"
	FieldCategory        = "category"
	FieldReminderChannel = "reminder"
	FieldPhoto           = "photo"
	FieldSoundType       = "soundType"
	FieldTriggered       = "triggered"
	FieldColor           = "bgColor"
	FieldCreatedAt       = "created_at"
	FieldUpdatedAt       = "updated_at"
)

// Event is a calendar entry owned by a user, identified by the owner's email.
//
// Date ("YYYY-MM-DD") and Time ("HH:MM:SS") are kept as strings on purpose:
// no timezone is attached and the due-event scan matches them verbatim.
type Event struct {
	ID              string     `json:"_id"`
	OwnerEmail      string     `json:"email"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	Category        string     `json:"category"`
	ReminderChannel string     `json:"reminder"`
	Photo           *string    `json:"photo"`
	SoundType       string     `json:"soundType"`
	Triggered       bool       `json:"triggered"`
	Color           string     `json:"bgColor"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ApplyDefaults fills every empty optional field with its documented default.
func (e *Event) ApplyDefaults() {
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.ReminderChannel == "" {
		e.ReminderChannel = DefaultReminderChannel
	}
	if e.SoundType == "" {
		e.SoundType = DefaultSoundType
	}
	if e.Color == "" {
		e.Color = DefaultColor
	}
}

// EventPatch is a partial update. A nil field is left untouched.
//
// There is deliberately no ID or OwnerEmail field: both are immutable after
// creation, so a client that sends "_id" or "email" in an update payload has
// those keys dropped when the JSON is decoded into this struct.
type EventPatch struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	Category        *string `json:"category"`
	ReminderChannel *string `json:"reminder"`
	Photo           *string `json:"photo"`
	SoundType       *string `json:"soundType"`
	Triggered       *bool   `json:"triggered"`
	Color           *string `json:"bgColor"`
}

// FieldUpdate is one stored field assignment produced from a patch.
type FieldUpdate struct {
	Name  string
	Value any
}

// Fields lists the assignments carried by the patch in a fixed order.
// Stores append their own updated_at assignment.
func (p EventPatch) Fields() []FieldUpdate {
	var fields []FieldUpdate
	addString := func(name string, v *string) {
		if v != nil {
			fields = append(fields, FieldUpdate{Name: name, Value: *v})
		}
	}

	addString(FieldTitle, p.Title)
	addString(FieldDescription, p.Description)
	addString(FieldDate, p.Date)
	addString(FieldTime, p.Time)
	addString(FieldCategory, p.Category)
	addString(FieldReminderChannel, p.ReminderChannel)
	addString(FieldPhoto, p.Photo)
	addString(FieldSoundType, p.SoundType)
	if p.Triggered != nil {
		fields = append(fields, FieldUpdate{Name: FieldTriggered, Value: *p.Triggered})
	}
	addString(FieldColor, p.Color)

	return fields
}

// Apply copies the patch onto an event in memory. Used by fakes and by
// stores that need to echo the updated record.
func (p EventPatch) Apply(e *Event) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Title, p.Title)
	set(&e.Description, p.Description)
	set(&e.Date, p.Date)
	set(&e.Time, p.Time)
	set(&e.Category, p.Category)
	set(&e.ReminderChannel, p.ReminderChannel)
	if p.Photo != nil {
		photo := *p.Photo
		e.Photo = &photo
	}
	set(&e.SoundType, p.SoundType)
	if p.Triggered != nil {
		e.Triggered = *p.Triggered
	}
	set(&e.Color, p.Color)
}

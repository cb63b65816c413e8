package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/chronoflow/internal/apperror"
	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/repository"
)

const (
	MsgEventFieldsRequired = "Missing required fields"
	MsgEmailParamRequired  = "Email parameter is required"
	MsgInvalidEventID      = "Invalid event ID"
)

// AddEventInput is the add-event payload. Optional fields left empty get the
// defaults from model.Event.ApplyDefaults.
type AddEventInput struct {
	OwnerEmail      string  `json:"email" validate:"required"`
	Title           string  `json:"title" validate:"required"`
	Date            string  `json:"date" validate:"required"`
	Time            string  `json:"time" validate:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	ReminderChannel string  `json:"reminder"`
	Photo           *string `json:"photo"`
	SoundType       string  `json:"soundType"`
	Triggered       bool    `json:"triggered"`
	Color           string  `json:"bgColor"`
}

type EventService struct {
	events repository.EventRepository
	logger *slog.Logger
}

func NewEventService(events repository.EventRepository, logger *slog.Logger) *EventService {
	return &EventService{events: events, logger: logger}
}

// AddEvent validates, applies defaults and persists a new event.
func (s *EventService) AddEvent(ctx context.Context, in AddEventInput) (*model.Event, error) {
	if err := checkRequired(in, MsgEventFieldsRequired); err != nil {
		return nil, err
	}

	event := &model.Event{
		OwnerEmail:      in.OwnerEmail,
		Title:           in.Title,
		Description:     in.Description,
		Date:            in.Date,
		Time:            in.Time,
		Category:        in.Category,
		ReminderChannel: in.ReminderChannel,
		Photo:           in.Photo,
		SoundType:       in.SoundType,
		Triggered:       in.Triggered,
		Color:           in.Color,
	}
	event.ApplyDefaults()

	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event added",
		slog.String("id", event.ID),
		slog.String("email", event.OwnerEmail),
		slog.String("date", event.Date),
		slog.String("time", event.Time),
	)
	return event, nil
}

// GetEvents lists one owner's events. The result is never nil.
func (s *EventService) GetEvents(ctx context.Context, ownerEmail string) ([]model.Event, error) {
	if ownerEmail == "" {
		return nil, apperror.ValidationFailed("email", MsgEmailParamRequired)
	}

	events, err := s.events.ListEventsByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// CheckID reports a validation error unless id is in the store's native
// identifier format.
func (s *EventService) CheckID(id string) error {
	if !s.events.ValidID(id) {
		return apperror.ValidationFailed("id", MsgInvalidEventID)
	}
	return nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.CheckID(id); err != nil {
		return err
	}

	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.logger.Info("event deleted", slog.String("id", id))
	return nil
}

// UpdateEvent applies a partial update. The patch type has no id or owner
// field, so neither can change.
func (s *EventService) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) error {
	if err := s.CheckID(id); err != nil {
		return err
	}

	if err := s.events.UpdateEvent(ctx, id, patch); err != nil {
		return err
	}

	s.logger.Info("event updated",
		slog.String("id", id),
		slog.Int("fields", len(patch.Fields())),
	)
	return nil
}

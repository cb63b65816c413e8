package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/chronoflow/internal/apperror"
	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/repository"
)

var _ repository.EventRepository = (*DB)(nil)

const eventColumns = `id, "email", "title", "description", "date", "time", "category",
	"reminder", "photo", "soundType", "triggered", "bgColor", created_at, updated_at`

// CreateEvent inserts a new event and fills in ID and CreatedAt.
func (db *DB) CreateEvent(ctx context.Context, event *model.Event) error {
	event.ID = xid.New().String()
	event.CreatedAt = time.Now()
	event.UpdatedAt = nil

	var photo sql.NullString
	if event.Photo != nil {
		photo = sql.NullString{String: *event.Photo, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		event.ID,
		event.OwnerEmail,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Category,
		event.ReminderChannel,
		photo,
		event.SoundType,
		event.Triggered,
		event.Color,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating event: %w", err)
	}

	return nil
}

// ListEventsByOwner returns every event whose owner email matches exactly,
// in insertion order.
func (db *DB) ListEventsByOwner(ctx context.Context, ownerEmail string) ([]model.Event, error) {
	events, err := db.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE "email" = ? ORDER BY rowid`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	return events, nil
}

// FindDueEvents returns untriggered events scheduled exactly at date+timeOfDay.
func (db *DB) FindDueEvents(ctx context.Context, date, timeOfDay string) ([]model.Event, error) {
	events, err := db.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE "triggered" = 0 AND "date" = ? AND "time" = ?`,
		date, timeOfDay,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding due events: %w", err)
	}
	return events, nil
}

// UpdateEvent applies a partial update.
//
// The SET clause is built from model field names only (never from client
// input), so the string concatenation below cannot inject SQL. updated_at is
// always assigned, which means any existing row counts as modified.
func (db *DB) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) error {
	fields := patch.Fields()
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		sets = append(sets, fmt.Sprintf(`"%s" = ?`, f.Name))
		args = append(args, f.Value)
	}
	sets = append(sets, `updated_at = ?`)
	args = append(args, time.Now(), id)

	result, err := db.conn.ExecContext(ctx,
		`UPDATE events SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating event %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMessage("Event not found or no changes made")
	}

	return nil
}

// DeleteEvent removes an event by ID.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting event %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMessage("Event not found")
	}

	return nil
}

func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var (
			e         model.Event
			photo     sql.NullString
			updatedAt sql.NullTime
		)
		if err := rows.Scan(
			&e.ID, &e.OwnerEmail, &e.Title, &e.Description, &e.Date, &e.Time,
			&e.Category, &e.ReminderChannel, &photo, &e.SoundType, &e.Triggered,
			&e.Color, &e.CreatedAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		if photo.Valid {
			p := photo.String
			e.Photo = &p
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			e.UpdatedAt = &t
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

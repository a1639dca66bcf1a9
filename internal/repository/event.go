// Package repository implements all database queries for the portal.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sijgeria/community-portal/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateParticipant is returned when a participant holds the same
// role in this event already, either detected by query or by the unique
// index on (event_id, role, email).
var ErrDuplicateParticipant = errors.New("participant already registered for this role in this event")

// EventRepository handles persistence for participating events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, name, event_date, event_time, registration_closing, sub_events, status, created_by, created_at`

// Create inserts a new event with its sub-events as a JSON document.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	subEvents, err := json.Marshal(e.SubEvents)
	if err != nil {
		return fmt.Errorf("marshal sub-events: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO events (id, name, event_date, event_time, registration_closing, sub_events, status, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Name, e.Date, e.Time, e.RegistrationClosing, subEvents, e.Status, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListAll returns all events, newest first.
func (r *EventRepository) ListAll(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
}

// ListByCreator returns all events created by the given member, newest first.
func (r *EventRepository) ListByCreator(ctx context.Context, memberID string) ([]model.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE created_by = $1 ORDER BY created_at DESC`, memberID)
}

// ListOpen returns active events whose registration window is still open.
func (r *EventRepository) ListOpen(ctx context.Context, now time.Time) ([]model.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE registration_closing > $1 AND status = $2
		 ORDER BY event_date ASC`, now, model.StatusActive)
}

// Update replaces the mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	subEvents, err := json.Marshal(e.SubEvents)
	if err != nil {
		return fmt.Errorf("marshal sub-events: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET name = $2, event_date = $3, event_time = $4,
		     registration_closing = $5, sub_events = $6, status = $7
		 WHERE id = $1`,
		e.ID, e.Name, e.Date, e.Time, e.RegistrationClosing, subEvents, e.Status,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event and cascades to every participation referencing
// it, all in one transaction. It returns the number of participation groups
// removed and the distinct participant emails that were registered, so the
// caller can send cancellation notices.
func (r *EventRepository) Delete(ctx context.Context, id string) (int, []string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx,
		`SELECT DISTINCT email FROM participants WHERE event_id = $1`, id)
	if err != nil {
		return 0, nil, fmt.Errorf("collect participant emails: %w", err)
	}
	var emails []string
	for rows.Next() {
		var email string
		if err = rows.Scan(&email); err != nil {
			rows.Close()
			return 0, nil, fmt.Errorf("scan participant email: %w", err)
		}
		emails = append(emails, email)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("collect participant emails: %w", err)
	}

	if _, err = tx.Exec(ctx,
		`DELETE FROM participants WHERE event_id = $1`, id); err != nil {
		return 0, nil, fmt.Errorf("delete participants: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM participations WHERE event_id = $1`, id)
	if err != nil {
		return 0, nil, fmt.Errorf("delete participations: %w", err)
	}
	removed := int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, nil, fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return 0, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit transaction: %w", err)
	}
	return removed, emails, nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	var subEvents []byte
	if err := row.Scan(
		&e.ID, &e.Name, &e.Date, &e.Time, &e.RegistrationClosing,
		&subEvents, &e.Status, &e.CreatedBy, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subEvents, &e.SubEvents); err != nil {
		return nil, fmt.Errorf("unmarshal sub-events: %w", err)
	}
	return &e, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sijgeria/community-portal/internal/model"
)

// uniqueViolation is the PostgreSQL error code raised when an insert hits
// the (event_id, role, email) unique index.
const uniqueViolation = "23505"

// ParticipationRepository handles persistence for registration groups.
type ParticipationRepository struct {
	db *pgxpool.Pool
}

// NewParticipationRepository constructs a ParticipationRepository.
func NewParticipationRepository(db *pgxpool.Pool) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create inserts a participation group atomically: the group row and one
// row per participant commit together or not at all. A concurrent duplicate
// that slipped past the validator surfaces as ErrDuplicateParticipant via
// the unique index.
func (r *ParticipationRepository) Create(ctx context.Context, p *model.Participation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO participations (id, event_id, sub_event_name, registered_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.EventID, p.SubEventName, p.RegisteredBy, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert participation: %w", err)
	}

	for _, part := range p.Participants {
		_, err = tx.Exec(ctx,
			`INSERT INTO participants (participation_id, event_id, role, participant_name, email, phone)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.EventID, part.Role, part.ParticipantName, part.NormalizedEmail(), part.Phone,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				err = ErrDuplicateParticipant
				return err
			}
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// HasParticipantRole reports whether any existing participation for the
// event contains a participant with the given role and (lower-cased) email.
// This is the portal's duplicate-registration guard.
func (r *ParticipationRepository) HasParticipantRole(ctx context.Context, eventID, role, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM participants
			WHERE event_id = $1 AND role = $2 AND email = $3
		 )`,
		eventID, role, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate participant: %w", err)
	}
	return exists, nil
}

// ListByUser returns all participation groups registered by a user, newest
// first, with their participants loaded.
func (r *ParticipationRepository) ListByUser(ctx context.Context, userID string) ([]model.Participation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, sub_event_name, registered_by, created_at
		 FROM participations
		 WHERE registered_by = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var groups []model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.ID, &p.EventID, &p.SubEventName, &p.RegisteredBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		groups = append(groups, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		parts, err := r.participantsOf(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Participants = parts
	}
	return groups, nil
}

// ParticipantsByEvent returns every participant registered for an event,
// flattened across all its participation groups.
func (r *ParticipationRepository) ParticipantsByEvent(ctx context.Context, eventID string) ([]model.Participant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT role, participant_name, email, phone
		 FROM participants
		 WHERE event_id = $1
		 ORDER BY id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list event participants: %w", err)
	}
	defer rows.Close()

	var parts []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.Role, &p.ParticipantName, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (r *ParticipationRepository) participantsOf(ctx context.Context, participationID string) ([]model.Participant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT role, participant_name, email, phone
		 FROM participants
		 WHERE participation_id = $1
		 ORDER BY id ASC`,
		participationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list group participants: %w", err)
	}
	defer rows.Close()

	var parts []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.Role, &p.ParticipantName, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sijgeria/community-portal/internal/mailer"
	"github.com/sijgeria/community-portal/internal/model"
	"github.com/sijgeria/community-portal/internal/repository"
)

// ErrSubEventNotFound is returned when a registration names a sub-event the
// target event does not declare.
var ErrSubEventNotFound = errors.New("sub-event not found")

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// ParticipationStore is the persistence surface the participation service
// needs.
type ParticipationStore interface {
	Create(ctx context.Context, p *model.Participation) error
	HasParticipantRole(ctx context.Context, eventID, role, email string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Participation, error)
	ParticipantsByEvent(ctx context.Context, eventID string) ([]model.Participant, error)
}

// ParticipationService validates and records registration groups.
type ParticipationService struct {
	events         EventStore
	participations ParticipationStore
	dispatcher     *mailer.Dispatcher
}

// NewParticipationService constructs a ParticipationService.
func NewParticipationService(events EventStore, participations ParticipationStore, dispatcher *mailer.Dispatcher) *ParticipationService {
	return &ParticipationService{
		events:         events,
		participations: participations,
		dispatcher:     dispatcher,
	}
}

// Register validates a registration group against the event's sub-event and
// role definitions and against all existing registrations, then persists it
// as one atomic record. Rejection at any step aborts the whole submission;
// nothing is persisted. Accepted participants get a confirmation mail in
// the background.
//
// Checks run in submission order per participant: field presence, email
// shape, phone shape, role existence, duplicate (role, email) across the
// event. Compulsory-role coverage is checked once for the whole group.
func (s *ParticipationService) Register(ctx context.Context, userID string, req model.RegisterParticipationRequest) (*model.Participation, error) {
	if req.EventID == "" || req.SubEventName == "" || len(req.Participants) == 0 {
		return nil, model.Invalid(model.CodeMissingField,
			"event ID, sub-event name, and participants are required")
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !event.RegistrationOpen(now) {
		return nil, model.Invalid(model.CodeRegistrationClosed,
			"registration for this event has closed")
	}

	subEvent := event.SubEvent(req.SubEventName)
	if subEvent == nil {
		return nil, ErrSubEventNotFound
	}

	for _, p := range req.Participants {
		if p.Role == "" || p.ParticipantName == "" || p.Email == "" || p.Phone == "" {
			return nil, model.Invalid(model.CodeMissingField,
				"all participant fields are required")
		}
		if !emailPattern.MatchString(p.Email) {
			return nil, model.Invalid(model.CodeInvalidEmail,
				"invalid email format: %s", p.Email)
		}
		if !phonePattern.MatchString(p.Phone) {
			return nil, model.Invalid(model.CodeInvalidPhone,
				"phone number must be 10 digits")
		}
		if !subEvent.HasRole(p.Role) {
			return nil, model.Invalid(model.CodeRoleNotFound,
				"role '%s' not found in sub-event", p.Role)
		}

		taken, err := s.participations.HasParticipantRole(ctx, req.EventID, p.Role, p.NormalizedEmail())
		if err != nil {
			return nil, fmt.Errorf("check duplicate participant: %w", err)
		}
		if taken {
			return nil, model.Invalid(model.CodeDuplicateParticipantRole,
				"participant with email %s is already registered for role %s in this event",
				p.NormalizedEmail(), p.Role)
		}
	}

	filled := make(map[string]bool, len(req.Participants))
	for _, p := range req.Participants {
		filled[p.Role] = true
	}
	for _, role := range subEvent.CompulsoryRoles() {
		if !filled[role] {
			return nil, model.Invalid(model.CodeCompulsoryRoleUnfilled,
				"compulsory role '%s' must be filled", role)
		}
	}

	participants := make([]model.Participant, len(req.Participants))
	for i, p := range req.Participants {
		p.Email = p.NormalizedEmail()
		participants[i] = p
	}

	participation := &model.Participation{
		ID:           uuid.New().String(),
		EventID:      req.EventID,
		SubEventName: req.SubEventName,
		Participants: participants,
		RegisteredBy: userID,
		CreatedAt:    now.UTC(),
	}

	if err := s.participations.Create(ctx, participation); err != nil {
		// A concurrent submission can win the (role, email) slot between the
		// duplicate check above and this insert; the unique index turns that
		// into the same conflict outcome.
		if errors.Is(err, repository.ErrDuplicateParticipant) {
			return nil, model.Invalid(model.CodeDuplicateParticipantRole,
				"a participant in this group is already registered for their role in this event")
		}
		return nil, fmt.Errorf("create participation: %w", err)
	}

	go s.confirm(event, participation)

	return participation, nil
}

// ListUserParticipations returns the registration groups submitted by a
// user, newest first.
func (s *ParticipationService) ListUserParticipations(ctx context.Context, userID string) ([]model.Participation, error) {
	return s.participations.ListByUser(ctx, userID)
}

// EventParticipants returns every participant registered for an event,
// flattened across its participation groups.
func (s *ParticipationService) EventParticipants(ctx context.Context, eventID string) ([]model.Participant, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.participations.ParticipantsByEvent(ctx, eventID)
}

// confirm mails each participant of an accepted registration. Detached from
// the request and strictly best-effort.
func (s *ParticipationService) confirm(event *model.Event, participation *model.Participation) {
	report := s.dispatcher.NotifyParticipants(
		participation.Participants,
		summary(event, participation.SubEventName),
	)
	log.Printf("confirmed registration %s to %d/%d participants",
		participation.ID, report.Delivered, report.Attempted)
}

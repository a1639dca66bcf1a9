// Package service implements the portal's business rules: event-creation
// validation, participation validation, and the deletion cascade. Services
// validate, delegate persistence to the repositories, and hand notification
// fan-out to the mailer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sijgeria/community-portal/internal/mailer"
	"github.com/sijgeria/community-portal/internal/model"
)

// ErrNotOwner is returned when a member tries to modify an event created by
// someone else.
var ErrNotOwner = errors.New("not authorized to modify this event")

// registrationLead is the minimum gap between registration closing and the
// event date. A missing closing time defaults to exactly this far before
// the event.
const registrationLead = 24 * time.Hour

// EventStore is the persistence surface the event service needs.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	ListAll(ctx context.Context) ([]model.Event, error)
	ListByCreator(ctx context.Context, memberID string) ([]model.Event, error)
	ListOpen(ctx context.Context, now time.Time) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) (removed int, participantEmails []string, err error)
}

// UserStore supplies the recipient list for event announcements.
type UserStore interface {
	ListEmails(ctx context.Context) ([]string, error)
}

// EventService orchestrates event creation, update, and deletion.
type EventService struct {
	events     EventStore
	users      UserStore
	dispatcher *mailer.Dispatcher
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, users UserStore, dispatcher *mailer.Dispatcher) *EventService {
	return &EventService{events: events, users: users, dispatcher: dispatcher}
}

// CreateEvent validates a candidate event and persists it. On acceptance
// every portal user is informed by mail in the background; mail failures
// never affect the outcome.
func (s *EventService) CreateEvent(ctx context.Context, memberID string, req model.CreateEventRequest) (*model.Event, error) {
	now := time.Now()
	if err := validateEvent(req, now); err != nil {
		return nil, err
	}

	closing := defaultClosing(req)
	event := &model.Event{
		ID:                  uuid.New().String(),
		Name:                strings.TrimSpace(req.Name),
		Date:                req.Date,
		Time:                req.Time,
		RegistrationClosing: closing,
		SubEvents:           req.SubEvents,
		Status:              model.StatusActive,
		CreatedBy:           memberID,
		CreatedAt:           now.UTC(),
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	go s.announce(event)

	return event, nil
}

// UpdateEvent re-validates and replaces an event. Only the creator may
// update, and only while registration is still open.
func (s *EventService) UpdateEvent(ctx context.Context, memberID, id string, req model.CreateEventRequest) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != memberID {
		return nil, ErrNotOwner
	}
	now := time.Now()
	if !event.RegistrationOpen(now) {
		return nil, model.Invalid(model.CodeRegistrationClosed,
			"cannot update event after registration has closed")
	}
	if err := validateEvent(req, now); err != nil {
		return nil, err
	}

	event.Name = strings.TrimSpace(req.Name)
	event.Date = req.Date
	event.Time = req.Time
	event.RegistrationClosing = defaultClosing(req)
	event.SubEvents = req.SubEvents

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event and all its participations, then attempts a
// cancellation notice to every registered participant. Mail failures are
// logged per recipient; the report carries the delivery counts either way.
func (s *EventService) DeleteEvent(ctx context.Context, memberID, id string) (*model.DeletionReport, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != memberID {
		return nil, ErrNotOwner
	}

	removed, emails, err := s.events.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}

	report := s.dispatcher.NotifyCancellation(emails, summary(event, ""))

	return &model.DeletionReport{
		DeletedParticipations: removed,
		NotifiedCount:         report.Delivered,
		AttemptedCount:        report.Attempted,
	}, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// ListAllEvents returns every event, newest first.
func (s *EventService) ListAllEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.ListAll(ctx)
}

// ListMemberEvents returns the events created by the given member.
func (s *EventService) ListMemberEvents(ctx context.Context, memberID string) ([]model.Event, error) {
	return s.events.ListByCreator(ctx, memberID)
}

// ListOpenEvents returns active events still accepting registrations.
func (s *EventService) ListOpenEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.ListOpen(ctx, time.Now())
}

// announce fans the new-event notice out to all users. Runs detached from
// the request; uses a fresh context so the fan-out survives the response.
func (s *EventService) announce(event *model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	emails, err := s.users.ListEmails(ctx)
	if err != nil {
		log.Printf("announce %s: list user emails: %v", event.ID, err)
		return
	}
	report := s.dispatcher.NotifyAllUsers(emails, summary(event, ""))
	log.Printf("announced event %s to %d/%d users", event.ID, report.Delivered, report.Attempted)
}

// validateEvent applies the event-creation rules, first failure wins:
// required fields, then date in the future, then the registration window,
// then compulsory-role presence per sub-event. It has no side effects.
func validateEvent(req model.CreateEventRequest, now time.Time) error {
	if strings.TrimSpace(req.Name) == "" {
		return model.Invalid(model.CodeMissingField, "event name is required")
	}
	if len(req.SubEvents) == 0 {
		return model.Invalid(model.CodeMissingField, "at least one sub-event is required")
	}
	for _, se := range req.SubEvents {
		if strings.TrimSpace(se.Name) == "" {
			return model.Invalid(model.CodeMissingField, "sub-event name is required")
		}
		if se.MaxParticipants < 1 {
			return model.Invalid(model.CodeMissingField,
				"sub-event '%s' must allow at least one participant", se.Name)
		}
		if len(se.Roles) == 0 {
			return model.Invalid(model.CodeMissingField,
				"sub-event '%s' must declare at least one role", se.Name)
		}
		for _, role := range se.Roles {
			if strings.TrimSpace(role.Name) == "" {
				return model.Invalid(model.CodeMissingField,
					"sub-event '%s' has a role without a name", se.Name)
			}
		}
	}

	if !req.Date.After(now) {
		return model.Invalid(model.CodeInvalidDate, "event date must be in the future")
	}

	if req.RegistrationClosing != nil {
		oneDayBefore := req.Date.Add(-registrationLead)
		if req.RegistrationClosing.After(oneDayBefore) {
			return model.Invalid(model.CodeInvalidRegistrationWindow,
				"registration must close at least one day before the event")
		}
	}

	for _, se := range req.SubEvents {
		if len(se.CompulsoryRoles()) == 0 {
			return model.Invalid(model.CodeMissingCompulsoryRole,
				"each sub-event must have at least one compulsory role; missing in: %s", se.Name)
		}
	}
	return nil
}

// defaultClosing fills an omitted registration closing with exactly one day
// before the event date.
func defaultClosing(req model.CreateEventRequest) time.Time {
	if req.RegistrationClosing != nil {
		return *req.RegistrationClosing
	}
	return req.Date.Add(-registrationLead)
}

func summary(event *model.Event, subEvent string) mailer.EventSummary {
	return mailer.EventSummary{
		Name:                event.Name,
		Date:                event.Date,
		Time:                event.Time,
		RegistrationClosing: event.RegistrationClosing,
		SubEvent:            subEvent,
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sijgeria/community-portal/internal/model"
	"github.com/sijgeria/community-portal/internal/repository"
)

// fakeEventStore keeps events in memory and lets tests script the cascade
// result of Delete.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[string]model.Event

	deleteRemoved int
	deleteEmails  []string
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: map[string]model.Event{}}
}

func (s *fakeEventStore) Create(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = *e
	return nil
}

func (s *fakeEventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *fakeEventStore) ListAll(_ context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeEventStore) ListByCreator(_ context.Context, memberID string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if e.CreatedBy == memberID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeEventStore) ListOpen(_ context.Context, now time.Time) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if e.Status == model.StatusActive && e.RegistrationClosing.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeEventStore) Update(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return repository.ErrNotFound
	}
	s.events[e.ID] = *e
	return nil
}

func (s *fakeEventStore) Delete(_ context.Context, id string) (int, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return 0, nil, repository.ErrNotFound
	}
	delete(s.events, id)
	return s.deleteRemoved, s.deleteEmails, nil
}

func (s *fakeEventStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// fakeParticipationStore keeps participation groups in memory. createErr,
// when set, is returned by Create to simulate storage-level conflicts.
type fakeParticipationStore struct {
	mu        sync.Mutex
	created   []model.Participation
	createErr error
}

func (s *fakeParticipationStore) Create(_ context.Context, p *model.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *p)
	return nil
}

func (s *fakeParticipationStore) HasParticipantRole(_ context.Context, eventID, role, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, group := range s.created {
		if group.EventID != eventID {
			continue
		}
		for _, p := range group.Participants {
			if p.Role == role && p.NormalizedEmail() == email {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *fakeParticipationStore) ListByUser(_ context.Context, userID string) ([]model.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Participation
	for _, group := range s.created {
		if group.RegisteredBy == userID {
			out = append(out, group)
		}
	}
	return out, nil
}

func (s *fakeParticipationStore) ParticipantsByEvent(_ context.Context, eventID string) ([]model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Participant
	for _, group := range s.created {
		if group.EventID == eventID {
			out = append(out, group.Participants...)
		}
	}
	return out, nil
}

func (s *fakeParticipationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

// fakeUserStore returns a fixed recipient list.
type fakeUserStore struct {
	emails []string
}

func (s *fakeUserStore) ListEmails(context.Context) ([]string, error) {
	return s.emails, nil
}

// fakeSender records deliveries and fails for scripted recipients.
type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (s *fakeSender) Send(to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] {
		return errSendFailed
	}
	s.sent = append(s.sent, to)
	return nil
}

var errSendFailed = errors.New("smtp: delivery refused")

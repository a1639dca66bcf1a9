package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sijgeria/community-portal/internal/mailer"
	"github.com/sijgeria/community-portal/internal/model"
	"github.com/sijgeria/community-portal/internal/repository"
)

func newEventService(events *fakeEventStore, sender *fakeSender) *EventService {
	if sender == nil {
		sender = &fakeSender{}
	}
	return NewEventService(events, &fakeUserStore{}, mailer.NewDispatcher(sender))
}

func validEventRequest(date time.Time) model.CreateEventRequest {
	return model.CreateEventRequest{
		Name: "Annual Sports Meet",
		Date: date,
		Time: "10:00 AM",
		SubEvents: []model.SubEvent{
			{
				Name:            "Football",
				MaxParticipants: 11,
				Roles: []model.Role{
					{Name: "Captain", IsCompulsory: true},
					{Name: "Player", IsCompulsory: false},
				},
			},
		},
	}
}

func TestCreateEvent_DefaultsRegistrationClosing(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	date := time.Now().Add(48 * time.Hour)
	event, err := svc.CreateEvent(context.Background(), "member-1", validEventRequest(date))
	require.NoError(t, err)

	// Omitted closing defaults to exactly one day before the event.
	assert.Equal(t, date.Add(-24*time.Hour), event.RegistrationClosing)
	assert.Equal(t, model.StatusActive, event.Status)
	assert.Equal(t, "member-1", event.CreatedBy)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 1, store.count())
}

func TestCreateEvent_KeepsSuppliedClosing(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	date := time.Now().Add(96 * time.Hour)
	closing := date.Add(-48 * time.Hour)
	req := validEventRequest(date)
	req.RegistrationClosing = &closing

	event, err := svc.CreateEvent(context.Background(), "member-1", req)
	require.NoError(t, err)
	assert.Equal(t, closing, event.RegistrationClosing)
}

func TestCreateEvent_RejectsLateClosing(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	// Closing 12h before a T+48h event is later than the T+24h limit.
	date := time.Now().Add(48 * time.Hour)
	closing := date.Add(-12 * time.Hour)
	req := validEventRequest(date)
	req.RegistrationClosing = &closing

	_, err := svc.CreateEvent(context.Background(), "member-1", req)
	requireCode(t, err, model.CodeInvalidRegistrationWindow)
	assert.Equal(t, 0, store.count())
}

func TestCreateEvent_RejectsPastDate(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	_, err := svc.CreateEvent(context.Background(), "member-1",
		validEventRequest(time.Now().Add(-time.Hour)))
	requireCode(t, err, model.CodeInvalidDate)
	assert.Equal(t, 0, store.count())
}

func TestCreateEvent_RequiresCompulsoryRole(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	req := validEventRequest(time.Now().Add(48 * time.Hour))
	req.SubEvents[0].Roles = []model.Role{
		{Name: "Player", IsCompulsory: false},
	}

	_, err := svc.CreateEvent(context.Background(), "member-1", req)
	verr := requireCode(t, err, model.CodeMissingCompulsoryRole)
	assert.Contains(t, verr.Detail, "Football")
	assert.Equal(t, 0, store.count())

	// Resubmitting the same rejected request yields the same reason and
	// still persists nothing.
	_, err = svc.CreateEvent(context.Background(), "member-1", req)
	requireCode(t, err, model.CodeMissingCompulsoryRole)
	assert.Equal(t, 0, store.count())
}

func TestCreateEvent_ShapeChecks(t *testing.T) {
	date := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name   string
		mutate func(*model.CreateEventRequest)
	}{
		{"empty name", func(r *model.CreateEventRequest) { r.Name = "  " }},
		{"no sub-events", func(r *model.CreateEventRequest) { r.SubEvents = nil }},
		{"empty sub-event name", func(r *model.CreateEventRequest) { r.SubEvents[0].Name = "" }},
		{"zero capacity", func(r *model.CreateEventRequest) { r.SubEvents[0].MaxParticipants = 0 }},
		{"no roles", func(r *model.CreateEventRequest) { r.SubEvents[0].Roles = nil }},
		{"unnamed role", func(r *model.CreateEventRequest) { r.SubEvents[0].Roles[0].Name = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeEventStore()
			svc := newEventService(store, nil)

			req := validEventRequest(date)
			tt.mutate(&req)

			_, err := svc.CreateEvent(context.Background(), "member-1", req)
			requireCode(t, err, model.CodeMissingField)
			assert.Equal(t, 0, store.count())
		})
	}
}

func TestUpdateEvent_OnlyCreator(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	event, err := svc.CreateEvent(context.Background(), "member-1",
		validEventRequest(time.Now().Add(48*time.Hour)))
	require.NoError(t, err)

	_, err = svc.UpdateEvent(context.Background(), "member-2", event.ID,
		validEventRequest(time.Now().Add(72*time.Hour)))
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateEvent_RejectedAfterClosing(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	event := model.Event{
		ID:                  "ev-1",
		Name:                "Past Window",
		Date:                time.Now().Add(12 * time.Hour),
		RegistrationClosing: time.Now().Add(-time.Hour),
		SubEvents:           validEventRequest(time.Now()).SubEvents,
		Status:              model.StatusActive,
		CreatedBy:           "member-1",
	}
	require.NoError(t, store.Create(context.Background(), &event))

	_, err := svc.UpdateEvent(context.Background(), "member-1", "ev-1",
		validEventRequest(time.Now().Add(48*time.Hour)))
	requireCode(t, err, model.CodeRegistrationClosed)
}

func TestUpdateEvent_RevalidatesAndApplies(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	event, err := svc.CreateEvent(context.Background(), "member-1",
		validEventRequest(time.Now().Add(48*time.Hour)))
	require.NoError(t, err)

	newDate := time.Now().Add(96 * time.Hour)
	updated, err := svc.UpdateEvent(context.Background(), "member-1", event.ID,
		validEventRequest(newDate))
	require.NoError(t, err)
	assert.Equal(t, newDate, updated.Date)
	assert.Equal(t, newDate.Add(-24*time.Hour), updated.RegistrationClosing)
	assert.Equal(t, "member-1", updated.CreatedBy)
}

func TestDeleteEvent_CascadeReportsCounts(t *testing.T) {
	store := newFakeEventStore()
	sender := &fakeSender{failFor: map[string]bool{"b@example.com": true}}
	svc := newEventService(store, sender)

	event, err := svc.CreateEvent(context.Background(), "member-1",
		validEventRequest(time.Now().Add(48*time.Hour)))
	require.NoError(t, err)

	store.deleteRemoved = 3
	store.deleteEmails = []string{"a@example.com", "b@example.com", "c@example.com"}

	report, err := svc.DeleteEvent(context.Background(), "member-1", event.ID)
	require.NoError(t, err)

	// One recipient refused delivery; the cascade still removed everything
	// and the counts reflect the partial fan-out.
	assert.Equal(t, 3, report.DeletedParticipations)
	assert.Equal(t, 3, report.AttemptedCount)
	assert.Equal(t, 2, report.NotifiedCount)
	assert.Equal(t, 0, store.count())
}

func TestDeleteEvent_OnlyCreator(t *testing.T) {
	store := newFakeEventStore()
	svc := newEventService(store, nil)

	event, err := svc.CreateEvent(context.Background(), "member-1",
		validEventRequest(time.Now().Add(48*time.Hour)))
	require.NoError(t, err)

	_, err = svc.DeleteEvent(context.Background(), "member-2", event.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 1, store.count())
}

func TestDeleteEvent_NotFound(t *testing.T) {
	svc := newEventService(newFakeEventStore(), nil)

	_, err := svc.DeleteEvent(context.Background(), "member-1", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// requireCode asserts that err is a ValidationError with the given reason
// code and returns it for further inspection.
func requireCode(t *testing.T, err error, code string) *model.ValidationError {
	t.Helper()
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, code, verr.Code)
	return verr
}

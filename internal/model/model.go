// Package model defines the core domain types for the community events portal.
package model

import (
	"strings"
	"time"
)

// EventStatus is the lifecycle state of a participating event.
type EventStatus string

const (
	StatusActive    EventStatus = "active"
	StatusCancelled EventStatus = "cancelled"
	StatusCompleted EventStatus = "completed"
)

// Role is a named sign-up slot within a sub-event.
type Role struct {
	Name         string `json:"roleName"`
	IsCompulsory bool   `json:"isCompulsory"`
}

// SubEvent is a named activity within an event, carrying its own role list.
// Sub-events have no identity outside their parent event; lookups are by name.
type SubEvent struct {
	Name            string `json:"subEventName"`
	MaxParticipants int    `json:"maxParticipants"`
	Roles           []Role `json:"roles"`
	Description     string `json:"description,omitempty"`
}

// HasRole reports whether the sub-event declares a role with the given name.
func (se *SubEvent) HasRole(name string) bool {
	for _, r := range se.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// CompulsoryRoles returns the names of all roles flagged compulsory.
func (se *SubEvent) CompulsoryRoles() []string {
	var names []string
	for _, r := range se.Roles {
		if r.IsCompulsory {
			names = append(names, r.Name)
		}
	}
	return names
}

// Event is a registrable occasion with one or more sub-events.
type Event struct {
	ID                  string      `json:"id"`
	Name                string      `json:"eventName"`
	Date                time.Time   `json:"eventDate"`
	Time                string      `json:"eventTime"`
	RegistrationClosing time.Time   `json:"registrationClosing"`
	SubEvents           []SubEvent  `json:"subEvents"`
	Status              EventStatus `json:"status"`
	CreatedBy           string      `json:"createdBy"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// SubEvent resolves a sub-event by exact name match, or nil if absent.
func (e *Event) SubEvent(name string) *SubEvent {
	for i := range e.SubEvents {
		if e.SubEvents[i].Name == name {
			return &e.SubEvents[i]
		}
	}
	return nil
}

// RegistrationOpen reports whether registrations are still accepted at now.
func (e *Event) RegistrationOpen(now time.Time) bool {
	return !now.After(e.RegistrationClosing)
}

// Participant is one person's role assignment within a participation group.
type Participant struct {
	Role            string `json:"role"`
	ParticipantName string `json:"participantName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
}

// NormalizedEmail returns the participant email lower-cased, the form in
// which emails are stored and compared.
func (p Participant) NormalizedEmail() string {
	return strings.ToLower(p.Email)
}

// Participation is one submitted registration group against a sub-event.
// It is created atomically and never updated afterwards.
type Participation struct {
	ID           string        `json:"id"`
	EventID      string        `json:"eventId"`
	SubEventName string        `json:"subEventName"`
	Participants []Participant `json:"participants"`
	RegisteredBy string        `json:"registeredBy"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// User is a portal account that receives event notifications.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateEventRequest is the payload for creating or updating an event.
// RegistrationClosing may be nil, in which case it defaults to one day
// before the event date.
type CreateEventRequest struct {
	Name                string     `json:"eventName"`
	Date                time.Time  `json:"eventDate"`
	Time                string     `json:"eventTime"`
	RegistrationClosing *time.Time `json:"registrationClosing,omitempty"`
	SubEvents           []SubEvent `json:"subEvents"`
}

// RegisterParticipationRequest is the payload for registering a group of
// participants against one sub-event.
type RegisterParticipationRequest struct {
	EventID      string        `json:"eventId"`
	SubEventName string        `json:"subEventName"`
	Participants []Participant `json:"participants"`
}

// DeletionReport summarises an event deletion: how many participation
// groups were cascaded away, and how the best-effort cancellation mail went.
type DeletionReport struct {
	DeletedParticipations int `json:"deletedParticipations"`
	NotifiedCount         int `json:"notifiedCount"`
	AttemptedCount        int `json:"attemptedCount"`
}

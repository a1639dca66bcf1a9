package mailer

import (
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/sijgeria/community-portal/internal/model"
)

// EventSummary carries the event details that appear in notification mail.
type EventSummary struct {
	Name                string
	Date                time.Time
	Time                string
	RegistrationClosing time.Time
	SubEvent            string
}

// DeliveryReport counts one notification fan-out: how many recipients were
// attempted and how many deliveries succeeded.
type DeliveryReport struct {
	Attempted int
	Delivered int
}

// Dispatcher fans notification mail out to recipients, one attempt each.
// Per-recipient failures are logged and skipped; the report tells the
// caller how the fan-out went.
type Dispatcher struct {
	sender Sender
}

// NewDispatcher constructs a Dispatcher around a Sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// NotifyAllUsers announces a newly created event to every portal user.
func (d *Dispatcher) NotifyAllUsers(emails []string, ev EventSummary) DeliveryReport {
	subject := "New Event: " + ev.Name
	body := render(announcementTmpl, announcementData{Event: ev})

	var report DeliveryReport
	for _, to := range emails {
		report.Attempted++
		if err := d.sender.Send(to, subject, body); err != nil {
			log.Printf("event announcement to %s failed: %v", to, err)
			continue
		}
		report.Delivered++
	}
	return report
}

// NotifyParticipants confirms an accepted registration to each participant.
func (d *Dispatcher) NotifyParticipants(participants []model.Participant, ev EventSummary) DeliveryReport {
	subject := "Registration Confirmation - " + ev.Name

	var report DeliveryReport
	for _, p := range participants {
		report.Attempted++
		body := render(confirmationTmpl, confirmationData{Event: ev, Participant: p})
		if err := d.sender.Send(p.NormalizedEmail(), subject, body); err != nil {
			log.Printf("registration confirmation to %s failed: %v", p.NormalizedEmail(), err)
			continue
		}
		report.Delivered++
	}
	return report
}

// NotifyCancellation informs registered participants that an event was
// removed.
func (d *Dispatcher) NotifyCancellation(emails []string, ev EventSummary) DeliveryReport {
	subject := "Event Cancelled: " + ev.Name
	body := render(cancellationTmpl, announcementData{Event: ev})

	var report DeliveryReport
	for _, to := range emails {
		report.Attempted++
		if err := d.sender.Send(to, subject, body); err != nil {
			log.Printf("cancellation notice to %s failed: %v", to, err)
			continue
		}
		report.Delivered++
	}
	return report
}

type announcementData struct {
	Event EventSummary
}

type confirmationData struct {
	Event       EventSummary
	Participant model.Participant
}

const dateLayout = "Monday, 2 January 2006"

func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		// Templates are static and the data is plain structs, so this only
		// trips during development.
		log.Printf("render %s template: %v", t.Name(), err)
		return ""
	}
	return b.String()
}

var tmplFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format(dateLayout) },
}

var announcementTmpl = template.Must(template.New("announcement").Funcs(tmplFuncs).Parse(
	`Hello,

A new event is open for registration.

Event: {{.Event.Name}}
Date: {{date .Event.Date}}{{if .Event.Time}} at {{.Event.Time}}{{end}}
Registration closes: {{date .Event.RegistrationClosing}}

Sign in to the portal to register your team.

Best regards,
Event Management Team
`))

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(tmplFuncs).Parse(
	`Hello {{.Participant.ParticipantName}},

Thank you for registering for {{.Event.Name}}.

Event: {{.Event.Name}}
Sub-event: {{.Event.SubEvent}}
Role: {{.Participant.Role}}
Date: {{date .Event.Date}}{{if .Event.Time}} at {{.Event.Time}}{{end}}

If you need to make changes or have questions, please contact the event
organizers.

Best regards,
Event Management Team
`))

var cancellationTmpl = template.Must(template.New("cancellation").Funcs(tmplFuncs).Parse(
	`Hello,

{{.Event.Name}}, scheduled for {{date .Event.Date}}, has been cancelled.
Your registration has been removed and no action is needed on your side.

We apologise for the inconvenience.

Best regards,
Event Management Team
`))

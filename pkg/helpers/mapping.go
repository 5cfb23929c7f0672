package helpers

import (
	"strings"

	"github.com/oksasatya/user-records/pkg/events"
	"github.com/oksasatya/user-records/pkg/mailer"
	mailtpl "github.com/oksasatya/user-records/pkg/mailer/templates"
)

// templateForEvent maps a user event type to its email template.
var templateForEvent = map[string]string{
	events.UserCreated: mailtpl.Welcome,
	events.UserUpdated: mailtpl.ProfileUpdated,
	events.UserDeleted: mailtpl.AccountDeleted,
}

// EmailJobFromEvent builds the notification for evt. ok is false when
// the event has no email or no recipient.
func EmailJobFromEvent(evt events.UserEvent, companyName, appURL string) (job mailer.EmailJob, ok bool) {
	tpl, known := templateForEvent[evt.Type]
	to := strings.TrimSpace(evt.Email)
	if !known || to == "" {
		return mailer.EmailJob{}, false
	}
	data := mailtpl.NewEmailData(evt.Type, evt.Name, to,
		mailtpl.WithCompany(companyName, appURL),
		mailtpl.WithImageURL(evt.ImageURL),
		mailtpl.WithTime(evt.OccurredAt),
	)
	return mailer.EmailJob{To: to, Template: tpl, Data: mailtpl.ToMap(data)}, true
}

// RenderJob fills Subject, Text and HTML from the job template.
func RenderJob(job *mailer.EmailJob) error {
	if job.Template == "" {
		return nil
	}
	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return err
	}
	job.Subject, job.Text, job.HTML = subject, text, html
	return nil
}

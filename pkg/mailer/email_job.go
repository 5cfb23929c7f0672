package mailer

// EmailJob is a rendered or renderable email.
// Set Template and Data to render from pkg/mailer/templates, or fill
// Subject/Text/HTML directly.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "profile_updated", "account_deleted"
	Data     map[string]any `json:"data,omitempty"`
}

package mailer

import (
	"context"
	"errors"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun sends email through the Mailgun HTTP API.
type Mailgun struct {
	Domain string
	Sender string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// WithAPIBase points the client at another API root, e.g. the EU region.
func (m *Mailgun) WithAPIBase(base string) *Mailgun {
	m.client.SetAPIBase(base)
	return m
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// Permanent reports whether err is a Mailgun 4xx rejection, such as a bad
// recipient, that a retry cannot fix. 408 and 429 are retryable.
func Permanent(err error) bool {
	var ure *mg.UnexpectedResponseError
	if !errors.As(err, &ure) {
		return false
	}
	switch ure.Actual {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return ure.Actual >= 400 && ure.Actual < 500
}

var _ Sender = (*Mailgun)(nil)

package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/pkg/events"
	"github.com/oksasatya/user-records/pkg/helpers"
	"github.com/oksasatya/user-records/pkg/mailer"
)

type outcome int

const (
	ack outcome = iota
	reject
	requeue
)

type worker struct {
	sender      mailer.Sender
	companyName string
	appURL      string
	logger      *logrus.Logger
}

// handle turns one user event into an email. Malformed messages and
// permanent send failures are rejected; other send failures are requeued.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var evt events.UserEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		helpers.LogError(w.logger, "bad message", err, nil)
		return reject
	}

	job, ok := helpers.EmailJobFromEvent(evt, w.companyName, w.appURL)
	if !ok {
		return ack
	}
	fields := logrus.Fields{"user_id": evt.UserID, "type": evt.Type, "template": job.Template}
	if err := helpers.RenderJob(&job); err != nil {
		helpers.LogError(w.logger, "render failed", err, fields)
		return reject
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.sender.Send(c, job.To, job.Subject, job.Text, job.HTML); err != nil {
		helpers.LogError(w.logger, "send failed", err, fields)
		if mailer.Permanent(err) {
			return reject
		}
		return requeue
	}
	helpers.LogInfo(w.logger, "email sent", fields)
	return ack
}

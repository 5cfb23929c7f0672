// Package events defines messages published after user records change.
package events

import (
	"context"
	"time"
)

const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is the JSON body put on the user events queue.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ImageURL   string    `json:"image_url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends JSON messages to a queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

package application

import (
	"context"
	"errors"
	"expvar"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/internal/domain/entity"
	repo "github.com/oksasatya/user-records/internal/domain/repository"
	"github.com/oksasatya/user-records/pkg/apperror"
	"github.com/oksasatya/user-records/pkg/events"
	"github.com/oksasatya/user-records/pkg/validation"
)

const (
	MsgUserNotFound = "User not found"
	MsgEmailTaken   = "Email already exists"
)

var userCounters = expvar.NewMap("users")

type Service struct {
	Repo         repo.UserRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Events       events.Publisher
}

func NewService(r repo.UserRepository, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, pub events.Publisher) *Service {
	return &Service{
		Repo:         r,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Events:       pub,
	}
}

// UserInput carries the fields of a create or update request.
// A nil pointer means the field was not supplied.
type UserInput struct {
	Name     *string
	Email    *string
	ImageURL *string
	// UploadedImageURL is set when an image was uploaded with the request
	// and always wins over ImageURL.
	UploadedImageURL string
}

type userDoc struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,emailaddr"`
	ImageURL string `json:"imageUrl" validate:"required"`
}

var userMessages = validation.Messages{
	"name.required":     "Name is required",
	"name.min":          "Name must be at least 2 characters",
	"email.required":    "Email is required",
	"email.emailaddr":   "Please enter a valid email",
	"imageUrl.required": "Image URL is required",
}

func validateUser(u *entity.User) error {
	err := validation.Struct(userDoc{Name: u.Name, Email: u.Email, ImageURL: u.ImageURL}, userMessages)
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		return apperror.Validation(errs[0].Field, errs.Error())
	}
	return apperror.Validation("", err.Error())
}

func (s *Service) List(ctx context.Context) ([]entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, s.storeError("failed to list users", "", err)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("failed to load user", id, err)
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, in UserInput) (*entity.User, error) {
	u := &entity.User{
		Name:     deref(in.Name),
		Email:    deref(in.Email),
		ImageURL: deref(in.ImageURL),
	}
	if in.UploadedImageURL != "" {
		u.ImageURL = in.UploadedImageURL
	}
	u.Normalize()

	if err := validateUser(u); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, u.Email, ""); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, s.storeError("failed to create user", "", err)
	}

	s.afterWrite(ctx, events.UserCreated, u)
	return u, nil
}

// Update merges the supplied fields onto the stored record and
// re-validates the result as a whole.
func (s *Service) Update(ctx context.Context, id string, in UserInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("failed to load user", id, err)
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	switch {
	case in.UploadedImageURL != "":
		u.ImageURL = in.UploadedImageURL
	case in.ImageURL != nil:
		u.ImageURL = *in.ImageURL
	}
	u.Normalize()

	if err := validateUser(u); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, u.Email, u.ID); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, s.storeError("failed to update user", id, err)
	}

	s.afterWrite(ctx, events.UserUpdated, u)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return s.storeError("failed to load user", id, err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.storeError("failed to delete user", id, err)
	}

	s.afterWrite(ctx, events.UserDeleted, u)
	return nil
}

// ensureEmailAvailable reports a conflict when another record owns email.
// The unique index remains authoritative for concurrent writers.
func (s *Service) ensureEmailAvailable(ctx context.Context, email, selfID string) error {
	existing, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case err != nil:
		return s.storeError("failed to check email", selfID, err)
	case existing.ID != selfID:
		return apperror.Conflict("email", MsgEmailTaken, repo.ErrDuplicateEmail)
	}
	return nil
}

func (s *Service) storeError(msg, userID string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperror.NotFound(MsgUserNotFound, err)
	case errors.Is(err, repo.ErrDuplicateEmail):
		return apperror.Conflict("email", MsgEmailTaken, err)
	}
	if s.Logger != nil {
		entry := s.Logger.WithError(err)
		if userID != "" {
			entry = entry.WithField("user_id", userID)
		}
		entry.Error(msg)
	}
	return apperror.Infrastructure(msg, err)
}

// afterWrite runs best-effort side effects of a successful mutation.
func (s *Service) afterWrite(ctx context.Context, eventType string, u *entity.User) {
	userCounters.Add(eventType, 1)

	if eventType == events.UserDeleted {
		_ = s.unindexUser(ctx, u.ID)
	} else {
		_ = s.indexUser(ctx, u)
	}

	if s.Events == nil {
		return
	}
	evt := events.UserEvent{
		Type:       eventType,
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		ImageURL:   u.ImageURL,
		OccurredAt: time.Now().UTC(),
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Events.PublishJSON(c, evt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "type": eventType}).Warn("publish user event failed")
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

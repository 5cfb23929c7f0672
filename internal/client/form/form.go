package form

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/oksasatya/user-records/internal/client/store"
	"github.com/oksasatya/user-records/internal/domain/entity"
	"github.com/oksasatya/user-records/pkg/client"
	"github.com/oksasatya/user-records/pkg/validation"
)

const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldImage  = "imageUrl"
	FieldSubmit = "submit"
)

const (
	MsgNameRequired  = "Name is required"
	MsgNameTooShort  = "Name must be at least 2 characters long"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Please enter a valid email address"
	MsgImageRequired = "Image is required"
	MsgImageTooLarge = "Image size should be less than 5MB"
	MsgImageType     = "Please upload a valid image file (JPEG, PNG, GIF, or WEBP)"
	MsgSubmitFailed  = "An error occurred while saving the user"
)

// ErrInvalid is returned by Submit when client-side validation fails.
var ErrInvalid = errors.New("form has invalid fields")

// Saver dispatches the create or update. *store.Store satisfies it.
type Saver interface {
	CreateUser(ctx context.Context, p client.Payload) *store.Pending[client.User]
	UpdateUser(ctx context.Context, id string, p client.Payload) *store.Pending[client.User]
}

type Values struct {
	Name     string
	Email    string
	ImageURL string
}

// File is an image picked for upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Controller holds the state of the create/edit form. It is not safe for
// concurrent use.
type Controller struct {
	ID      string
	Values  Values
	File    *File
	Touched map[string]bool
	Errors  map[string]string

	saver    Saver
	navigate func(client.User)
}

// New returns a form for a new record, or for editing existing when it is
// not nil. navigate runs after a successful save.
func New(saver Saver, existing *client.User, navigate func(client.User)) *Controller {
	c := &Controller{
		Touched:  map[string]bool{},
		Errors:   map[string]string{},
		saver:    saver,
		navigate: navigate,
	}
	if existing != nil {
		c.ID = existing.Key()
		c.Values = Values{Name: existing.Name, Email: existing.Email, ImageURL: existing.ImageURL}
	}
	return c
}

// Change sets a text field, marks it touched and validates it.
func (c *Controller) Change(field, value string) {
	switch field {
	case FieldName:
		c.Values.Name = value
	case FieldEmail:
		c.Values.Email = value
	case FieldImage:
		c.Values.ImageURL = value
	default:
		return
	}
	c.Touched[field] = true
	c.validateField(field)
}

func (c *Controller) Blur(field string) {
	c.Touched[field] = true
	c.validateField(field)
}

// SelectImage validates f and keeps it only when it passes. A nil f means
// the selection was cleared.
func (c *Controller) SelectImage(f *File) bool {
	c.Touched[FieldImage] = true
	switch {
	case f == nil:
		c.Errors[FieldImage] = MsgImageRequired
		return false
	case f.Size > entity.MaxImageBytes:
		c.Errors[FieldImage] = MsgImageTooLarge
		return false
	case !entity.IsAllowedImageType(f.ContentType):
		c.Errors[FieldImage] = MsgImageType
		return false
	}
	c.File = f
	c.Errors[FieldImage] = ""
	return true
}

// Validate checks every field and marks all of them touched.
func (c *Controller) Validate() bool {
	ok := c.validateField(FieldName)
	ok = c.validateField(FieldEmail) && ok

	if c.File == nil && strings.TrimSpace(c.Values.ImageURL) == "" {
		c.Errors[FieldImage] = MsgImageRequired
		ok = false
	} else {
		c.Errors[FieldImage] = ""
	}

	for _, f := range []string{FieldName, FieldEmail, FieldImage} {
		c.Touched[f] = true
	}
	return ok
}

// Visible returns the error for field if the field has been touched.
func (c *Controller) Visible(field string) string {
	if field != FieldSubmit && !c.Touched[field] {
		return ""
	}
	return c.Errors[field]
}

// Submit validates, then creates or updates the record and waits for the
// result. Failures from the server land in Errors["submit"].
func (c *Controller) Submit(ctx context.Context) (*client.User, error) {
	if !c.Validate() {
		return nil, ErrInvalid
	}
	delete(c.Errors, FieldSubmit)

	p := client.Payload{Name: c.Values.Name, Email: c.Values.Email}
	if c.File != nil {
		p.Image = &client.Image{Filename: c.File.Name, ContentType: c.File.ContentType, Data: c.File.Data}
	} else {
		p.ImageURL = c.Values.ImageURL
	}

	var pending *store.Pending[client.User]
	if c.ID != "" {
		pending = c.saver.UpdateUser(ctx, c.ID, p)
	} else {
		pending = c.saver.CreateUser(ctx, p)
	}
	u, err := pending.Wait()
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgSubmitFailed
		}
		c.Errors[FieldSubmit] = msg
		return nil, err
	}
	if c.navigate != nil {
		c.navigate(u)
	}
	return &u, nil
}

func (c *Controller) validateField(field string) bool {
	msg := ""
	switch field {
	case FieldName:
		name := strings.TrimSpace(c.Values.Name)
		if name == "" {
			msg = MsgNameRequired
		} else if utf8.RuneCountInString(name) < 2 {
			msg = MsgNameTooShort
		}
	case FieldEmail:
		email := strings.TrimSpace(c.Values.Email)
		if email == "" {
			msg = MsgEmailRequired
		} else if !validation.IsEmail(email) {
			msg = MsgEmailInvalid
		}
	default:
		return true
	}
	c.Errors[field] = msg
	return msg == ""
}

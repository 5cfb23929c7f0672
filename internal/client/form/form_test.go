package form

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oksasatya/user-records/internal/client/store"
	"github.com/oksasatya/user-records/pkg/client"
)

type recordingAPI struct {
	payloads []client.Payload
	updated  string
	err      error
}

func (a *recordingAPI) ListUsers(context.Context) ([]client.User, error) { return nil, nil }

func (a *recordingAPI) CreateUser(_ context.Context, p client.Payload) (*client.User, error) {
	a.payloads = append(a.payloads, p)
	if a.err != nil {
		return nil, a.err
	}
	return &client.User{ID: "new", Name: p.Name, Email: p.Email}, nil
}

func (a *recordingAPI) UpdateUser(_ context.Context, id string, p client.Payload) (*client.User, error) {
	a.payloads = append(a.payloads, p)
	a.updated = id
	if a.err != nil {
		return nil, a.err
	}
	return &client.User{ID: id, Name: p.Name, Email: p.Email}, nil
}

func (a *recordingAPI) DeleteUser(context.Context, string) (string, error) { return "", nil }

func TestFieldValidation(t *testing.T) {
	c := New(nil, nil, nil)

	cases := []struct {
		field, value, want string
	}{
		{FieldName, "   ", MsgNameRequired},
		{FieldName, " A ", MsgNameTooShort},
		{FieldName, "Ann", ""},
		{FieldEmail, "", MsgEmailRequired},
		{FieldEmail, "ann@example", MsgEmailInvalid},
		{FieldEmail, "ann@example.com", ""},
	}
	for _, tc := range cases {
		c.Change(tc.field, tc.value)
		if got := c.Visible(tc.field); got != tc.want {
			t.Errorf("%s=%q: got %q want %q", tc.field, tc.value, got, tc.want)
		}
	}
}

func TestBlurMarksTouched(t *testing.T) {
	c := New(nil, nil, nil)
	c.Errors[FieldName] = MsgNameRequired
	if c.Visible(FieldName) != "" {
		t.Fatal("untouched field should not show an error")
	}
	c.Blur(FieldName)
	if !c.Touched[FieldName] || c.Visible(FieldName) != MsgNameRequired {
		t.Fatalf("expected touched name with error, got %q", c.Visible(FieldName))
	}
}

func TestSelectImage(t *testing.T) {
	c := New(nil, nil, nil)

	if c.SelectImage(nil) || c.Errors[FieldImage] != MsgImageRequired {
		t.Fatalf("expected required error, got %q", c.Errors[FieldImage])
	}
	if c.SelectImage(&File{Name: "big.png", ContentType: "image/png", Size: 5<<20 + 1}) || c.Errors[FieldImage] != MsgImageTooLarge {
		t.Fatalf("expected size error, got %q", c.Errors[FieldImage])
	}
	if c.SelectImage(&File{Name: "a.pdf", ContentType: "application/pdf", Size: 10}) || c.Errors[FieldImage] != MsgImageType {
		t.Fatalf("expected type error, got %q", c.Errors[FieldImage])
	}
	if c.File != nil {
		t.Fatal("rejected files must not be kept")
	}
	if !c.SelectImage(&File{Name: "a.webp", ContentType: "image/webp", Size: 10}) || c.Errors[FieldImage] != "" {
		t.Fatalf("expected webp accepted, got %q", c.Errors[FieldImage])
	}
}

func TestSubmit_BlockedWhenInvalid(t *testing.T) {
	api := &recordingAPI{}
	navigated := false
	c := New(store.New(api, nil), nil, func(client.User) { navigated = true })

	c.Change(FieldName, "Ann")
	_, err := c.Submit(context.Background())
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if len(api.payloads) != 0 || navigated {
		t.Fatal("invalid form must not dispatch or navigate")
	}
	for _, f := range []string{FieldName, FieldEmail, FieldImage} {
		if !c.Touched[f] {
			t.Fatalf("expected %s touched", f)
		}
	}
	if c.Visible(FieldEmail) != MsgEmailRequired || c.Visible(FieldImage) != MsgImageRequired {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
}

func TestSubmit_CreateWithFile(t *testing.T) {
	api := &recordingAPI{}
	var landed client.User
	c := New(store.New(api, nil), nil, func(u client.User) { landed = u })

	c.Change(FieldName, "Ann")
	c.Change(FieldEmail, "ANN@Example.com")
	c.Change(FieldImage, "https://example.com/old.png")
	c.SelectImage(&File{Name: "a.jpg", ContentType: "image/jpeg", Size: 3, Data: []byte("jpg")})

	u, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if u.ID != "new" || landed.ID != "new" {
		t.Fatalf("expected navigation with created user, got %+v / %+v", u, landed)
	}
	p := api.payloads[0]
	if p.Image == nil || p.Image.Filename != "a.jpg" || p.ImageURL != "" {
		t.Fatalf("expected file payload without imageUrl, got %+v", p)
	}
}

func TestSubmit_UpdateKeepsExistingImage(t *testing.T) {
	api := &recordingAPI{}
	existing := &client.User{ID: "u1", Name: "Ann", Email: "ann@example.com", ImageURL: "http://x/uploads/a.png"}
	c := New(store.New(api, nil), existing, nil)

	c.Change(FieldName, "Ann B")
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if api.updated != "u1" {
		t.Fatalf("expected update of u1, got %q", api.updated)
	}
	p := api.payloads[0]
	if p.Image != nil || p.ImageURL != existing.ImageURL || p.Name != "Ann B" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestSubmit_ServerErrorShown(t *testing.T) {
	api := &recordingAPI{err: &client.Error{StatusCode: 400, Message: "Email already exists"}}
	navigated := false
	c := New(store.New(api, nil), nil, func(client.User) { navigated = true })
	c.Change(FieldName, "Ann")
	c.Change(FieldEmail, "ann@example.com")
	c.Change(FieldImage, "https://example.com/a.png")

	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if navigated {
		t.Fatal("must not navigate on failure")
	}
	if got := c.Visible(FieldSubmit); got != "Email already exists" {
		t.Fatalf("unexpected submit error %q", got)
	}

	api.err = errors.New("")
	_, _ = c.Submit(context.Background())
	if got := c.Visible(FieldSubmit); !strings.HasPrefix(got, "An error occurred") {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

package validation

import (
	"errors"
	"testing"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,emailaddr"`
	Size  int    `form:"size" validate:"omitempty,max=50"`
}

func TestIsEmail(t *testing.T) {
	valid := []string{"ann@example.com", "a.b+c@sub.domain.io", "x@y.z"}
	invalid := []string{"", "ann", "ann@example", "ann @example.com", "@example.com", "ann@.com@x", "ann@example."}
	for _, s := range valid {
		if !IsEmail(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsEmail(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestStruct_CustomMessages(t *testing.T) {
	msgs := Messages{
		"name.required":   "Name is required",
		"email.emailaddr": "Please enter a valid email",
	}
	err := Struct(sample{Email: "nope"}, msgs)

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T (%v)", err, err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "name" || errs[0].Message != "Name is required" {
		t.Fatalf("unexpected first error: %+v", errs[0])
	}
	if errs[1].Field != "email" || errs[1].Message != "Please enter a valid email" {
		t.Fatalf("unexpected second error: %+v", errs[1])
	}
	if err.Error() != "Name is required, Please enter a valid email" {
		t.Fatalf("unexpected joined message: %q", err.Error())
	}
}

func TestStruct_GenericMessages(t *testing.T) {
	err := Struct(sample{Name: "A", Email: "a@b.co", Size: 99}, nil)
	details := ToDetails(err)
	if details["name"] != "name must be at least 2 characters long" {
		t.Fatalf("unexpected name detail: %q", details["name"])
	}
	if details["size"] != "size must be at most 50" {
		t.Fatalf("unexpected size detail: %q", details["size"])
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(sample{Name: "Ann", Email: "ann@example.com"}, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestToDetails_Fallback(t *testing.T) {
	if ToDetails(nil) != nil {
		t.Fatal("expected nil details for nil error")
	}
	if got := ToDetails(errors.New("weird")); got["payload"] != "invalid payload" {
		t.Fatalf("unexpected fallback: %v", got)
	}
}

package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Error carries a user-facing message, the offending field (if any)
// and the underlying cause.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Conflict(field, message string, cause error) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message, Err: cause}
}

func NotFound(message string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: cause}
}

func Infrastructure(message string, cause error) *Error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FieldOf returns the offending field of the first *Error in err's chain.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// HTTPStatus maps err to a response status. Conflicts share the
// validation channel; anything unclassified is a server error.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

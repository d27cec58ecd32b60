package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Errors  []string `json:"errors,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so callers can use errors.Is with the predefined values.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// Messages returns the user-facing messages carried by the error.
func (e *Error) Messages() []string {
	if e == nil {
		return nil
	}
	if len(e.Errors) > 0 {
		return e.Errors
	}
	return []string{e.Message}
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation          = New("VALIDATION_FAILED", http.StatusBadRequest, "validation failed")
	ErrCredentialRejected  = New("CREDENTIAL_REJECTED", http.StatusBadRequest, "credential rejected")
	ErrAuthenticationFail  = New("AUTHENTICATION_FAILED", http.StatusBadRequest, "Invalid username or password")
	ErrAccountLocked       = New("ACCOUNT_LOCKED", http.StatusBadRequest, "User temporarily blocked due to invalid attempts")
	ErrTokenInvalid        = New("TOKEN_INVALID", http.StatusBadRequest, "Invalid Token")
	ErrTokenSuperseded     = New("TOKEN_SUPERSEDED", http.StatusBadRequest, "Expired token")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrPayloadTooLarge     = New("PAYLOAD_TOO_LARGE", http.StatusBadRequest, "1MB limit input size")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "An unexpected error occurred, but we are currently checking it out")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrInvalidResetLink    = New("RESET_LINK_INVALID", http.StatusBadRequest, "The link used is not valid")
	ErrInvalidResetCode    = New("RESET_CODE_INVALID", http.StatusBadRequest, "Invalid token.")
	ErrProfileIncomplete   = New("PROFILE_INCOMPLETE", http.StatusBadRequest, "User did not complete registration")
	ErrProfileExists       = New("PROFILE_EXISTS", http.StatusBadRequest, "User has already been registered")
	ErrProfileImageMissing = New("PROFILE_IMAGE_MISSING", http.StatusBadRequest, "Provide your profile picture")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
		clone.Errors = nil
	}
	return &clone
}

// WithMessages returns a copy of err carrying the provided user-facing messages.
func WithMessages(err *Error, messages ...string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Errors = append([]string(nil), messages...)
	if len(messages) > 0 {
		clone.Message = messages[0]
	}
	return &clone
}

// FromValidation converts validator failures into a ValidationFailed error with one message per field.
func FromValidation(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Wrap(err, ErrValidation.Code, ErrValidation.Status, ErrValidation.Message)
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	out := WithMessages(ErrValidation, messages...)
	out.Err = err
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required", field)
	case "email":
		return "Invalid e-mail"
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s must be at most %s characters long", field, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "gte", "lte":
		return fmt.Sprintf("The %s field is out of range", field)
	default:
		return fmt.Sprintf("The %s field is invalid (%s)", field, strings.ToLower(fe.Tag()))
	}
}

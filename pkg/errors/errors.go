package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
)

// ValidationError is a domain error annotated with where in a mapping it happened.
type ValidationError struct {
	Object  string
	Field   string
	Target  string
	Check   string
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// NewValidationErrorf creates a ValidationError with a formatted message.
// %w verbs are rendered with the wrapped error's text.
func NewValidationErrorf(format string, args ...any) *ValidationError {
	for i, arg := range args {
		if err, ok := arg.(error); ok && strings.Contains(format, "%w") {
			format = strings.Replace(format, "%w", "%v", 1)
			args[i] = err.Error()
		}
	}

	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func WrapValidationError(e error) *ValidationError {
	if e == nil {
		return nil
	}

	if validationError, ok := e.(*ValidationError); ok {
		return validationError
	}

	return &ValidationError{Message: e.Error()}
}

func (e *ValidationError) Error() string {
	path := []string{}
	if e.Object != "" {
		path = append(path, fmt.Sprintf("object '%s'", e.Object))
	}
	if e.Field != "" {
		path = append(path, fmt.Sprintf("field '%s'", e.Field))
	}
	if e.Target != "" {
		path = append(path, fmt.Sprintf("target '%s'", e.Target))
	}
	if e.Check != "" {
		path = append(path, fmt.Sprintf("check '%s'", e.Check))
	}

	if len(path) == 0 {
		return e.Message
	}

	return strings.Join(path, " -> ") + ": " + e.Message
}

func (e *ValidationError) AddObject(object string) *ValidationError {
	e.Object = object
	return e
}

func (e *ValidationError) AddField(field string) *ValidationError {
	e.Field = field
	return e
}

func (e *ValidationError) AddTarget(target string) *ValidationError {
	e.Target = target
	return e
}

func (e *ValidationError) AddCheck(check string) *ValidationError {
	e.Check = check
	return e
}

func (e *ValidationError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusBadRequest, e.Error()).
		AddMetaValue("object", e.Object).
		AddMetaValue("field", e.Field).
		AddMetaValue("target", e.Target).
		AddMetaValue("check", e.Check)
}

func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// ToHTTPError converts validation errors to 400s and leaves anything else untouched.
func ToHTTPError(err error) error {
	if ve, ok := err.(*ValidationError); ok {
		return ve.ToHTTPError()
	}
	return err
}

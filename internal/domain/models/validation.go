// internal/domain/models/validation.go
package models

import (
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/pantry/validate"
)

// Field limits shared by every storage backend. The validate tags on the
// record types carry the same numbers.
const (
	MaxTitleLen   = 200
	MaxBodyLen    = 20000
	MaxSubjectLen = 100
)

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var validator = validate.New(validate.WithStopOnFirstError())

// Check runs the validate tags on v and returns the first failure as a
// *ValidationError named by the field's JSON key.
func Check(v any) error {
	return validateStruct(v)
}

func validateStruct(v any) error {
	err := validator.Struct(v)
	var errs validate.Errors
	if errors.As(err, &errs) {
		first := errs.First()
		if first == nil {
			return nil
		}
		return fieldError(first)
	}
	return err
}

func fieldError(e *validate.Error) *ValidationError {
	msg := e.Message
	if e.Rule == "max" {
		msg = fmt.Sprintf("%s must be at most %s characters", e.Field, e.Param)
	}
	return &ValidationError{Field: e.Field, Message: msg}
}

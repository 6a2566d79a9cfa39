// Package validator wraps the go-playground/validator library, adding
// thread-safe initialization and standardized error formatting.
//
// It validates structs using `validate:"..."` tags and returns consistent
// errors that can be logged or matched with errors.Is.
package validator

import (
	"errors"
	"fmt"
	"sync"

	gvalidator "github.com/go-playground/validator/v10"
)

// validator is a singleton instance of the go-playground validator.
var (
	validator         *gvalidator.Validate
	initValidatorOnce sync.Once
)

// ErrValidation is returned as the first error when validation fails.
// It acts as a high-level indicator that one or more validation rules were violated.
var ErrValidation = errors.New("validation error")

// errStringFormat defines the format for individual validation error messages.
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

// Init initializes the singleton validator. It is safe to call from multiple
// goroutines and from package init paths; only the first call has effect.
func Init() {
	initValidatorOnce.Do(func() {
		validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
	})
}

// formatError transforms a raw validator error into a structured multi-error
// chain rooted at ErrValidation. Errors that are not validation errors are
// returned unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidation}
	for _, validationErr := range validationErrors {
		err := fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		)

		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate checks if the given struct satisfies its validation tags.
//
// It returns nil if all fields pass validation. Otherwise, it returns a
// combined error that includes ErrValidation and one formatted message for
// each field that failed validation.
//
// Example usage:
//
//	type Input struct {
//	    Address string `validate:"required"`
//	}
//
//	if err := validator.Validate(input); errors.Is(err, validator.ErrValidation) {
//	    // Handle validation failure
//	}
func Validate(v any) error {
	Init()

	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}

// Package validation contains custom validation functions for the application to use for input validation.
//
// New returns a validator bound to a task vocabulary, so the category, status and
// priority tags check against the configured sets rather than compiled-in constants.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"TaskWheelService/config"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one violated constraint of one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// dateLayouts are the accepted due date formats, tried in order.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// New creates a validator with the custom validations registered for vocab.
func New(vocab config.Vocabulary) *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("notblank", FieldValidator)
	validate.RegisterValidation("isodate", DateValidator)
	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return vocab.HasCategory(fl.Field().String())
	})
	validate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return vocab.HasStatus(fl.Field().String())
	})
	validate.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return vocab.HasPriority(fl.Field().String())
	})
	return validate
}

// FieldValidator is a validation function that checks if the field value is empty.
// It returns true if the field value contains anything besides whitespace, and false otherwise.
func FieldValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// DateValidator checks that the field parses with ParseDate.
func DateValidator(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// ParseDate parses an ISO 8601 date or date-time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Errors converts the error returned by validator.Struct into one FieldError per violation.
// Any other error is reported as a single entry without a field.
func Errors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		return "Task title must be between 1 and 100 characters"
	case "description":
		return "Task description cannot exceed 500 characters"
	case "category":
		return "Invalid category"
	case "status":
		return "Invalid status"
	case "priority":
		return "Invalid priority"
	case "dueDate":
		return "Invalid due date format"
	case "fullName":
		return "Full name must be between 2 and 50 characters"
	case "email":
		return "Please provide a valid email"
	case "password":
		if fe.Tag() == "required" {
			return "Password is required"
		}
		return "Password must be between 6 and 72 characters long"
	case "page":
		return "Page must be a positive integer"
	case "limit":
		return "Limit must be between 1 and 100"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names so errors match the request body
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with per-field messages
type ValidationError struct {
	Message string
	Fields  map[string]string
	missing []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.missing) > 0 {
		return fmt.Sprintf("%s: missing %s", e.Message, strings.Join(e.missing, ", "))
	}
	return e.Message
}

// MissingFields lists the fields that failed a required check, sorted
func (e *ValidationError) MissingFields() []string {
	return append([]string(nil), e.missing...)
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	var missing []string

	for _, err := range errs {
		field := err.Field()

		switch err.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
			missing = append(missing, field)
		case "uuid":
			fields[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, err.Tag())
		}
	}

	sort.Strings(missing)
	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
		missing: missing,
	}
}

// NewMissingFieldsError builds a ValidationError for absent fields
func NewMissingFieldsError(fields ...string) *ValidationError {
	msgs := make(map[string]string, len(fields))
	for _, f := range fields {
		msgs[f] = fmt.Sprintf("%s is required", f)
	}
	missing := append([]string(nil), fields...)
	sort.Strings(missing)
	return &ValidationError{Message: "Validation failed", Fields: msgs, missing: missing}
}

// ParseUUID parses an id taken from a path parameter
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID format: %s", s)
	}
	return id, nil
}

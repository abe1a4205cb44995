// Package validation wraps go-playground/validator with the rules and
// messages used by the DoujinDesk request types. Field names in the result
// are the json names of the validated struct.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationResult collects field errors.
type ValidationResult struct {
	errors map[string][]string
}

// NewResult creates an empty result.
func NewResult() *ValidationResult {
	return &ValidationResult{errors: make(map[string][]string)}
}

// AddError adds message to field.
func (r *ValidationResult) AddError(field, message string) {
	r.errors[field] = append(r.errors[field], message)
}

// HasErrors reports whether any field failed.
func (r *ValidationResult) HasErrors() bool {
	return len(r.errors) > 0
}

// Errors returns the messages per field.
func (r *ValidationResult) Errors() map[string][]string {
	return r.errors
}

// First returns the first message of the alphabetically first failing field,
// formatted as "field: message".
func (r *ValidationResult) First() string {
	if !r.HasErrors() {
		return ""
	}
	fields := make([]string, 0, len(r.errors))
	for field := range r.errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", fields[0], r.errors[fields[0]][0])
}

var (
	instance *validator.Validate
	once     sync.Once

	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)
)

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == "" || phonePattern.MatchString(value)
		})

		instance = v
	})
	return instance
}

// Struct validates s and returns the collected field errors.
func Struct(s interface{}) *ValidationResult {
	result := NewResult()

	err := Validator().Struct(s)
	if err == nil {
		return result
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		result.AddError("_", err.Error())
		return result
	}

	for _, fe := range fieldErrors {
		result.AddError(fieldName(fe), message(fe))
	}
	return result
}

// fieldName drops the root struct name from the namespace:
// "PurchaseInput.attendee_email" → "attendee_email".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "phone":
		return "must be a valid phone number"
	case "url":
		return "must be a valid URL"
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

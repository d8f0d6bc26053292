// Package validation wraps go-playground/validator with the error messages
// used across the API. Field names in messages are the JSON names clients send.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// Validator validates structs tagged with `validate:"..."`.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields after their json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates i and returns a domain validation error describing the
// first violated field, or nil.
func (v *Validator) Struct(i any) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return domain.ValidationError(FieldMessage(ve[0]))
	}
	return domain.ValidationError(err.Error())
}

// Var validates a single value against tag, reporting failures under name.
func (v *Validator) Var(name string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return domain.ValidationError(name + FieldMessage(ve[0]))
	}
	return domain.ValidationError(err.Error())
}

// FieldMessage converts a single FieldError into a human-readable message.
func FieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

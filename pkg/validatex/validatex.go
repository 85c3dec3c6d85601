// Package validatex wraps go-playground/validator with JSON field names and a
// flat error type that is safe to show to API callers.
package validatex

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// Errors collects every failure found in one struct.
type Errors []FieldError

func (v Errors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, fe := range v {
		switch {
		case fe.Tag == "required":
			parts[i] = fe.Field + " is required"
		case fe.Param != "":
			parts[i] = fe.Field + " failed on " + fe.Tag + "=" + fe.Param
		default:
			parts[i] = fe.Field + " failed on " + fe.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(Errors, 0, len(ve))
		for _, fe := range ve {
			out = append(out, FieldError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return out
	}
	return err
}

func get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

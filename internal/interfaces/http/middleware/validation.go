package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yatube/backend/internal/domain/shared"
)

// SetupValidator makes binding errors report form field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			}
			return name
		})
	}
}

// FieldErrorsFromBinding converts a binding error into per-field messages.
// Errors that are not validation failures land on the empty key.
func FieldErrorsFromBinding(err error) shared.FieldErrors {
	fields := shared.FieldErrors{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fields.Add("", "The submitted form could not be read.")
		return fields
	}
	for _, e := range validationErrors {
		fields.Add(e.Field(), getValidationMessage(e))
	}
	return fields
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if e.Kind() == reflect.String {
			s, _ := e.Value().(string)
			return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", e.Param(), utf8.RuneCountInString(s))
		}
		return "Ensure this value is less than or equal to " + e.Param() + "."
	case "min":
		if e.Kind() == reflect.String {
			s, _ := e.Value().(string)
			return fmt.Sprintf("Ensure this value has at least %s characters (it has %d).", e.Param(), utf8.RuneCountInString(s))
		}
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "alphanum":
		return "Enter a valid value."
	case "oneof":
		return "Select a valid choice."
	default:
		return "Enter a valid value."
	}
}

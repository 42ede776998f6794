package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	CommentMinLength = 10
	CommentMaxLength = 1000

	PasswordMinLength = 8
	// bcrypt only accepts this many bytes
	PasswordMaxBytes = 72
)

// validate is shared by every service. Field errors are reported under the
// name of the `form` tag, so they line up with the HTML form fields.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct's `validate` tags and records every failing
// field in verr.
func validateStruct(s interface{}, verr *ValidationError) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	for _, fe := range fes {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "http_url", "url":
		return field + " must be a valid http:// or https:// URL"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " may not be longer than " + fe.Param() + " characters"
	}
	return field + " is invalid"
}

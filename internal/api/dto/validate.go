package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank rejects strings that are empty after trimming whitespace.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags of a request and reports failures as a
// validation error keyed by JSON field name.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	details := map[string]any{}
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return errorutil.NewValidationError("invalid payload", details)
}

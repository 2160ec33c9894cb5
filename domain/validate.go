package domain

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required-field presence on a form payload
// (TaskFields, MeetingFields). Nothing beyond presence is enforced;
// all other validation is the backend's job.
func Validate(payload any) error {
	return validate.Struct(payload)
}

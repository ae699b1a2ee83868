// Package validator provides struct validation with field-level messages
// for the job application API.
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// mobileRegex matches a mobile number of exactly ten digits
var mobileRegex = regexp.MustCompile(`^\d{10}$`)

// FieldErrors maps a JSON field name to a human-readable message
type FieldErrors map[string]string

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages line up with the payload
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobileRegex.MatchString(fl.Field().String())
	})
}

// Struct validates v. Messages are looked up by "field.tag" (for example
// "emailId.email"); unknown combinations get a generic message.
// Returns nil when v is valid.
func Struct(v interface{}, messages map[string]string) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"general": err.Error()}
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			fields[fe.Field()] = msg
			continue
		}
		fields[fe.Field()] = fe.Field() + " failed the " + fe.Tag() + " check."
	}
	return fields
}

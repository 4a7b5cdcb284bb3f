// Package validation wraps go-playground/validator so that every violation
// in a payload is reported at once, keyed by the payload's JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/acme/catalog-system/internal/core/domain"
)

var (
	titlePattern  = regexp.MustCompile(`^\w.*`)
	prodnrPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*(-[A-Z0-9]+)+$`)
)

// Validator is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the catalog's custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("title", func(fl validator.FieldLevel) bool {
		return titlePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("prodnr", func(fl validator.FieldLevel) bool {
		return prodnrPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Fields validates s and returns every violation. The result is nil when s
// is valid.
func (val *Validator) Fields(s any) (domain.FieldErrors, error) {
	err := val.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate: %w", err)
	}

	out := make(domain.FieldErrors, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = message(fe)
	}
	return out, nil
}

// Struct validates s and wraps violations in a *domain.ValidationError.
func (val *Validator) Struct(s any) error {
	fields, err := val.Fields(s)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "isbn":
		return "must be a valid ISBN-10 or ISBN-13"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return fmt.Sprintf("must be a date in the format %s", fe.Param())
	case "title":
		return "must start with a letter, digit or underscore"
	case "prodnr":
		return "must be a production number like ABC-123"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

package handler

import (
	"github.com/acme/catalog-system/internal/core/validation"
)

// echoValidator lets Echo call c.Validate(req) with the catalog's validator,
// so request violations surface as *domain.ValidationError.
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator(v *validation.Validator) *echoValidator {
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}

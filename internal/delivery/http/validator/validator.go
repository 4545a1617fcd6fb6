// Package validator adapts go-playground/validator to Echo's Validator
// interface.
package validator

import (
	domainerrors "boutique/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps a validator.Validate instance.
type echoValidator struct {
	validate *validator.Validate
}

// New builds the validator installed on the Echo server.
func New() *echoValidator {
	return &echoValidator{validate: validator.New()}
}

// Validate checks a bound request struct against its validate tags. Failures
// map to the shared validation error so the error handler renders a 400.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

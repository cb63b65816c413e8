// Package service holds the business rules between the HTTP handlers and the
// repositories:
//
//	Handler (HTTP) → Service (validation, defaults, credentials) → Repository
//
// Services accept plain input structs, never *http.Request, and return
// apperror values that the handler layer maps to status codes. Required-field
// checks are declared as `validate` struct tags and run through a shared
// go-playground validator.
package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/chronoflow/internal/apperror"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// checkRequired runs the struct's validate tags and reports any failure as a
// single validation error carrying message. The first offending field is kept
// for logging; clients only ever see message.
func checkRequired(input any, message string) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.ValidationFailed(strings.ToLower(verrs[0].Field()), message)
	}
	return apperror.ValidationFailed("", message)
}

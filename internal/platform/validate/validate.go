// Package validate provides a singleton struct validator for input types
package validate

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	perr "leadscout/internal/platform/errors"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Get returns the validator singleton, initializing on first use
func Get() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
	})
	return v
}

// Struct validates s and folds field errors into one validation error
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return perr.Wrap(err, perr.CodeValidation, "validate input")
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return perr.Validationf("invalid input: %s", strings.Join(parts, ", "))
}

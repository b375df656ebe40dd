package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the currency and countrycode rules to gin's
// validator engine. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.NewConfigurationError("gin validator engine is not validator/v10", nil)
			return
		}
		registerErr = RegisterRules(v)
	})
	return registerErr
}

// RegisterRules adds the custom rules to a validator instance
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return validation.IsValidCurrencyCode(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("countrycode", func(fl validator.FieldLevel) bool {
		return validation.IsValidCountryCode(fl.Field().String())
	})
}

package server

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/weddingrsvp/rsvp/domain"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the custom binding tags to gin's validator.
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator is not go-playground/validator")
			return
		}
		registerErr = v.RegisterValidation("allergen", validateAllergen)
	})
	return registerErr
}

// validateAllergen accepts known allergen keys, ignoring case and surrounding space.
func validateAllergen(fl validator.FieldLevel) bool {
	return domain.IsAllergen(strings.ToLower(strings.TrimSpace(fl.Field().String())))
}

package utils

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/duty-roster/models"
)

var registerOnce sync.Once

// RegisterValidators adds the "role" and "shift" binding tags to gin's
// validator. Both accept lower-case input.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseRole(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("shift", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseShift(fl.Field().String())
			return ok
		})
	})
}

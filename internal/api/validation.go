package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cavos-labs/forma-api/internal/notification"
)

// crc_phone accepts Costa Rican numbers in the formats members actually
// type: 8 digits, with or without the 506 country code or a plus sign.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("crc_phone", func(fl validator.FieldLevel) bool {
		_, err := notification.FormatPhone(fl.Field().String())
		return err == nil
	})
}

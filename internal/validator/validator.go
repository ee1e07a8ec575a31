// Package validator registers custom validation tags with Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// tenorRegex matches maturity bucket labels such as "3M", "2Y", "10Y".
var tenorRegex = regexp.MustCompile(`^[0-9]{1,3}[DWMY]$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tenor", validateTenor)
	}
}

// IsTenor reports whether s is a well-formed maturity bucket label.
func IsTenor(s string) bool {
	return tenorRegex.MatchString(s)
}

func validateTenor(fl validator.FieldLevel) bool {
	return IsTenor(fl.Field().String())
}

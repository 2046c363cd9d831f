package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/opel-edu/dashboard/core"
)

var (
	statusTag  = "student_status"
	statusText = "status must be one of: active, inactive"
)

// RegisterValidators registers the student validation tags on validate.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// Custom Validators

// statusValidation checks that the status is a known one
func statusValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StatusActive, StatusInactive:
		return true
	}
	return false
}

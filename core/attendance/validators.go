package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shikshaconnect/shiksha/core"
)

var (
	statusTag  = "attstatus"
	statusText = "must be one of: present, absent, late"

	methodTag  = "attmethod"
	methodText = "must be one of: facial_recognition, manual, rfid"
)

// InitValidators registers attendance-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(methodTag, methodValidation)
	core.RegisterCustomTranslation(validate, translator, methodTag, methodText)
}

func statusValidation(fl validator.FieldLevel) bool {
	return contains(AllStatuses, fl.Field().String())
}

func methodValidation(fl validator.FieldLevel) bool {
	return contains(AllMethods, fl.Field().String())
}

func contains(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}

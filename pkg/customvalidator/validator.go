package customvalidator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"equiptrack/pkg/constants"
)

// RegisterCustomValidations wires the project-specific validation rules
// into the given validator instance.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("role_code", isKnownRole); err != nil {
		return err
	}
	if err := v.RegisterValidation("request_type", isKnownRequestType); err != nil {
		return err
	}
	if err := v.RegisterValidation("movement_date", isMovementDate); err != nil {
		return err
	}
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	return nil
}

func isKnownRole(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	for _, r := range constants.AllRoles {
		if r == code {
			return true
		}
	}
	return false
}

func isKnownRequestType(fl validator.FieldLevel) bool {
	t := fl.Field().String()
	return t == constants.RequestTypeBorrow || t == constants.RequestTypeReturn
}

// isMovementDate accepts an empty value (target date is optional) or a
// plain calendar date.
func isMovementDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(constants.MovementDateLayout, s)
	return err == nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(fl.Field().String())
}

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Nikman800/GambaGame/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

var (
	validate     *Validator
	validateOnce sync.Once
)

// GetValidator returns the shared validator, building it on first use.
func GetValidator() *Validator {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("bracket_type", validateBracketType)
		_ = v.RegisterValidation("not_bye", validateNotBye)
		validate = &Validator{validate: v}
	})
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a field → message map.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		case "gte":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "bracket_type":
			errs[field] = "Must be one of single, double, triple, roundRobin"
		case "not_bye":
			errs[field] = fmt.Sprintf("%q is reserved", models.Bye)
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

func validateBracketType(fl validator.FieldLevel) bool {
	switch models.BracketType(fl.Field().String()) {
	case models.BracketTypeSingle, models.BracketTypeDouble, models.BracketTypeTriple, models.BracketTypeRoundRobin:
		return true
	}
	return false
}

func validateNotBye(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != models.Bye
}

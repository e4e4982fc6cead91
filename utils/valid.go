// utils/valid.go
package utils

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/HSouheill/homeservices_backend/models"
)

// Validator runs the payload schemas. It satisfies echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// fieldMessages overrides the generated message for a json field and tag
var fieldMessages = map[string]string{
	"rating.min":        "Rating must be between 1 and 5",
	"rating.max":        "Rating must be between 1 and 5",
	"email.email":       "Invalid email address",
	"image.url":         "Image must be a valid URL",
	"photoURL.url":      "Photo must be a valid URL",
	"date.calendardate": "Invalid date",
	"zip.min":           "Zip code must be at least 6 characters",
}

// NewValidator creates a validator with the custom marketplace rules registered
func NewValidator() *Validator {
	v := validator.New()

	// Report json names so messages match the payload the client sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phonedigits", validatePhoneDigits)
	_ = v.RegisterValidation("calendardate", validateCalendarDate)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("money", validateMoney)

	return &Validator{validate: v}
}

// Validate validates the request body and returns the first issue as a
// ValidationFailed action error
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return models.ErrValidation(messageFor(verrs[0]))
	}
	return models.ErrValidation("Invalid request")
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	case "email":
		return "Invalid email address"
	case "url":
		return label + " must be a valid URL"
	case "phonedigits":
		return "Phone number must be at least 10 digits"
	case "calendardate":
		return "Invalid date"
	case "money":
		return label + " must have at most two decimal places"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	}
	return label + " is invalid"
}

// fieldLabel turns "serviceName" into "Service name"
func fieldLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CountDigits returns the number of decimal digits in s
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func validatePhoneDigits(fl validator.FieldLevel) bool {
	return CountDigits(fl.Field().String()) >= 10
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateMoney accepts amounts that are a whole number of paise
func validateMoney(fl validator.FieldLevel) bool {
	paise := fl.Field().Float() * 100
	return math.Abs(paise-math.Round(paise)) < 1e-6
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := ParseCalendarDate(fl.Field().String())
	return err == nil
}

// ParseCalendarDate accepts a plain date or a full RFC 3339 timestamp
func ParseCalendarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

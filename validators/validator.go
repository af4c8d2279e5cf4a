package validators

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// fieldValidator checks single values outside of request structs
var fieldValidator = validator.New()

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// CustomValidator plugs go-playground/validator into echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the echo validator with the "username" and "password" tags registered
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, describe(err))
	}
	return nil
}

// IsValidUsername accepts letters, digits and underscores
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// IsValidEmail reports whether s is a well-formed email address
func IsValidEmail(s string) bool {
	return fieldValidator.Var(s, "required,email") == nil
}

// IsStrongPassword requires MinPasswordLength characters with an upper, a lower and a digit
func IsStrongPassword(s string) bool {
	if len(s) < MinPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must have %s %s characters", field, fe.Tag(), fe.Param()))
		case "username":
			msgs = append(msgs, "username may only contain letters, numbers and underscores")
		case "password":
			msgs = append(msgs, fmt.Sprintf("password must be at least %d characters with upper case, lower case and a digit", MinPasswordLength))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

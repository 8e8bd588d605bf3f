package auth

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ayush/pokedex/internal/models"
)

// messages maps "field.tag" to the text shown next to the form field.
var messages = map[string]string{
	"username.required":         "Username is required.",
	"username.min":              "Username must be between 3 and 30 characters.",
	"username.max":              "Username must be between 3 and 30 characters.",
	"email.required":            "Email is required.",
	"email.email":               "Invalid email address.",
	"email.max":                 "Email must be at most 100 characters.",
	"password.required":         "Password is required.",
	"password.min":              "Password must be at least 6 characters long.",
	"confirm_password.required": "Please confirm your password.",
	"confirm_password.eqfield":  "Passwords must match.",
	"identifier.required":       "Username or Email is required.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// checkForm runs struct validation and converts failures into a
// models.ValidationError. It returns nil when form is valid.
func checkForm(v *validator.Validate, form any) *models.ValidationError {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	verr := models.NewValidationError()
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("form", "Invalid form submission.", err)
		return verr
	}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		verr.Add(fe.Field(), msg, nil)
	}
	return verr
}

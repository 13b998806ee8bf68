package wizard

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// form field keys used in FieldErrors
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldHours    = "hours"
)

const (
	MsgFixErrors      = "Please fix the errors above."
	MsgLoginFixErrors = "Please fix the errors above"

	MinPasswordLength = 6
)

// FieldErrors maps a form field to the message shown next to it
type FieldErrors map[string]string

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

func (fe FieldErrors) clone() FieldErrors {
	if len(fe) == 0 {
		return nil
	}
	c := make(FieldErrors, len(fe))
	for k, v := range fe {
		c[k] = v
	}
	return c
}

var (
	dottedDomainRegex = regexp.MustCompile(`\.[a-zA-Z]{2,}$`)
	loginEmailRegex   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report the form key rather than the struct field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "has_at", func(fl validator.FieldLevel) bool {
		return strings.Contains(fl.Field().String(), "@")
	})
	mustRegister(v, "dotted_domain", func(fl validator.FieldLevel) bool {
		return dottedDomainRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "login_email", func(fl validator.FieldLevel) bool {
		return loginEmailRegex.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("registering validation " + tag + ": " + err.Error())
	}
}

type credentialsInput struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,has_at,dotted_domain"`
	Password string `form:"password" validate:"required,min=6"`
}

var credentialMessages = map[string]map[string]string{
	FieldName: {
		"required": "Full name is required.",
	},
	FieldEmail: {
		"required":      "Email is required.",
		"has_at":        "Email must include an '@' symbol.",
		"dotted_domain": "Email must include a valid domain (e.g. .com).",
	},
	FieldPassword: {
		"required": "Password is required.",
		"min":      "Must be at least 6 characters.",
	},
}

// ValidateCredentials checks the step 1 fields. Each field reports its first failing rule.
func ValidateCredentials(c Credentials) FieldErrors {
	input := credentialsInput{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Password: c.Password,
	}
	return toFieldErrors(validate.Struct(input), credentialMessages)
}

type loginInput struct {
	Email    string `form:"email" validate:"login_email"`
	Password string `form:"password" validate:"required"`
}

var loginMessages = map[string]map[string]string{
	FieldEmail: {
		"login_email": "Please enter a valid email address",
	},
	FieldPassword: {
		"required": "Password is required",
	},
}

// ValidateLogin checks the login form
func ValidateLogin(email, password string) FieldErrors {
	input := loginInput{
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	return toFieldErrors(validate.Struct(input), loginMessages)
}

type hoursInput struct {
	Total     string `form:"totalHours" validate:"required,numeric"`
	Available string `form:"availableHours" validate:"required,numeric"`
}

const (
	msgHoursRequired = "Please enter your weekly hours and availability."
	msgHoursNumeric  = "Hours must be numbers."
	msgHoursNegative = "Hours cannot be negative."
	msgHoursExceed   = "Available hours cannot exceed total hours per week."
)

// ValidateHours checks the employee hours. Both fields share the one "hours" message.
func ValidateHours(total, available string) FieldErrors {
	input := hoursInput{
		Total:     strings.TrimSpace(total),
		Available: strings.TrimSpace(available),
	}

	if err := validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return FieldErrors{FieldHours: msgHoursNumeric}
		}
		for _, ve := range validationErrors {
			if ve.Tag() == "required" {
				return FieldErrors{FieldHours: msgHoursRequired}
			}
		}
		return FieldErrors{FieldHours: msgHoursNumeric}
	}

	// numeric guarantees both parse
	t, _ := strconv.ParseFloat(input.Total, 64)
	a, _ := strconv.ParseFloat(input.Available, 64)
	switch {
	case t < 0 || a < 0:
		return FieldErrors{FieldHours: msgHoursNegative}
	case a > t:
		return FieldErrors{FieldHours: msgHoursExceed}
	}
	return nil
}

func toFieldErrors(err error, messages map[string]map[string]string) FieldErrors {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// only returned for invalid input types, which are fixed above
		panic("unexpected validation error: " + err.Error())
	}

	fieldErrors := make(FieldErrors, len(validationErrors))
	for _, ve := range validationErrors {
		field := ve.Field()
		if fieldErrors.Has(field) {
			continue
		}
		msg, ok := messages[field][ve.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		fieldErrors[field] = msg
	}
	return fieldErrors
}

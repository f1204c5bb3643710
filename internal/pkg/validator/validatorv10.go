package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

const maxPrincipalName = 120

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps json field names to translated messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return "validation error"
	}
	return "validation error: " + string(b)
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator registers English messages for the built-in tags and the
// access-specific ones (principalname, accessclass).
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	english := en.New()
	trans, ok := ut.New(english, english).GetTranslator(english.Locale())
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("validator: register translations: %w", err)
	}
	if err := registerCustomRules(validate, trans); err != nil {
		return nil, fmt.Errorf("validator: register rules: %w", err)
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

// Validate returns nil, a V10ValidationError, or the validator's own error
// when data is not a struct.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// principalName accepts a trimmed, printable display name.
func principalName(s string) bool {
	if s == "" || s != strings.TrimSpace(s) || utf8.RuneCountInString(s) > maxPrincipalName {
		return false
	}

	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsControl(r) || r == ':'
	}) < 0
}

// accessClass accepts the wire names of the supported access classes.
func accessClass(s string) bool {
	switch s {
	case "permanent", "guest", "business_trip":
		return true
	default:
		return false
	}
}

type customRule struct {
	tag     string
	message string
	check   func(string) bool
}

var customRules = []customRule{
	{
		tag:     "principalname",
		message: "{0} must be 1-120 printable characters without ':' or surrounding spaces",
		check:   principalName,
	},
	{
		tag:     "accessclass",
		message: "{0} must be one of permanent, guest or business_trip",
		check:   accessClass,
	},
}

func registerCustomRules(validate *validator.Validate, trans ut.Translator) error {
	for _, rule := range customRules {
		err := validate.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			return ok && rule.check(s)
		})
		if err != nil {
			return err
		}

		err = validate.RegisterTranslation(rule.tag, trans,
			func(t ut.Translator) error {
				return t.Add(rule.tag, rule.message, false)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				msg, err := t.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("missing validation message", "tag", fe.Tag(), "error", err)
					return fe.Field() + " is invalid"
				}
				return msg
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

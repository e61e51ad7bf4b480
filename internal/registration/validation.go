package registration

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var (
	aiubEmailPattern  = regexp.MustCompile(`^\d{2}-\d{5}-[1-3]@student\.aiub\.edu$`)
	eightDigits       = regexp.MustCompile(`^\d{8}$`)
	fourDigits        = regexp.MustCompile(`^\d{4}$`)
	personNamePattern = regexp.MustCompile(`^[A-Za-z .]+$`)
)

// NewValidator returns a validator with the registration rule tags registered.
// Field names in errors come from the form tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	register := func(tag string, re *regexp.Regexp) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	register("aiub_email", aiubEmailPattern)
	register("digits8", eightDigits)
	register("digits4", fourDigits)
	register("person_name", personNamePattern)
	return v
}

// normalize trims free-text fields and brings them to NFC. Passwords are kept byte
// for byte.
func normalize(f Form) Form {
	f.FullName = norm.NFC.String(strings.TrimSpace(f.FullName))
	f.Email = strings.TrimSpace(f.Email)
	f.Location = norm.NFC.String(strings.TrimSpace(f.Location))
	f.ZipCode = strings.TrimSpace(f.ZipCode)
	f.PreferredCity = strings.TrimSpace(f.PreferredCity)
	f.FavoriteColor = strings.TrimSpace(f.FavoriteColor)
	return f
}

// validate applies the registration rules in order and returns the first failure:
// required fields, password confirmation, email format, password format, zip format,
// full name charset, preferred city membership.
func (s *Service) validate(ctx context.Context, f Form) error {
	if err := s.validator.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return newValidationError(fieldErrs[0].Field(), ReasonRequired, "All fields are required.")
		}
		return err
	}
	if f.Password != f.ConfirmPassword {
		return newValidationError("confirm_password", ReasonMismatch, "Passwords do not match.")
	}
	if s.validator.Var(f.Email, "aiub_email") != nil {
		return newValidationError("email", ReasonFormat, "Email must be in AIUB student format (e.g., XX-XXXXX-X@student.aiub.edu).")
	}
	if s.validator.Var(f.Password, "digits8") != nil {
		return newValidationError("password", ReasonFormat, "Password must be exactly 8 digits.")
	}
	if s.validator.Var(f.ZipCode, "digits4") != nil {
		return newValidationError("zip", ReasonFormat, "Zip Code must be exactly 4 digits.")
	}
	if s.validator.Var(f.FullName, "person_name") != nil {
		return newValidationError("full_name", ReasonFormat, "Full Name can only contain letters, spaces, and periods.")
	}
	if s.cities != nil {
		ok, err := s.cities.Exists(ctx, f.PreferredCity)
		if err != nil {
			return err
		}
		if !ok {
			return newValidationError("city", ReasonUnknown, "Please select a preferred city.")
		}
	}
	return nil
}

// favoriteColor accepts #rrggbb values and falls back to the default otherwise.
func (s *Service) favoriteColor(raw string) string {
	if s.validator.Var(raw, "required,hexcolor,len=7") != nil {
		return DefaultFavoriteColor
	}
	return strings.ToLower(raw)
}

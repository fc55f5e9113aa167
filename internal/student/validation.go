package student

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinAge = 15
	MaxAge = 100
)

var (
	cnicPattern  = regexp.MustCompile(`^\d{5}-\d{7}-\d{1}$`)
	phonePattern = regexp.MustCompile(`^03\d{9}$`)
)

// Clock returns the reference date for the age rule.
type Clock func() time.Time

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Validator checks registration forms and turns them into storable students.
type Validator struct {
	validate *validator.Validate
	now      Clock
}

func NewValidator(now Clock) *Validator {
	if now == nil {
		now = utcNow
	}

	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.validate.RegisterValidation("cnic", func(fl validator.FieldLevel) bool {
		return cnicPattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("pk_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("student_age", v.validateAge)

	return v
}

func (v *Validator) validateAge(fl validator.FieldLevel) bool {
	dob, err := time.Parse(time.DateOnly, fl.Field().String())
	if err != nil {
		return false
	}
	age := AgeInYears(dob, v.now())
	return age >= MinAge && age <= MaxAge
}

// Validate checks every rule on form and returns the normalized student.
// Failures are reported together in a *ValidationError. Optional fields are
// only skipped when absent; a present empty phone number is still checked.
func (v *Validator) Validate(form RegistrationForm) (*Student, error) {
	if err := v.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate registration form: %w", err)
		}
		ve := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
		for _, fe := range verrs {
			ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: messageFor(fe)})
		}
		return nil, ve
	}

	dob, err := time.Parse(time.DateOnly, form.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("parse date_of_birth: %w", err)
	}

	return &Student{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Email:       NormalizeEmail(form.Email),
		CNIC:        form.CNIC,
		DateOfBirth: dob,
		PhoneNumber: form.PhoneNumber,
		Address:     form.Address,
		Degree:      form.Degree,
	}, nil
}

// AgeInYears counts whole 365-day periods between dob and ref, ignoring leap days.
func AgeInYears(dob, ref time.Time) int {
	dob = time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	ref = time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	days := floorDiv(ref.Unix()-dob.Unix(), 86400)
	return int(floorDiv(days, 365))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// NormalizeEmail lower-cases the domain part and keeps the local part verbatim.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "email must be a valid email address"
	case "cnic":
		return "cnic must be in the format XXXXX-XXXXXXX-X (e.g., 33100-2234567-1)"
	case "pk_phone":
		return "phone_number must be in the format 03XXXXXXXXX (e.g., 03001234567)"
	case "datetime":
		return "date_of_birth must be a valid date in the format YYYY-MM-DD"
	case "student_age":
		return fmt.Sprintf("date_of_birth: student must be between %d and %d years old", MinAge, MaxAge)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

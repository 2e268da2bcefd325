package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"roster/internal/model"

	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired   = "Name and Student ID are required."
	MsgInvalidGPA = "GPA must be a number between 0.0 and 4.0."
)

// StudentForm holds the raw field values of the edit form.
type StudentForm struct {
	Name  string
	Code  string
	Major string
	GPA   string
}

// FormFromStudent fills a form for editing s.
func FormFromStudent(s model.Student) StudentForm {
	f := StudentForm{Name: s.Name, Code: s.Code, Major: s.Major}
	if s.GPA != nil {
		f.GPA = FormatGPA(*s.GPA)
	}
	return f
}

// FormatGPA prints the shortest decimal that round-trips, e.g. 3.2 or 4.
func FormatGPA(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValidationError is a rejected form; Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type studentInput struct {
	Name  string   `validate:"required"`
	Code  string   `validate:"required"`
	Major string   `validate:"-"`
	GPA   *float64 `validate:"omitempty,gte=0,lte=4"`
}

// Validator turns raw form values into a record.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Parse trims and checks f. An empty GPA means no GPA recorded. The
// returned student has no id; callers assign one.
func (v *Validator) Parse(f StudentForm) (model.Student, error) {
	in := studentInput{
		Name:  strings.TrimSpace(f.Name),
		Code:  strings.TrimSpace(f.Code),
		Major: strings.TrimSpace(f.Major),
	}

	badGPA := false
	if raw := strings.TrimSpace(f.GPA); raw != "" {
		gpa, err := parseDecimal(raw)
		if err != nil || math.IsNaN(gpa) || math.IsInf(gpa, 0) {
			badGPA = true
		} else {
			if gpa == 0 {
				gpa = 0 // drop the sign of -0
			}
			in.GPA = &gpa
		}
	}

	if err := v.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return model.Student{}, err
		}
		if field := verrs[0].Field(); field != "GPA" {
			return model.Student{}, &ValidationError{Field: strings.ToLower(field), Message: MsgRequired}
		}
		badGPA = true
	}
	if badGPA {
		return model.Student{}, &ValidationError{Field: "gpa", Message: MsgInvalidGPA}
	}

	return model.Student{Name: in.Name, Code: in.Code, Major: in.Major, GPA: in.GPA}, nil
}

// parseDecimal accepts decimal notation only; ParseFloat would also take
// hex floats such as "0x1p1".
func parseDecimal(raw string) (float64, error) {
	digits := strings.TrimLeft(raw, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, fmt.Errorf("not a decimal number: %q", raw)
	}
	return strconv.ParseFloat(raw, 64)
}

// Package types provides type definitions for the identities and records used throughout the results system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FirstExamYear is the earliest year with published results.
const FirstExamYear = 2006

// ExamType identifies the examination series. The canonical form is lower case.
type ExamType string

const (
	// ACSEE is the Advanced Certificate of Secondary Education Examination
	ACSEE ExamType = "acsee"
	// CSEE is the Certificate of Secondary Education Examination
	CSEE ExamType = "csee"
)

// Upper returns the upper-cased exam type as used by archive URLs.
func (e ExamType) Upper() string {
	return strings.ToUpper(string(e))
}

func (e ExamType) String() string {
	return string(e)
}

// ValidationError reports a malformed year, exam type or school number.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s (%q): %s", e.Field, e.Value, e.Message)
}

// ExamIdentity is a validated (year, exam type) pair.
type ExamIdentity struct {
	Year     int
	ExamType ExamType
}

// SchoolIdentity is an ExamIdentity plus a registration number.
// SchoolNumber is always stored with a lower-case prefix so that
// identities built from "S1234" and "s1234" compare equal.
type SchoolIdentity struct {
	ExamIdentity
	SchoolNumber string
}

// IsCenter reports whether the registration number denotes an examination center.
func (s SchoolIdentity) IsCenter() bool {
	return strings.HasPrefix(s.SchoolNumber, "p")
}

func (e ExamIdentity) String() string {
	return fmt.Sprintf("%s/%d", e.ExamType, e.Year)
}

func (s SchoolIdentity) String() string {
	return fmt.Sprintf("%s/%d/%s", s.ExamType, s.Year, s.SchoolNumber)
}

var schoolNumberPattern = regexp.MustCompile(`^[sSpP][0-9]{4}$`)

type identityInput struct {
	Year     int    `validate:"gte=2006"`
	ExamType string `validate:"required,oneof=acsee csee"`
}

type schoolInput struct {
	identityInput
	SchoolNumber string `validate:"required,school_number"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("school_number", func(fl validator.FieldLevel) bool {
		return schoolNumberPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register school_number validation: %v", err))
	}
	return v
}

// NewExamIdentity validates and normalizes a year and exam type.
// The exam type is matched case-insensitively.
func NewExamIdentity(year int, examType string) (ExamIdentity, error) {
	in := identityInput{
		Year:     year,
		ExamType: strings.ToLower(strings.TrimSpace(examType)),
	}
	if err := validate.Struct(in); err != nil {
		return ExamIdentity{}, toValidationError(err, in.Year, examType, "")
	}
	return ExamIdentity{Year: in.Year, ExamType: ExamType(in.ExamType)}, nil
}

// NewSchoolIdentity validates and normalizes a year, exam type and registration number.
func NewSchoolIdentity(year int, examType, schoolNumber string) (SchoolIdentity, error) {
	in := schoolInput{
		identityInput: identityInput{
			Year:     year,
			ExamType: strings.ToLower(strings.TrimSpace(examType)),
		},
		SchoolNumber: strings.TrimSpace(schoolNumber),
	}
	if err := validate.Struct(in); err != nil {
		return SchoolIdentity{}, toValidationError(err, in.Year, examType, schoolNumber)
	}
	return SchoolIdentity{
		ExamIdentity: ExamIdentity{Year: in.Year, ExamType: ExamType(in.ExamType)},
		SchoolNumber: strings.ToLower(in.SchoolNumber),
	}, nil
}

// ParseExamIdentity is NewExamIdentity for string input such as URL path segments.
func ParseExamIdentity(year, examType string) (ExamIdentity, error) {
	y, err := parseYear(year)
	if err != nil {
		return ExamIdentity{}, err
	}
	return NewExamIdentity(y, examType)
}

// ParseSchoolIdentity is NewSchoolIdentity for string input.
func ParseSchoolIdentity(year, examType, schoolNumber string) (SchoolIdentity, error) {
	y, err := parseYear(year)
	if err != nil {
		return SchoolIdentity{}, err
	}
	return NewSchoolIdentity(y, examType, schoolNumber)
}

func parseYear(year string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return 0, &ValidationError{Field: "year", Value: year, Message: "year must be an integer"}
	}
	return y, nil
}

func toValidationError(err error, year int, examType, schoolNumber string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "identity", Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Year":
		return &ValidationError{
			Field:   "year",
			Value:   strconv.Itoa(year),
			Message: fmt.Sprintf("year must be %d or later", FirstExamYear),
		}
	case "ExamType":
		return &ValidationError{
			Field:   "exam_type",
			Value:   examType,
			Message: "exam_type must be either acsee or csee",
		}
	case "SchoolNumber":
		return &ValidationError{
			Field:   "school_number",
			Value:   schoolNumber,
			Message: "school_number must be in the format S0000 or P0000",
		}
	default:
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Error()}
	}
}

// Package results combines resolution, fetching and extraction into the
// roster and per-school result lookups.
package results

import (
	"fmt"
	"strings"

	"github.com/jonathan/necta-results/internal/types"
)

// NotFoundError reports that a school is missing from its roster, or that a
// candidate is missing from the school's results.
type NotFoundError struct {
	SchoolNumber      string
	ExaminationNumber string
	ExamType          types.ExamType
	Year              int
}

func (e *NotFoundError) Error() string {
	if e.ExaminationNumber != "" {
		return fmt.Sprintf("candidate %s not found in %s %d results for %s",
			e.ExaminationNumber, e.ExamType, e.Year, e.SchoolNumber)
	}
	return fmt.Sprintf("school %s not found in %s %d roster", e.SchoolNumber, e.ExamType, e.Year)
}

// FindSchool returns the roster entry whose number matches schoolNumber, ignoring case.
func FindSchool(roster []types.SchoolRecord, schoolNumber string) (types.SchoolRecord, bool) {
	for _, school := range roster {
		if strings.EqualFold(school.SchoolNumber, schoolNumber) {
			return school, true
		}
	}
	return types.SchoolRecord{}, false
}

// BuildResultSet joins a school's roster entry with its decoded student rows.
// It fails with *NotFoundError when the school is not on the roster.
func BuildResultSet(id types.SchoolIdentity, roster []types.SchoolRecord, students []types.StudentRecord) (*types.ResultSet, error) {
	school, ok := FindSchool(roster, id.SchoolNumber)
	if !ok {
		return nil, &NotFoundError{SchoolNumber: id.SchoolNumber, ExamType: id.ExamType, Year: id.Year}
	}

	if students == nil {
		students = []types.StudentRecord{}
	}
	return &types.ResultSet{
		SchoolNumber:     id.SchoolNumber,
		SchoolName:       school.SchoolName,
		YearOfExam:       id.Year,
		ExamType:         id.ExamType,
		NumberOfStudents: len(students),
		Students:         students,
	}, nil
}

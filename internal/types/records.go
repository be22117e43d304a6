// Package types provides type definitions for the identities and records used throughout the results system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// SchoolRecord is one entry of a roster page.
type SchoolRecord struct {
	SchoolNumber string `json:"school_number"`
	SchoolName   string `json:"school_name"`
}

// StudentRecord is one decoded row of a summary page results table.
type StudentRecord struct {
	ExaminationNumber string   `json:"examination_number"`
	Gender            string   `json:"gender"`
	Points            string   `json:"points"`
	Division          string   `json:"division"`
	Subjects          Subjects `json:"subjects"`
}

// RosterResult lists every school and center that sat an exam in a year.
type RosterResult struct {
	ExamType        ExamType       `json:"exam_type"`
	YearOfExam      int            `json:"year_of_exam"`
	NumberOfSchools int            `json:"number_of_schools"`
	Description     string         `json:"description"`
	Schools         []SchoolRecord `json:"schools"`
}

// StudentsResult is the per-school result set: roster metadata combined
// with the decoded student rows.
type StudentsResult struct {
	SchoolNumber     string          `json:"school_number"`
	SchoolName       string          `json:"school_name"`
	YearOfExam       int             `json:"year_of_exam"`
	ExamType         ExamType        `json:"exam_type"`
	NumberOfStudents int             `json:"number_of_students"`
	Students         []StudentRecord `json:"students"`
}

// ResultSet is the aggregate produced for a single school.
type ResultSet = StudentsResult

// NewRosterResult wraps extracted schools with their exam metadata.
func NewRosterResult(id ExamIdentity, schools []SchoolRecord) *RosterResult {
	if schools == nil {
		schools = []SchoolRecord{}
	}
	return &RosterResult{
		ExamType:        id.ExamType,
		YearOfExam:      id.Year,
		NumberOfSchools: len(schools),
		Description:     RosterDescription(id),
		Schools:         schools,
	}
}

// RosterDescription is the human readable description attached to a roster.
func RosterDescription(id ExamIdentity) string {
	return fmt.Sprintf("a list of all schools and centers that participated in %s in %d", id.ExamType, id.Year)
}

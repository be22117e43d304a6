// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonathan/necta-results/internal/results"
	"github.com/jonathan/necta-results/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxSubjectsWidth truncates long subject lists in student tables
	maxSubjectsWidth = 60
)

// Printer handles formatted output for human readers
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	return t
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRoster outputs the schools of a roster as a table.
func (p *Printer) PrintRoster(roster *types.RosterResult) {
	if roster == nil {
		return
	}

	p.printBox(fmt.Sprintf("%s %d ROSTER", roster.ExamType.Upper(), roster.YearOfExam),
		fmt.Sprintf("Schools:  %d", roster.NumberOfSchools))

	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Number", "Name"})
	for i, school := range roster.Schools {
		t.AppendRow(table.Row{i + 1, school.SchoolNumber, strings.TrimSpace(school.SchoolName)})
	}
	t.Render()
}

// PrintResultSet outputs a school's metadata followed by its student rows.
func (p *Printer) PrintResultSet(resultSet *types.ResultSet) {
	if resultSet == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("School:   %s %s\n", strings.ToUpper(resultSet.SchoolNumber), strings.TrimSpace(resultSet.SchoolName)))
	sb.WriteString(fmt.Sprintf("Exam:     %s %d\n", resultSet.ExamType.Upper(), resultSet.YearOfExam))
	sb.WriteString(fmt.Sprintf("Students: %d", resultSet.NumberOfStudents))
	p.printBox("SCHOOL RESULTS", sb.String())

	p.printStudents(resultSet.Students)
}

// PrintStudent outputs a single candidate row.
func (p *Printer) PrintStudent(student *types.StudentRecord) {
	if student == nil {
		return
	}
	p.printStudents([]types.StudentRecord{*student})
}

func (p *Printer) printStudents(students []types.StudentRecord) {
	t := p.newTable()
	t.AppendHeader(table.Row{"Examination No.", "Sex", "Points", "Division", "Subjects"})
	for _, s := range students {
		t.AppendRow(table.Row{s.ExaminationNumber, s.Gender, s.Points, s.Division, formatSubjects(s.Subjects)})
	}
	t.Render()
}

// formatSubjects renders subjects as "CIV:B HIST:C" in source order
func formatSubjects(subjects types.Subjects) string {
	parts := make([]string, 0, subjects.Len())
	for _, code := range subjects.Codes() {
		grade, _ := subjects.Get(code)
		parts = append(parts, code+":"+grade)
	}
	out := strings.Join(parts, " ")
	if len(out) > maxSubjectsWidth {
		out = out[:maxSubjectsWidth-3] + "..."
	}
	return out
}

// PrintMatches outputs ranked search results with their scores.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintMatches(query string, matches []results.Match) {
	if len(matches) == 0 {
		fmt.Fprintf(p.out, "No schools match %q\n", query)
		return
	}

	t := p.newTable()
	t.SetTitle(fmt.Sprintf("Search: %s", query))
	t.AppendHeader(table.Row{"#", "Number", "Name", "Score"})
	for i, m := range matches {
		t.AppendRow(table.Row{i + 1, m.SchoolNumber, strings.TrimSpace(m.SchoolName), fmt.Sprintf("%.3f", m.Score)})
	}
	t.Render()
}

// Resolution describes the pages an identity maps to.
type Resolution struct {
	Identity   string
	RosterURL  string
	Skip       int
	SummaryURL string
	TableIndex int
	// RosterErr and SummaryErr hold the reason a page could not be resolved.
	RosterErr  error
	SummaryErr error
}

// PrintResolution outputs resolved page URLs and layout facts.
func (p *Printer) PrintResolution(r Resolution) {
	t := p.newTable()
	t.SetTitle(r.Identity)
	t.AppendHeader(table.Row{"Page", "URL", "Layout"})

	if r.RosterErr != nil {
		t.AppendRow(table.Row{"roster", "unsupported", r.RosterErr.Error()})
	} else {
		t.AppendRow(table.Row{"roster", r.RosterURL, fmt.Sprintf("skip %d", r.Skip)})
	}

	switch {
	case r.SummaryErr != nil:
		t.AppendRow(table.Row{"summary", "unsupported", r.SummaryErr.Error()})
	case r.SummaryURL != "":
		t.AppendRow(table.Row{"summary", r.SummaryURL, fmt.Sprintf("table %d", r.TableIndex)})
	}
	t.Render()
}

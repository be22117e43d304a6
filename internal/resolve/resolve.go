package resolve

import (
	"fmt"
	"net/url"

	"github.com/jonathan/necta-results/internal/types"
)

// Page kinds reported by UnsupportedError.
const (
	PageRoster  = "roster"
	PageSummary = "summary"
)

// UnsupportedError reports a valid identity for which no page is known.
type UnsupportedError struct {
	Page     string
	ExamType types.ExamType
	Year     int
	School   string
}

func (e *UnsupportedError) Error() string {
	if e.School != "" {
		return fmt.Sprintf("no %s page available for %s %d school %s", e.Page, e.ExamType, e.Year, e.School)
	}
	return fmt.Sprintf("no %s page available for %s %d", e.Page, e.ExamType, e.Year)
}

// RosterPage is a resolved roster listing page.
type RosterPage struct {
	URL string
	// Skip is the number of leading decorative anchors to discard.
	Skip int
}

// SummaryPage is a resolved per-school summary page.
type SummaryPage struct {
	URL string
	// TableIndex selects the results table among all tables on the page.
	TableIndex int
}

// Roster resolves the roster listing page for an exam identity.
func Roster(id types.ExamIdentity) (RosterPage, error) {
	rule, ok := matchURL(rosterRules, id.ExamType, id.Year)
	if !ok || rule.Template == "" {
		return RosterPage{}, &UnsupportedError{Page: PageRoster, ExamType: id.ExamType, Year: id.Year}
	}

	link, err := buildURL(rule.Template, id.ExamType, id.Year, "")
	if err != nil {
		return RosterPage{}, err
	}
	return RosterPage{URL: link, Skip: SkipCount(id)}, nil
}

// RosterURL resolves only the roster address.
func RosterURL(id types.ExamIdentity) (string, error) {
	page, err := Roster(id)
	if err != nil {
		return "", err
	}
	return page.URL, nil
}

// SkipCount returns the number of decorative anchors that precede the real
// roster on the page template used for id.
func SkipCount(id types.ExamIdentity) int {
	return matchInt(skipRules, id.ExamType, id.Year, 0)
}

// Summary resolves the per-school summary page and the results table index.
func Summary(id types.SchoolIdentity) (SummaryPage, error) {
	link, err := SummaryURL(id)
	if err != nil {
		return SummaryPage{}, err
	}
	return SummaryPage{URL: link, TableIndex: TableIndexFor(id)}, nil
}

// SummaryURL resolves the per-school summary page address.
func SummaryURL(id types.SchoolIdentity) (string, error) {
	rule, ok := matchURL(summaryRules, id.ExamType, id.Year)
	if !ok || rule.Template == "" {
		return "", &UnsupportedError{
			Page:     PageSummary,
			ExamType: id.ExamType,
			Year:     id.Year,
			School:   id.SchoolNumber,
		}
	}
	return buildURL(rule.Template, id.ExamType, id.Year, id.SchoolNumber)
}

// TableIndex returns the 0-based index of the results table on a summary
// page for the given exam type, page kind and year.
func TableIndex(examType types.ExamType, isCenter bool, year int) int {
	for _, r := range tableIndexRules {
		if r.ExamType == examType && r.Center == isCenter && r.Match(year) {
			return r.Index
		}
	}
	return 0
}

// TableIndexFor is TableIndex for a school identity.
func TableIndexFor(id types.SchoolIdentity) int {
	return TableIndex(id.ExamType, id.IsCenter(), id.Year)
}

func buildURL(template string, examType types.ExamType, year int, school string) (string, error) {
	raw := expand(template, examType, year, school)
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("resolved malformed url %q: %w", raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("resolved url %q has no scheme or host", raw)
	}
	return parsed.String(), nil
}

package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/necta-results/internal/types"
)

// rosterContainer is the text-styling element that wraps roster anchors.
const rosterContainer = "font"

// Roster parses a roster listing page and returns its schools in document
// order, dropping the first skip anchors.
func Roster(markup string, skip int) ([]types.SchoolRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster HTML: %w", err)
	}
	return RosterFromDocument(doc, skip), nil
}

// RosterFromDocument is Roster for an already parsed document.
func RosterFromDocument(doc *goquery.Document, skip int) []types.SchoolRecord {
	var schools []types.SchoolRecord
	doc.Find(rosterContainer).Each(func(_ int, font *goquery.Selection) {
		font.Find("a").Each(func(_ int, a *goquery.Selection) {
			schools = append(schools, schoolFromAnchor(a.Text()))
		})
	})

	if skip < 0 || skip > len(schools) {
		slog.Warn("roster skip count does not fit page, layout assumption likely violated",
			"skip", skip, "anchors", len(schools))
		return []types.SchoolRecord{}
	}
	return schools[skip:]
}

// schoolFromAnchor splits "S0101 AZANIA SECONDARY SCHOOL" into the
// registration number and the name. The name keeps the leading space
// produced by joining tokens onto an empty accumulator.
func schoolFromAnchor(text string) types.SchoolRecord {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return types.SchoolRecord{}
	}

	var name strings.Builder
	for _, tok := range tokens[1:] {
		name.WriteByte(' ')
		name.WriteString(tok)
	}
	return types.SchoolRecord{SchoolNumber: tokens[0], SchoolName: name.String()}
}

package extract

import (
	"log/slog"
	"strings"

	"github.com/jonathan/necta-results/internal/types"
)

const gradeQuote = '\''

// ParseSubjects decodes a subject/grade cell such as
//
//	CIV - 'D'  HIST - 'C'  ENGL - 'B'
//
// An entry ends at a quote that is immediately followed by a space; whatever
// remains at end of input is the final entry. Each entry is split on its first
// hyphen into subject code and grade; entries without one are dropped and
// logged at debug level. A repeated subject code keeps its first position and
// takes the later grade.
func ParseSubjects(blob string) types.Subjects {
	subjects := types.NewSubjects()
	for _, entry := range splitEntries(blob) {
		subject, grade, ok := strings.Cut(entry, "-")
		if !ok {
			slog.Debug("dropping subject entry without hyphen", "entry", strings.TrimSpace(entry))
			continue
		}
		subject = trimQuoted(subject)
		if subject == "" {
			slog.Debug("dropping subject entry without code", "entry", strings.TrimSpace(entry))
			continue
		}
		subjects.Set(subject, trimQuoted(grade))
	}
	return subjects
}

func splitEntries(blob string) []string {
	var entries []string
	var token strings.Builder

	runes := []rune(blob)
	for i, r := range runes {
		token.WriteRune(r)
		if r == gradeQuote && i+1 < len(runes) && runes[i+1] == ' ' {
			entries = append(entries, token.String())
			token.Reset()
		}
	}
	if strings.TrimSpace(token.String()) != "" {
		entries = append(entries, token.String())
	}
	return entries
}

func trimQuoted(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, string(gradeQuote))
	return strings.TrimSpace(s)
}

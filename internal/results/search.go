package results

import (
	"context"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/jonathan/necta-results/internal/types"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 10

// Match is a roster entry with its similarity to a search query.
type Match struct {
	types.SchoolRecord
	Score float64 `json:"score"`
}

// SearchSchools ranks roster entries by similarity to query.
func (s *Service) SearchSchools(ctx context.Context, id types.ExamIdentity, query string, limit int) ([]Match, error) {
	roster, err := s.roster(ctx, id)
	if err != nil {
		return nil, err
	}
	return RankSchools(roster, query, limit), nil
}

// RankSchools scores every school by the Jaro-Winkler similarity of query
// against its name and its number, keeping the better of the two. Equal
// scores keep roster order. A limit <= 0 uses DefaultSearchLimit.
func RankSchools(roster []types.SchoolRecord, query string, limit int) []Match {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []Match{}
	}

	matches := make([]Match, 0, len(roster))
	for _, school := range roster {
		name := strings.ToLower(strings.TrimSpace(school.SchoolName))
		number := strings.ToLower(school.SchoolNumber)

		score := matchr.JaroWinkler(query, name, false)
		if byNumber := matchr.JaroWinkler(query, number, false); byNumber > score {
			score = byNumber
		}
		matches = append(matches, Match{SchoolRecord: school, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

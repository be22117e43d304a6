package results

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/necta-results/internal/db"
	"github.com/jonathan/necta-results/internal/extract"
	"github.com/jonathan/necta-results/internal/fetch"
	"github.com/jonathan/necta-results/internal/resolve"
	"github.com/jonathan/necta-results/internal/types"
)

// Service answers roster, school and candidate lookups against the publisher.
type Service struct {
	fetcher fetch.Fetcher
}

// NewService creates a Service. A nil fetcher uses a plain HTTP fetcher.
func NewService(fetcher fetch.Fetcher) *Service {
	if fetcher == nil {
		fetcher = fetch.NewHTTPFetcher(nil)
	}
	return &Service{fetcher: fetcher}
}

// Roster fetches and decodes the roster page for an exam.
func (s *Service) Roster(ctx context.Context, id types.ExamIdentity) (*types.RosterResult, error) {
	schools, err := s.roster(ctx, id)
	if err != nil {
		return nil, err
	}
	return types.NewRosterResult(id, schools), nil
}

func (s *Service) roster(ctx context.Context, id types.ExamIdentity) ([]types.SchoolRecord, error) {
	page, err := resolve.Roster(id)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "fetching roster", "exam", id.String(), "url", page.URL, "skip", page.Skip)
	result, err := s.fetcher.Fetch(fetch.WithPageType(ctx, db.PageTypeRoster), page.URL)
	if err != nil {
		return nil, err
	}

	schools, err := extract.Roster(result.HTML, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", page.URL, err)
	}
	return schools, nil
}

func (s *Service) summary(ctx context.Context, id types.SchoolIdentity, page resolve.SummaryPage) ([]types.StudentRecord, error) {
	slog.DebugContext(ctx, "fetching summary", "school", id.String(), "url", page.URL, "table", page.TableIndex)
	result, err := s.fetcher.Fetch(fetch.WithPageType(ctx, db.PageTypeSummary), page.URL)
	if err != nil {
		return nil, err
	}

	students, err := extract.Students(result.HTML, page.TableIndex)
	if err != nil {
		return nil, fmt.Errorf("summary %s: %w", page.URL, err)
	}
	return students, nil
}

// Students fetches the roster and the school's summary page concurrently and
// aggregates them. The first failure cancels the other fetch and is returned.
func (s *Service) Students(ctx context.Context, id types.SchoolIdentity) (*types.StudentsResult, error) {
	page, err := resolve.Summary(id)
	if err != nil {
		return nil, err
	}

	var (
		roster   []types.SchoolRecord
		students []types.StudentRecord
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.roster(gCtx, id.ExamIdentity)
		return err
	})
	g.Go(func() error {
		var err error
		students, err = s.summary(gCtx, id, page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildResultSet(id, roster, students)
}

// Candidate looks up a single candidate by examination number. The school is
// taken from the number's prefix, e.g. S0101/0001 belongs to s0101.
func (s *Service) Candidate(ctx context.Context, id types.ExamIdentity, examinationNumber string) (*types.StudentRecord, error) {
	examinationNumber = strings.TrimSpace(examinationNumber)
	schoolNumber, _, ok := strings.Cut(examinationNumber, "/")
	if !ok {
		return nil, &types.ValidationError{
			Field:   "examination_number",
			Value:   examinationNumber,
			Message: "must look like S0101/0001",
		}
	}

	school, err := types.NewSchoolIdentity(id.Year, string(id.ExamType), schoolNumber)
	if err != nil {
		return nil, err
	}

	result, err := s.Students(ctx, school)
	if err != nil {
		return nil, err
	}

	for i := range result.Students {
		if strings.EqualFold(strings.TrimSpace(result.Students[i].ExaminationNumber), examinationNumber) {
			return &result.Students[i], nil
		}
	}
	return nil, &NotFoundError{
		SchoolNumber:      school.SchoolNumber,
		ExaminationNumber: examinationNumber,
		ExamType:          id.ExamType,
		Year:              id.Year,
	}
}

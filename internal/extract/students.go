package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/necta-results/internal/types"
)

// studentColumns is the fixed cell count of a results row:
// examination number, gender, points, division, subjects.
const studentColumns = 5

// Students parses a summary page and decodes every data row of the
// results table at tableIndex.
func Students(markup string, tableIndex int) ([]types.StudentRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary HTML: %w", err)
	}
	return StudentsFromDocument(doc, tableIndex)
}

// StudentsFromDocument is Students for an already parsed document.
func StudentsFromDocument(doc *goquery.Document, tableIndex int) ([]types.StudentRecord, error) {
	tables := doc.Find("table")
	if tableIndex < 0 || tableIndex >= tables.Length() {
		return nil, &LayoutError{
			Message:    "results table not found",
			TableIndex: tableIndex,
			Tables:     tables.Length(),
			Row:        -1,
		}
	}

	rows := tables.Eq(tableIndex).Find("tr")
	students := make([]types.StudentRecord, 0, max(rows.Length()-1, 0))

	var layoutErr error
	rows.Slice(min(1, rows.Length()), rows.Length()).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() != studentColumns {
			layoutErr = &LayoutError{
				Message:    fmt.Sprintf("expected %d cells per results row", studentColumns),
				TableIndex: tableIndex,
				Tables:     tables.Length(),
				Row:        i,
				Cells:      cells.Length(),
			}
			return false
		}

		row := make([]string, 0, studentColumns)
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.Trim(td.Text(), "\r\n"))
		})

		students = append(students, types.StudentRecord{
			ExaminationNumber: row[0],
			Gender:            row[1],
			Points:            row[2],
			Division:          row[3],
			Subjects:          ParseSubjects(row[4]),
		})
		return true
	})
	if layoutErr != nil {
		return nil, layoutErr
	}

	return students, nil
}

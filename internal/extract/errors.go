// Package extract decodes roster and summary result pages into typed records.
package extract

import "fmt"

// LayoutError reports markup that does not match the expected page template.
// It usually means an unsupported historical layout or a publisher-side
// template change.
type LayoutError struct {
	Message    string
	TableIndex int
	Tables     int
	// Row is the 0-based data row (header excluded), -1 when not row specific.
	Row   int
	Cells int
}

func (e *LayoutError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("layout error: %s (table %d, row %d, %d cells)", e.Message, e.TableIndex, e.Row, e.Cells)
	}
	return fmt.Sprintf("layout error: %s (table %d of %d)", e.Message, e.TableIndex, e.Tables)
}

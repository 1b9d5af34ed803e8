package sink

import (
	"errors"

	"github.com/aluiziolira/go-crawl-books/models"
)

// DualSink persists to JSON and CSV destinations simultaneously.
type DualSink struct {
	json *JSONSink
	csv  *CSVSink
}

// NewDualSink builds a DualSink over both destinations.
func NewDualSink(jsonPath, csvPath string, dedupeMax int) *DualSink {
	return &DualSink{
		json: NewJSONSink(jsonPath, dedupeMax),
		csv:  NewCSVSink(csvPath, dedupeMax),
	}
}

// Persist writes both artifacts; either failure is reported, neither
// blocks the other.
func (s *DualSink) Persist(books []*models.Book) error {
	return errors.Join(s.json.Persist(books), s.csv.Persist(books))
}

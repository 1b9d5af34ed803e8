package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/aluiziolira/go-crawl-books/models"
)

// CSVSink writes the fixed record fields as CSV. Product information
// rows vary per book and are left to the JSON artifact.
type CSVSink struct {
	path      string
	dedupeMax int
	mu        sync.Mutex
}

// NewCSVSink builds a CSVSink.
func NewCSVSink(path string, dedupeMax int) *CSVSink {
	return &CSVSink{path: path, dedupeMax: dedupeMax}
}

// Persist writes header and rows, overwriting the destination.
func (s *CSVSink) Persist(books []*models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.path); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	header := []string{
		models.FieldTitle,
		models.FieldPrice,
		models.FieldRating,
		models.FieldStock,
		models.FieldDescription,
		models.FieldURL,
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, book := range dedupeByURL(books, s.dedupeMax) {
		record := []string{
			book.Title,
			book.Price,
			strconv.Itoa(book.Rating),
			book.Stock,
			book.Description,
			book.URL,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Package sink persists completed record collections to flat files.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-crawl-books/models"
)

// Sink persists one run's record collection.
type Sink interface {
	Persist(books []*models.Book) error
}

// JSONSink writes the collection as a pretty-printed JSON array,
// overwriting the destination on every run.
type JSONSink struct {
	path      string
	dedupeMax int
	mu        sync.Mutex
}

// NewJSONSink builds a JSONSink. dedupeMax bounds the per-run duplicate
// URL cache; 0 disables deduplication.
func NewJSONSink(path string, dedupeMax int) *JSONSink {
	return &JSONSink{path: path, dedupeMax: dedupeMax}
}

// Persist serializes the collection to the destination file, creating
// the directory if absent.
func (s *JSONSink) Persist(books []*models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.path); err != nil {
		return err
	}

	books = dedupeByURL(books, s.dedupeMax)
	data, err := json.MarshalIndent(books, "", "    ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// dedupeByURL drops records repeating an already-seen URL within this
// collection. The cache is bounded and per-call; runs never share it.
func dedupeByURL(books []*models.Book, maxSize int) []*models.Book {
	if maxSize <= 0 {
		return books
	}
	seen, err := lru.New[string, struct{}](maxSize)
	if err != nil {
		return books
	}

	out := make([]*models.Book, 0, len(books))
	for _, book := range books {
		if book == nil {
			continue
		}
		if _, ok := seen.Get(book.URL); ok {
			continue
		}
		seen.Add(book.URL, struct{}{})
		out = append(out, book)
	}
	return out
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

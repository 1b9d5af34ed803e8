// Package models defines data structures for the crawler.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Fixed field names, in artifact order.
const (
	FieldTitle       = "title"
	FieldPrice       = "price"
	FieldRating      = "rating"
	FieldStock       = "stock"
	FieldDescription = "description"
	FieldURL         = "url"
)

// Field is one row of the product information table.
type Field struct {
	Key   string
	Value string
}

// Book is the flat record extracted from one detail page. Title, Price,
// Stock and Description are empty when the page carries no such element;
// they serialize as null. URL is always set on a successful extraction.
type Book struct {
	Title       string
	Price       string
	Rating      int
	Stock       string
	Description string
	URL         string
	Extras      []Field // product information rows, table order
}

// Extra returns the value of a product information field by exact key.
func (b *Book) Extra(key string) (string, bool) {
	for _, f := range b.Extras {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// orderedFields flattens the record into artifact order: fixed fields
// first, then table rows. A table row whose label exactly matches an
// earlier key overwrites that value in place, matching the reference
// artifact.
func (b *Book) orderedFields() []Field {
	fields := []Field{
		{FieldTitle, b.Title},
		{FieldPrice, b.Price},
		{FieldRating, ""},
		{FieldStock, b.Stock},
		{FieldDescription, b.Description},
		{FieldURL, b.URL},
	}
	for _, extra := range b.Extras {
		replaced := false
		for i := range fields {
			if fields[i].Key == extra.Key {
				fields[i].Value = extra.Value
				replaced = true
				break
			}
		}
		if !replaced {
			fields = append(fields, extra)
		}
	}
	return fields
}

// MarshalJSON emits the record as a JSON object with stable key order.
func (b *Book) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	fields := b.orderedFields()
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		switch {
		case f.Key == FieldRating && !b.ratingOverridden():
			fmt.Fprintf(&buf, "%d", b.Rating)
		case f.Value == "" && nullable(f.Key):
			buf.WriteString("null")
		default:
			value, err := json.Marshal(f.Value)
			if err != nil {
				return nil, fmt.Errorf("marshal value for %q: %w", f.Key, err)
			}
			buf.Write(value)
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *Book) ratingOverridden() bool {
	_, ok := b.Extra(FieldRating)
	return ok
}

func nullable(key string) bool {
	switch key {
	case FieldTitle, FieldPrice, FieldStock, FieldDescription:
		return true
	}
	return false
}

// UnmarshalJSON restores a record, preserving table-row order.
func (b *Book) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("book record must be a JSON object")
	}

	*b = Book{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key := keyTok.(string)

		valueTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read value for %q: %w", key, err)
		}

		if key == FieldRating {
			if num, ok := valueTok.(json.Number); ok {
				rating, err := num.Int64()
				if err != nil {
					return fmt.Errorf("rating for %q: %w", key, err)
				}
				b.Rating = int(rating)
				continue
			}
		}

		value := ""
		if s, ok := valueTok.(string); ok {
			value = s
		}
		switch key {
		case FieldTitle:
			b.Title = value
		case FieldPrice:
			b.Price = value
		case FieldStock:
			b.Stock = value
		case FieldDescription:
			b.Description = value
		case FieldURL:
			b.URL = value
		default:
			b.Extras = append(b.Extras, Field{Key: key, Value: value})
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read object end: %w", err)
	}
	return nil
}

// RunResult holds the overall outcome of one crawl run.
type RunResult struct {
	Books        []*Book
	StartTime    time.Time
	EndTime      time.Time
	PagesWalked  int
	TotalURLs    int
	SuccessCount int
	FailureCount int
	FailedURLs   []string
	ErrorsByType map[string]int
	Persisted    bool
}

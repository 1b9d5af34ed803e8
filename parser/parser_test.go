package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const detailPage = `<html><body>
<div class="product_main">
  <h1>A Light in the Attic</h1>
  <p class="price_color">£51.77</p>
  <p class="star-rating Three"></p>
  <p class="instock availability">
    In stock (22 available)
  </p>
</div>
<div id="product_description" class="sub-header"><h2>Product Description</h2></div>
<p>It's hard to imagine a world without A Light in the Attic.</p>
<table class="table table-striped">
  <tr><th>UPC</th><td>a897fe39b1053632</td></tr>
  <tr><th>Product Type</th><td>Books</td></tr>
  <tr><th>Availability</th><td>In stock (22 available)</td></tr>
</table>
</body></html>`

func parseDocument(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestExtractBook(t *testing.T) {
	pageURL := "http://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html"
	book := ExtractBook(parseDocument(t, detailPage), pageURL)

	if book.Title != "A Light in the Attic" {
		t.Fatalf("title=%q", book.Title)
	}
	if book.Price != "£51.77" {
		t.Fatalf("price=%q", book.Price)
	}
	if book.Rating != 3 {
		t.Fatalf("rating=%d, want 3", book.Rating)
	}
	if !strings.Contains(book.Stock, "In stock (22 available)") {
		t.Fatalf("stock=%q", book.Stock)
	}
	if !strings.HasPrefix(book.Description, "It's hard to imagine") {
		t.Fatalf("description=%q", book.Description)
	}
	if book.URL != pageURL {
		t.Fatalf("url=%q, want %q", book.URL, pageURL)
	}

	if upc, ok := book.Extra("UPC"); !ok || upc != "a897fe39b1053632" {
		t.Fatalf("UPC=(%q, %v)", upc, ok)
	}
	if len(book.Extras) != 3 {
		t.Fatalf("extras=%d, want 3", len(book.Extras))
	}
	if book.Extras[0].Key != "UPC" || book.Extras[1].Key != "Product Type" {
		t.Fatalf("extras out of table order: %+v", book.Extras)
	}
}

func TestExtractBookMissingElements(t *testing.T) {
	pageURL := "http://example.test/bare"
	book := ExtractBook(parseDocument(t, "<html><body><div>nothing here</div></body></html>"), pageURL)

	if book.Title != "" || book.Price != "" || book.Stock != "" || book.Description != "" {
		t.Fatalf("missing elements should leave fields empty: %+v", book)
	}
	if book.Rating != 0 {
		t.Fatalf("rating=%d, want 0", book.Rating)
	}
	if book.URL != pageURL {
		t.Fatalf("url=%q, want %q", book.URL, pageURL)
	}
	if len(book.Extras) != 0 {
		t.Fatalf("extras=%v, want none", book.Extras)
	}
}

func TestExtractBookDescriptionRequiresParagraph(t *testing.T) {
	markup := `<html><body>
<div id="product_description"><h2>Product Description</h2></div>
<div>not a paragraph</div>
</body></html>`
	book := ExtractBook(parseDocument(t, markup), "http://example.test/no-paragraph")
	if book.Description != "" {
		t.Fatalf("description=%q, want empty", book.Description)
	}
}

func TestRatingFromClass(t *testing.T) {
	tests := []struct {
		class    string
		expected int
	}{
		{class: "star-rating One", expected: 1},
		{class: "star-rating Two", expected: 2},
		{class: "star-rating Three", expected: 3},
		{class: "star-rating Four", expected: 4},
		{class: "star-rating Five", expected: 5},
		{class: "star-rating Six", expected: 0},
		{class: "star-rating three", expected: 0},
		{class: "star-rating", expected: 0},
		{class: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			if got := RatingFromClass(tt.class); got != tt.expected {
				t.Fatalf("RatingFromClass(%q) = %d, want %d", tt.class, got, tt.expected)
			}
		})
	}
}

func TestCatalogueLinks(t *testing.T) {
	var builder strings.Builder
	builder.WriteString("<html><body>")
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&builder, `<article class="product_pod"><h3><a href="book-%d/index.html" title="Book %d">Book %d</a></h3></article>`, i, i, i)
	}
	builder.WriteString("</body></html>")

	links := CatalogueLinks(parseDocument(t, builder.String()))
	if len(links) != 20 {
		t.Fatalf("links=%d, want 20", len(links))
	}
	if links[0] != "book-1/index.html" {
		t.Fatalf("first link=%q", links[0])
	}
}

func TestCatalogueLinksEmptyPage(t *testing.T) {
	links := CatalogueLinks(parseDocument(t, "<html><body><p>no books</p></body></html>"))
	if len(links) != 0 {
		t.Fatalf("links=%v, want none", links)
	}
}

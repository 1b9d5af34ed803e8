// Package parser extracts book records from detail-page documents.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-crawl-books/models"
)

// ratingScale maps the page's secondary star-rating class to a number.
var ratingScale = map[string]int{
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

// RatingFromClass reads the numeric rating out of a star-rating class
// attribute. The page encodes the value as the second class token;
// anything unrecognized yields 0.
func RatingFromClass(class string) int {
	parts := strings.Fields(class)
	if len(parts) < 2 {
		return 0
	}
	return ratingScale[parts[1]]
}

// ExtractBook pulls the flat record out of a parsed detail page. pageURL
// is recorded on the result as-is. Missing elements leave their fields
// empty; the record itself is never nil.
func ExtractBook(doc *goquery.Document, pageURL string) *models.Book {
	book := &models.Book{URL: pageURL}

	book.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	book.Price = strings.TrimSpace(doc.Find("p.price_color").First().Text())
	book.Stock = strings.TrimSpace(doc.Find("p.instock.availability").First().Text())

	if class, ok := doc.Find("p.star-rating").First().Attr("class"); ok {
		book.Rating = RatingFromClass(class)
	}

	if anchor := doc.Find("#product_description").First(); anchor.Length() > 0 {
		book.Description = strings.TrimSpace(anchor.NextAllFiltered("p").First().Text())
	}

	doc.Find("table.table.table-striped tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		td := row.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		book.Extras = append(book.Extras, models.Field{
			Key:   strings.TrimSpace(th.Text()),
			Value: strings.TrimSpace(td.Text()),
		})
	})

	return book
}

// CatalogueLinks returns the detail-page hrefs listed on a catalogue
// page, in document order, unresolved.
func CatalogueLinks(doc *goquery.Document) []string {
	var hrefs []string
	doc.Find("article.product_pod h3 a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

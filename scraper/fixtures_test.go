package scraper

import (
	"fmt"
	"strings"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-crawl-books/config"
)

const testBaseURL = "http://example.test"

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = testBaseURL
	cfg.CatalogueTemplate = testBaseURL + "/catalogue/page-%d.html"
	cfg.Workers = 4
	return cfg
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}

// fixtureTitles mirrors the first two books on the reference site's
// first catalogue page.
var fixtureTitles = map[int]string{
	1: "A Light in the Attic",
	2: "Tipping the Velvet",
}

func bookTitle(id int) string {
	if title, ok := fixtureTitles[id]; ok {
		return title
	}
	return fmt.Sprintf("Book %d", id)
}

// buildCataloguePage lists 20 detail links with page-relative hrefs.
func buildCataloguePage(page int) string {
	var builder strings.Builder
	builder.WriteString(`<html><body><section class="products">`)
	for i := 1; i <= 20; i++ {
		id := (page-1)*20 + i
		fmt.Fprintf(&builder, `<article class="product_pod"><h3><a href="book-%d/index.html" title="%s">%s</a></h3></article>`,
			id, bookTitle(id), bookTitle(id))
	}
	builder.WriteString(`</section></body></html>`)
	return builder.String()
}

func buildDetailPage(id int) string {
	var builder strings.Builder
	builder.WriteString("<html><body>")
	fmt.Fprintf(&builder, `<div class="product_main"><h1>%s</h1>`, bookTitle(id))
	fmt.Fprintf(&builder, `<p class="price_color">£%d.99</p>`, id)
	builder.WriteString(`<p class="star-rating Three"></p>`)
	builder.WriteString(`<p class="instock availability">In stock (22 available)</p></div>`)
	builder.WriteString(`<div id="product_description"><h2>Product Description</h2></div>`)
	fmt.Fprintf(&builder, `<p>Description of %s.</p>`, bookTitle(id))
	builder.WriteString(`<table class="table table-striped">`)
	fmt.Fprintf(&builder, `<tr><th>UPC</th><td>upc-%04d</td></tr>`, id)
	builder.WriteString(`<tr><th>Product Type</th><td>Books</td></tr>`)
	builder.WriteString(`</table></body></html>`)
	return builder.String()
}

func detailURL(id int) string {
	return fmt.Sprintf("%s/catalogue/book-%d/index.html", testBaseURL, id)
}

func registerBase(transport *httpmock.MockTransport) {
	responder := htmlResponder("<html><body>Books to Scrape</body></html>")
	transport.RegisterResponder("GET", testBaseURL, responder)
	transport.RegisterResponder("GET", testBaseURL+"/", responder)
}

func registerCatalogue(transport *httpmock.MockTransport, pages int) {
	for page := 1; page <= pages; page++ {
		pageURL := fmt.Sprintf(testBaseURL+"/catalogue/page-%d.html", page)
		transport.RegisterResponder("GET", pageURL, htmlResponder(buildCataloguePage(page)))
	}
	afterLast := fmt.Sprintf(testBaseURL+"/catalogue/page-%d.html", pages+1)
	transport.RegisterResponder("GET", afterLast, httpmock.NewStringResponder(404, "not found"))
}

func registerDetails(transport *httpmock.MockTransport, pages int) {
	for id := 1; id <= pages*20; id++ {
		transport.RegisterResponder("GET", detailURL(id), htmlResponder(buildDetailPage(id)))
	}
}

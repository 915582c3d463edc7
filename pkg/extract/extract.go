// Package extract turns raw listing markup into (company, document) pairs.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pdfPattern anchors at a trailing .pdf with an optional query or fragment
// suffix, case-insensitive. This and the company marker are the only
// matching rules; there is no content sniffing.
var pdfPattern = regexp.MustCompile(`(?i)\.pdf([#?].*)?$`)

const companyMarker = "/company"

// Pair is one candidate announcement: the company link followed by the
// document link, in listing order.
type Pair struct {
	CompanyRef string
	PDFRef     string
}

// CollectHrefs returns every non-empty href of the document's anchor tags,
// trimmed, in document order. A parse failure yields no hrefs rather than
// an error; the listing page either has anchors or it doesn't.
func CollectHrefs(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var hrefs []string
	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// Groups derives two independent views of an ordered href sequence:
//
//   - singles: every href that both contains the company marker and matches
//     the PDF suffix pattern on its own.
//   - pairs: every consecutive (i, i+1) where href i contains the company
//     marker and href i+1 matches the PDF suffix pattern.
//
// Both preserve input order. An href may appear in more than one pair if
// the source repeats it.
func Groups(hrefs []string) (singles []string, pairs []Pair) {
	for _, h := range hrefs {
		if strings.Contains(h, companyMarker) && pdfPattern.MatchString(h) {
			singles = append(singles, h)
		}
	}

	for i := 0; i+1 < len(hrefs); i++ {
		if strings.Contains(hrefs[i], companyMarker) && pdfPattern.MatchString(hrefs[i+1]) {
			pairs = append(pairs, Pair{CompanyRef: hrefs[i], PDFRef: hrefs[i+1]})
		}
	}
	return singles, pairs
}

var companyNamePattern = regexp.MustCompile(`/company/([^/]+)/?`)

// CompanyName extracts a human-readable company name from a company href.
// Falls back to "Unknown Company" when the href doesn't follow the
// /company/<name>/ shape.
func CompanyName(companyRef string) string {
	if m := companyNamePattern.FindStringSubmatch(companyRef); m != nil {
		return m[1]
	}
	return "Unknown Company"
}

package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup reduces any HTML in s to its text content, decoding character
// references. Plain text passes through unchanged.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

package services

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const excerptLimit = 280

// DescriptionExcerpt reduces a job description's HTML to a short plain-text
// excerpt for the JSON detail endpoint. Returns "" when the HTML is empty or
// unparseable; the caller still has the raw description either way.
func DescriptionExcerpt(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	text := doc.Text()
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= excerptLimit {
		return text
	}

	// Cut at the last word boundary before the limit.
	cut := text[:excerptLimit]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRe = regexp.MustCompile(`[^\S\n]+`)
	// Zero-width and other invisible characters common in marketing mail.
	invisibleRe = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{2060}-\x{2064}]+`)
	newlineRe   = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText renders an HTML body as readable plain text. Used to build
// classifier and notification input for messages without a plain part.
// Returns the input unchanged if it cannot be parsed.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style, head, meta, link").Remove()
	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	text := doc.Text()
	text = invisibleRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	clean := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			clean = append(clean, line)
		}
	}
	text = strings.Join(clean, "\n")
	text = newlineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSummaryLen matches what downstream scoring expects: summaries are
// truncated upstream of the scorer.
const maxSummaryLen = 1000

// CleanText strips HTML markup and entities from feed text and collapses
// whitespace. maxLen > 0 truncates the result with an ellipsis.
func CleanText(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	}

	s = strings.Join(strings.Fields(s), " ")

	if maxLen > 0 && len(s) > maxLen {
		cut := maxLen
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut-- // don't split a UTF-8 sequence
		}
		s = strings.TrimSpace(s[:cut]) + "..."
	}
	return s
}

package tcpwave

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxDetailLen = 256

// summarizeErrorPage extracts the title and first heading from an HTML error
// page. Non-HTML bodies yield an empty string.
func summarizeErrorPage(contentType string, body []byte) string {
	if !looksLikeHTML(contentType, body) {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	title := collapseSpace(doc.Find("title").First().Text())
	heading := collapseSpace(doc.Find("h1").First().Text())

	var summary string
	switch {
	case title != "" && heading != "" && !strings.EqualFold(title, heading):
		summary = title + ": " + heading
	case title != "":
		summary = title
	default:
		summary = heading
	}

	return truncateRunes(summary, maxDetailLen)
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes, marking the cut with "...".
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// Package render turns lookup responses into terminal-friendly text.

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Result renders a lookup result: the validation message, or the status line and body.
func Result(res webresolver.Result) string {
	if res.Invalid() {
		return "error: " + res.Data().Data.Error
	}
	if res.Response == nil {
		return ""
	}
	body := Body(res.Response.Header().Get("Content-Type"), res.Response.Body())
	return fmt.Sprintf("%s\n%s", res.Response.Status(), body)
}

// Body returns printable text for body: JSON is indented, HTML is reduced to
// its visible text and anything else is returned as is.
func Body(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json") || looksLikeJSON(trimmed):
		var buf bytes.Buffer
		if err := json.Indent(&buf, trimmed, "", "  "); err == nil {
			return buf.String()
		}
	case strings.Contains(ct, "html") || looksLikeHTML(trimmed):
		if text, err := htmlText(trimmed); err == nil {
			return text
		}
	}
	return string(trimmed)
}

func looksLikeJSON(b []byte) bool {
	return (b[0] == '{' || b[0] == '[') && json.Valid(b)
}

func looksLikeHTML(b []byte) bool {
	if b[0] != '<' {
		return false
	}
	lower := bytes.ToLower(b[:min(len(b), 512)])
	return bytes.Contains(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<!doctype html")) ||
		bytes.Contains(lower, []byte("<br")) ||
		bytes.Contains(lower, []byte("<pre")) ||
		bytes.Contains(lower, []byte("<table"))
}

func htmlText(body []byte) (string, error) {
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, tr, li, pre, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("td, th").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\t")
	})

	return collapseLines(doc.Text()), nil
}

// collapseLines trims every line and drops runs of blank lines.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

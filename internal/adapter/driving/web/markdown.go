package web

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	textSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	textSanitizer = bluemonday.StrictPolicy()
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// SanitizeText strips all markup from s and returns plain text. Display names
// come from the backend and are untrusted; templates escape the result.
func SanitizeText(s string) string {
	return html.UnescapeString(textSanitizer.Sanitize(s))
}

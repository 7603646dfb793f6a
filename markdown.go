package docpdf

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// markdownToHTML converts Markdown source into a standalone HTML
// document ready for the Chrome backend. The stylesheet keeps the body
// unstyled at the page container width; layout is owned by the renderer.
func markdownToHTML(src []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("docpdf: converting markdown: %w", err)
	}

	var doc bytes.Buffer
	doc.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: system-ui, sans-serif; line-height: 1.5; }
  pre { background: #f5f5f5; padding: 0.75em; overflow-x: hidden; }
  img { max-width: 100%; }
  table { border-collapse: collapse; }
  th, td { border: 1px solid #ccc; padding: 0.25em 0.5em; }
</style>
</head>
<body>
`)
	doc.Write(body.Bytes())
	doc.WriteString("\n</body>\n</html>\n")
	return doc.Bytes(), nil
}

// looksLikeMarkdown reports whether plain text input should be treated
// as Markdown. Any plain text benefits from the Markdown path (it wraps
// the content in a printable HTML shell), so this is deliberately loose.
func looksLikeMarkdown(ct string) bool {
	return ct == "text/markdown" || ct == "text/plain"
}

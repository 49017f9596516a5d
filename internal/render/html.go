package render

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/figdoc/internal/report"
)

// HTML renders a standalone HTML page from the markdown form.
type HTML struct{}

func (HTML) Ext() string         { return "html" }
func (HTML) ContentType() string { return "text/html; charset=utf-8" }

var htmlMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 860px; margin: 2rem auto; line-height: 1.5; color: #1f2328; }
blockquote { border-left: 4px solid #d0d7de; margin: 0; padding: 0 1em; color: #59636e; }
pre { background: #f6f8fa; padding: 1em; overflow-x: auto; }
h1 { border-bottom: 1px solid #d0d7de; padding-bottom: .3em; margin-top: 2em; }
</style>
</head>
<body>
%s</body>
</html>
`

func (HTML) Render(w io.Writer, doc *report.Document) error {
	var body bytes.Buffer
	if err := htmlMarkdown.Convert(markdownBytes(doc), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	_, err := fmt.Fprintf(w, htmlShell, html.EscapeString(doc.Title), body.String())
	return err
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/figdoc/internal/report"
)

// Renderer writes a document in one output format.
type Renderer interface {
	// Ext is the file extension without the dot.
	Ext() string
	ContentType() string
	Render(w io.Writer, doc *report.Document) error
}

// Formats lists the accepted format names.
var Formats = []string{"docx", "html", "markdown", "yaml"}

// ForFormat returns the renderer for a format name.
func ForFormat(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "docx", "":
		return DOCX{}, nil
	case "html", "htm":
		return HTML{}, nil
	case "markdown", "md":
		return Markdown{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

// Filename names the rendered file for doc.
func Filename(r Renderer, doc *report.Document) string {
	return report.OutputFilenameExt(doc.Project, doc.GeneratedAt, r.Ext())
}

package render

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/figdoc/internal/report"
)

// Markdown renders GitHub-flavored markdown.
type Markdown struct{}

func (Markdown) Ext() string         { return "md" }
func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }

func (Markdown) Render(w io.Writer, doc *report.Document) error {
	_, err := w.Write(markdownBytes(doc))
	return err
}

func markdownBytes(doc *report.Document) []byte {
	var buf bytes.Buffer
	blocks := buildOutline(doc).blocks
	for i, b := range blocks {
		// Bullets of one list stay together; everything else is its own
		// paragraph.
		if i > 0 && !(b.kind == blockBullet && blocks[i-1].kind == blockBullet) {
			buf.WriteByte('\n')
		}
		switch b.kind {
		case blockHeading:
			buf.WriteString(strings.Repeat("#", min(b.level, 6)))
			buf.WriteByte(' ')
			buf.WriteString(escapeInline(b.text))
		case blockText:
			buf.WriteString(escapeInline(b.text))
		case blockBullet:
			buf.WriteString("- ")
			buf.WriteString(escapeInline(b.text))
		case blockNote:
			buf.WriteString("> ")
			buf.WriteString(escapeInline(b.text))
		case blockCode:
			buf.WriteString("```\n")
			buf.WriteString(strings.TrimRight(b.text, "\n"))
			buf.WriteString("\n```")
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

var inlineEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"&", "&amp;",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"<", "&lt;",
	"[", "\\[",
	"\n", " ",
)

// escapeInline keeps design text from being read as markdown syntax,
// including block markers at the start of the line.
func escapeInline(s string) string {
	s = inlineEscaper.Replace(s)
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '-', '+', '>', '=', '|':
		return "\\" + s
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + "\\" + s[i:]
	}
	return s
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/figdoc/internal/report"
)

// DOCX renders a Word document.
type DOCX struct{}

func (DOCX) Ext() string { return "docx" }
func (DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Run sizes are in half-points.
var headingSizes = map[int]string{1: "36", 2: "28", 3: "24"}

const (
	bodySize  = "22"
	codeSize  = "18"
	noteColor = "59636E"
)

func (DOCX) Render(w io.Writer, doc *report.Document) error {
	d := docx.New().WithDefaultTheme()

	for i, b := range buildOutline(doc).blocks {
		switch b.kind {
		case blockHeading:
			size, ok := headingSizes[b.level]
			if !ok {
				size = bodySize
			}
			p := d.AddParagraph()
			p.AddText(b.text).Bold().Size(size)
			if i == 0 {
				p.Justification("center")
			}
		case blockText:
			d.AddParagraph().AddText(b.text).Size(bodySize)
		case blockBullet:
			d.AddParagraph().AddText("• " + b.text).Size(bodySize)
		case blockNote:
			d.AddParagraph().AddText(b.text).Italic().Color(noteColor).Size(bodySize)
		case blockCode:
			for _, line := range strings.Split(strings.TrimRight(b.text, "\n"), "\n") {
				d.AddParagraph().AddText(line).Size(codeSize)
			}
		}
	}

	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

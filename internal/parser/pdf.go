package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Each page with text becomes one block.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Attachment, error) {
	// ledongthuc/pdf needs a ReaderAt and size; attachments are size-limited
	// upstream, so buffering in memory is fine.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	a := &Attachment{Title: trimExt(filename, ".pdf")}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		a.Blocks = append(a.Blocks, Block{
			Heading: fmt.Sprintf("Page %d", i),
			Level:   1,
			Text:    text,
		})
	}
	return a, nil
}

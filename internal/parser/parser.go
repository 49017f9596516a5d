// Package parser reads supplementary report files attached to a generation
// request into a flat list of headed text blocks.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultExcerptChars is how much of an attachment the report quotes.
const DefaultExcerptChars = 2000

// Attachment is a parsed supplementary document.
type Attachment struct {
	Title    string
	Filename string
	Blocks   []Block
}

// Block is a run of paragraphs under one heading. Heading is empty and
// Level is 0 for text before the first heading.
type Block struct {
	Heading string
	Level   int
	Text    string
}

// Parser converts raw document bytes into an Attachment.
type Parser interface {
	Parse(r io.Reader, filename string) (*Attachment, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ParseFile picks a parser by extension and parses r.
func ParseFile(r io.Reader, filename string) (*Attachment, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	a, err := p.Parse(r, filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	a.Filename = filepath.Base(filename)
	return a, nil
}

// Text joins every block, headings included, in document order.
func (a *Attachment) Text() string {
	var sb strings.Builder
	for _, b := range a.Blocks {
		if b.Heading != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(b.Heading)
		}
		if b.Text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// Excerpt returns the first n characters (runes) of Text.
func (a *Attachment) Excerpt(n int) string {
	if a == nil {
		return ""
	}
	text := a.Text()
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// blockBuilder accumulates paragraphs under the most recent heading.
type blockBuilder struct {
	blocks []Block
	cur    Block
	text   strings.Builder
}

func (b *blockBuilder) heading(level int, title string) {
	b.flush()
	b.cur = Block{Heading: strings.TrimSpace(title), Level: level}
}

func (b *blockBuilder) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *blockBuilder) flush() {
	b.cur.Text = b.text.String()
	if b.cur.Heading != "" || b.cur.Text != "" {
		b.blocks = append(b.blocks, b.cur)
	}
	b.cur = Block{}
	b.text.Reset()
}

func (b *blockBuilder) finish() []Block {
	b.flush()
	return b.blocks
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// plain text has no headings, so the result is a single block.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Attachment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b blockBuilder
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			b.paragraph(current.String())
			current.Reset()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	b.paragraph(current.String())

	return &Attachment{
		Title:  trimExt(filename, ".txt"),
		Blocks: b.finish(),
	}, nil
}

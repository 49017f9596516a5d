package parser

import (
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	a, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", a.Title)
	}
	if len(a.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(a.Blocks))
	}
	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if a.Blocks[0].Text != want {
		t.Errorf("expected %q, got %q", want, a.Blocks[0].Text)
	}
	if a.Blocks[0].Heading != "" || a.Blocks[0].Level != 0 {
		t.Errorf("plain text should not produce a heading, got %+v", a.Blocks[0])
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	a, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", a.Title)
	}
	if len(a.Blocks) != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", len(a.Blocks))
	}
	if a.Excerpt(DefaultExcerptChars) != "" {
		t.Errorf("expected empty excerpt, got %q", a.Excerpt(DefaultExcerptChars))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	p := &TextParser{}
	a, err := p.Parse(strings.NewReader("one\n   \n\t\ntwo"), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.Text(); got != "one\n\ntwo" {
		t.Errorf("expected %q, got %q", "one\n\ntwo", got)
	}
}

func TestParseFile_SetsFilename(t *testing.T) {
	a, err := ParseFile(strings.NewReader("hello"), "/tmp/uploads/Brief.TXT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Filename != "Brief.TXT" {
		t.Errorf("expected filename %q, got %q", "Brief.TXT", a.Filename)
	}
}

func TestForFile_Unsupported(t *testing.T) {
	if _, err := ForFile("deck.pptx"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if IsSupportedExtension("deck.pptx") {
		t.Error("pptx should not be supported")
	}
	for _, name := range []string{"a.txt", "b.MD", "c.csv", "d.htm", "e.pdf", "f.docx"} {
		if !IsSupportedExtension(name) {
			t.Errorf("%s should be supported", name)
		}
	}
}

func TestExcerpt_TruncatesByRune(t *testing.T) {
	a := &Attachment{Blocks: []Block{{Text: strings.Repeat("é", 10)}}}
	if got := a.Excerpt(4); got != "éééé" {
		t.Errorf("expected 4 runes, got %q", got)
	}
	if got := a.Excerpt(0); got != strings.Repeat("é", 10) {
		t.Errorf("non-positive limit should return full text, got %q", got)
	}
	var nilAttachment *Attachment
	if got := nilAttachment.Excerpt(10); got != "" {
		t.Errorf("nil attachment excerpt should be empty, got %q", got)
	}
}

func TestCSVParser_BatchesRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,role\n")
	for i := 0; i < 25; i++ {
		sb.WriteString("ada,engineer\n")
	}
	a, err := (&CSVParser{}).Parse(strings.NewReader(sb.String()), "team.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(a.Blocks))
	}
	if a.Blocks[0].Heading != "Rows 2-21" || a.Blocks[1].Heading != "Rows 22-26" {
		t.Errorf("unexpected headings %q, %q", a.Blocks[0].Heading, a.Blocks[1].Heading)
	}
	if !strings.HasPrefix(a.Blocks[0].Text, "name: ada, role: engineer") {
		t.Errorf("unexpected row text %q", a.Blocks[0].Text)
	}
}

func TestHTMLParser_HeadingsAndSkippedChrome(t *testing.T) {
	input := `<html><head><title>Launch brief</title></head><body>
<nav><p>menu</p></nav>
<h1>Goals</h1><p>Ship   checkout.</p><ul><li>Fast</li></ul>
<script>alert(1)</script>
<h2>Risks</h2><p>Payments.</p>
<footer><p>copyright</p></footer>
</body></html>`
	a, err := (&HTMLParser{}).Parse(strings.NewReader(input), "brief.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title != "Launch brief" {
		t.Errorf("expected title from <title>, got %q", a.Title)
	}
	if len(a.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(a.Blocks), a.Blocks)
	}
	if a.Blocks[0].Heading != "Goals" || a.Blocks[0].Level != 1 || a.Blocks[0].Text != "Ship checkout.\n\nFast" {
		t.Errorf("unexpected first block %+v", a.Blocks[0])
	}
	if a.Blocks[1].Heading != "Risks" || a.Blocks[1].Level != 2 || a.Blocks[1].Text != "Payments." {
		t.Errorf("unexpected second block %+v", a.Blocks[1])
	}
}

package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_Headings(t *testing.T) {
	input := `Intro before any heading.

# Checkout

Cart review.

## Payment

Card form.

Wallets later.

# Account
`
	a, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "brief.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title != "brief" {
		t.Errorf("expected title %q, got %q", "brief", a.Title)
	}

	want := []Block{
		{Text: "Intro before any heading."},
		{Heading: "Checkout", Level: 1, Text: "Cart review."},
		{Heading: "Payment", Level: 2, Text: "Card form.\n\nWallets later."},
		{Heading: "Account", Level: 1},
	}
	if len(a.Blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(a.Blocks), a.Blocks)
	}
	for i, w := range want {
		if a.Blocks[i] != w {
			t.Errorf("block[%d]: expected %+v, got %+v", i, w, a.Blocks[i])
		}
	}
}

func TestMarkdownParser_InlineMarkupNotDuplicated(t *testing.T) {
	a, err := (&MarkdownParser{}).Parse(strings.NewReader("Use **bold** and `code`."), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(a.Blocks))
	}
	if got := a.Blocks[0].Text; got != "Use bold and code." {
		t.Errorf("expected %q, got %q", "Use bold and code.", got)
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "# Setup\n\nRun this:\n\n```sh\nmake build\n```\n"
	a, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "setup.markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title != "setup" {
		t.Errorf("expected title %q, got %q", "setup", a.Title)
	}
	if len(a.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(a.Blocks))
	}
	if got := a.Blocks[0].Text; got != "Run this:\n\nmake build" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	a, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(a.Blocks))
	}
}

func TestAttachment_TextJoinsHeadings(t *testing.T) {
	a, err := (&MarkdownParser{}).Parse(strings.NewReader("# A\n\none\n\n# B\n\ntwo\n"), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.Text(); got != "A\n\none\n\nB\n\ntwo" {
		t.Errorf("unexpected text %q", got)
	}
	if got := a.Excerpt(6); got != "A\n\none" {
		t.Errorf("unexpected excerpt %q", got)
	}
}

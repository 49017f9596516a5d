// Package segment splits a design tree into independently analyzable pages
// and derives each page's structural facts from its own subtree.
package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/figdoc/internal/catalog"
	"github.com/dgallion1/figdoc/internal/designtree"
)

// ErrPageMismatch means the raw page list does not describe the root's
// top-level children.
var ErrPageMismatch = errors.New("raw pages do not match document root")

// PageSegment is one top-level child of the document root together with
// the subtree it owns.
type PageSegment struct {
	PageID     string
	Name       string
	Kind       string
	Root       *designtree.Node
	OrderIndex int
}

// Segment produces one segment per raw page, in source order. The raw pages
// must be the root's direct children, in the order Extract reported them.
func Segment(root *designtree.Node, rawPages []catalog.RawPage) ([]PageSegment, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: missing document root", designtree.ErrMalformedInput)
	}
	if len(rawPages) != len(root.Children) {
		return nil, fmt.Errorf("%w: %d raw pages for %d top-level children", ErrPageMismatch, len(rawPages), len(root.Children))
	}

	segments := make([]PageSegment, 0, len(rawPages))
	for i, rp := range rawPages {
		child := root.Children[i]
		if rp.NodeID != child.ID || rp.Index != i {
			return nil, fmt.Errorf("%w: raw page %d is %q, child is %q", ErrPageMismatch, i, rp.NodeID, child.ID)
		}
		segments = append(segments, PageSegment{
			PageID:     child.ID,
			Name:       rp.Name,
			Kind:       rp.Kind,
			Root:       child,
			OrderIndex: i,
		})
	}
	return segments, nil
}

// Config bounds the size of the facts derived for each page.
type Config struct {
	MaxExcerpts   int // Text excerpts kept per page.
	ExcerptTokens int // Approximate token budget per excerpt.
	MaxFrames     int // Top-level frames listed per page.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxExcerpts:   12,
		ExcerptTokens: 60,
		MaxFrames:     20,
	}
}

// ComponentRef counts how often a page instantiates one component.
type ComponentRef struct {
	ComponentID string `json:"component_id"`
	Occurrences int    `json:"occurrences"`
}

// Facts are the structural observations about a page that need no external
// analysis. They are the only content a basic page section carries.
type Facts struct {
	NodeCount     int            `json:"node_count"`
	TextCount     int            `json:"text_count"`
	MaxDepth      int            `json:"max_depth"`
	Frames        []string       `json:"frames,omitempty"`
	TextExcerpts  []string       `json:"text_excerpts,omitempty"`
	ComponentRefs []ComponentRef `json:"component_refs,omitempty"`
}

// FactsOf walks only the segment's subtree.
func FactsOf(seg PageSegment, cfg Config) Facts {
	if cfg.MaxExcerpts <= 0 {
		cfg.MaxExcerpts = 12
	}
	if cfg.ExcerptTokens <= 0 {
		cfg.ExcerptTokens = 60
	}
	if cfg.MaxFrames <= 0 {
		cfg.MaxFrames = 20
	}

	var f Facts
	if seg.Root == nil {
		return f
	}

	for _, child := range seg.Root.Children {
		if len(f.Frames) >= cfg.MaxFrames {
			break
		}
		if child.Kind == designtree.KindFrame || child.Kind == designtree.KindGroup {
			f.Frames = append(f.Frames, child.DisplayName())
		}
	}

	refIdx := make(map[string]int)
	designtree.Walk(seg.Root, func(n *designtree.Node, ancestors []*designtree.Node) bool {
		f.NodeCount++
		if len(ancestors) > f.MaxDepth {
			f.MaxDepth = len(ancestors)
		}
		switch n.Kind {
		case designtree.KindText:
			f.TextCount++
			if n.Text == nil || len(f.TextExcerpts) >= cfg.MaxExcerpts {
				break
			}
			if s := TruncateTokens(collapseSpace(n.Text.Characters), cfg.ExcerptTokens); s != "" {
				f.TextExcerpts = append(f.TextExcerpts, s)
			}
		case designtree.KindInstance:
			if n.Instance == nil || n.Instance.ComponentID == "" {
				break
			}
			id := n.Instance.ComponentID
			if i, ok := refIdx[id]; ok {
				f.ComponentRefs[i].Occurrences++
				break
			}
			refIdx[id] = len(f.ComponentRefs)
			f.ComponentRefs = append(f.ComponentRefs, ComponentRef{ComponentID: id, Occurrences: 1})
		}
		return true
	})
	return f
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

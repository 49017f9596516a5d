// Package catalog walks a design tree once and builds the deduplicated
// component, style, font and text catalogs plus the raw page list.
package catalog

import (
	"fmt"
	"strings"

	"github.com/dgallion1/figdoc/internal/designtree"
)

// ComponentEntry is one reusable component referenced by instances.
type ComponentEntry struct {
	Key         string `json:"key"` // Component definition id.
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Resolved    bool   `json:"resolved"`
	Occurrences int    `json:"occurrences"`
}

// StyleEntry is one shared style referenced by any node.
type StyleEntry struct {
	Key         string `json:"key"` // Style id.
	Name        string `json:"name"`
	StyleType   string `json:"style_type,omitempty"`
	Resolved    bool   `json:"resolved"`
	Occurrences int    `json:"occurrences"`
}

// FontEntry is one (family, weight) pair used by text nodes. The descriptor
// is captured from the first occurrence.
type FontEntry struct {
	Key         string          `json:"key"`
	Font        designtree.Font `json:"font"`
	Occurrences int             `json:"occurrences"`
}

// TextEntry is one text node with its content and ancestor path.
type TextEntry struct {
	Key     string   `json:"key"` // Node id.
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Path    []string `json:"path"`
	FontKey string   `json:"font_key,omitempty"`
}

// InconsistencyKind names what kind of reference failed to resolve.
type InconsistencyKind string

const (
	MissingStyle     InconsistencyKind = "style"
	MissingFont      InconsistencyKind = "font"
	MissingComponent InconsistencyKind = "component"
)

// Inconsistency records a reference that could not be resolved. Extraction
// continues with a placeholder entry.
type Inconsistency struct {
	Kind   InconsistencyKind `json:"kind"`
	Ref    string            `json:"ref,omitempty"`
	NodeID string            `json:"node_id"`
}

func (i Inconsistency) String() string {
	if i.Ref == "" {
		return fmt.Sprintf("%s reference missing on node %s", i.Kind, i.NodeID)
	}
	return fmt.Sprintf("unresolved %s %s on node %s", i.Kind, i.Ref, i.NodeID)
}

// RawPage is a top-level child of the document root.
type RawPage struct {
	NodeID string `json:"node_id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
}

// Catalogs groups the four deduplicated catalogs. Entries are in order of
// first occurrence in the document.
type Catalogs struct {
	Components      []ComponentEntry `json:"components"`
	Styles          []StyleEntry     `json:"styles"`
	Fonts           []FontEntry      `json:"fonts"`
	Texts           []TextEntry      `json:"texts"`
	Inconsistencies []Inconsistency  `json:"inconsistencies,omitempty"`
}

// Result is the output of Extract.
type Result struct {
	Catalogs  Catalogs
	RawPages  []RawPage
	NodeCount int
}

// FontKey builds the catalog key for a font descriptor.
func FontKey(f designtree.Font) string {
	return fmt.Sprintf("%s/%d", f.Family, f.Weight)
}

// Extract walks the tree rooted at src.Root exactly once. The source is not
// modified.
func Extract(src *designtree.Source) (*Result, error) {
	if src == nil || src.Root == nil {
		return nil, fmt.Errorf("%w: missing document root", designtree.ErrMalformedInput)
	}

	b := newBuilder(src)
	designtree.Walk(src.Root, func(n *designtree.Node, ancestors []*designtree.Node) bool {
		b.visit(n, ancestors)
		return true
	})

	res := &Result{
		Catalogs:  b.cat,
		NodeCount: b.nodes,
	}
	for i, child := range src.Root.Children {
		res.RawPages = append(res.RawPages, RawPage{
			NodeID: child.ID,
			Name:   child.DisplayName(),
			Kind:   child.Kind.String(),
			Index:  i,
		})
	}
	return res, nil
}

type builder struct {
	src   *designtree.Source
	cat   Catalogs
	nodes int

	components map[string]int
	styles     map[string]int
	fonts      map[string]int
}

func newBuilder(src *designtree.Source) *builder {
	return &builder{
		src:        src,
		components: make(map[string]int),
		styles:     make(map[string]int),
		fonts:      make(map[string]int),
	}
}

func (b *builder) visit(n *designtree.Node, ancestors []*designtree.Node) {
	b.nodes++

	for _, ref := range n.StyleRefs {
		b.addStyle(ref, n.ID)
	}

	switch n.Kind {
	case designtree.KindInstance:
		b.addComponent(n)
	case designtree.KindText:
		b.addText(n, ancestors)
	}
}

func (b *builder) addStyle(ref, nodeID string) {
	if i, ok := b.styles[ref]; ok {
		b.cat.Styles[i].Occurrences++
		return
	}
	entry := StyleEntry{Key: ref, Occurrences: 1}
	if def, ok := b.src.Styles[ref]; ok && def.Name != "" {
		entry.Name = def.Name
		entry.StyleType = def.StyleType
		entry.Resolved = true
	} else {
		entry.Name = "Unresolved style " + ref
		b.cat.Inconsistencies = append(b.cat.Inconsistencies, Inconsistency{Kind: MissingStyle, Ref: ref, NodeID: nodeID})
	}
	b.styles[ref] = len(b.cat.Styles)
	b.cat.Styles = append(b.cat.Styles, entry)
}

func (b *builder) addComponent(n *designtree.Node) {
	id := ""
	if n.Instance != nil {
		id = n.Instance.ComponentID
	}
	if id == "" {
		b.cat.Inconsistencies = append(b.cat.Inconsistencies, Inconsistency{Kind: MissingComponent, NodeID: n.ID})
		return
	}
	if i, ok := b.components[id]; ok {
		b.cat.Components[i].Occurrences++
		return
	}
	entry := ComponentEntry{Key: id, Occurrences: 1}
	if def, ok := b.src.Components[id]; ok && def.Name != "" {
		entry.Name = def.Name
		entry.Description = def.Description
		entry.Resolved = true
	} else {
		entry.Name = "Unresolved component " + id
		b.cat.Inconsistencies = append(b.cat.Inconsistencies, Inconsistency{Kind: MissingComponent, Ref: id, NodeID: n.ID})
	}
	b.components[id] = len(b.cat.Components)
	b.cat.Components = append(b.cat.Components, entry)
}

func (b *builder) addText(n *designtree.Node, ancestors []*designtree.Node) {
	path := make([]string, len(ancestors))
	for i, a := range ancestors {
		path[i] = a.DisplayName()
	}
	entry := TextEntry{
		Key:  n.ID,
		Name: n.DisplayName(),
		Path: path,
	}
	if n.Text != nil {
		entry.Content = strings.TrimSpace(n.Text.Characters)
		if fontKey, ok := b.addFont(n); ok {
			entry.FontKey = fontKey
		}
	}
	b.cat.Texts = append(b.cat.Texts, entry)
}

func (b *builder) addFont(n *designtree.Node) (string, bool) {
	f := n.Text.Font
	if f.Family == "" {
		b.cat.Inconsistencies = append(b.cat.Inconsistencies, Inconsistency{Kind: MissingFont, NodeID: n.ID})
		return "", false
	}
	key := FontKey(f)
	if i, ok := b.fonts[key]; ok {
		b.cat.Fonts[i].Occurrences++
		return key, true
	}
	b.fonts[key] = len(b.cat.Fonts)
	b.cat.Fonts = append(b.cat.Fonts, FontEntry{Key: key, Font: f, Occurrences: 1})
	return key, true
}

// Counts summarizes catalog sizes for structural overviews.
type Counts struct {
	Components int `json:"components"`
	Styles     int `json:"styles"`
	Fonts      int `json:"fonts"`
	Texts      int `json:"texts"`
	Pages      int `json:"pages"`
	Nodes      int `json:"nodes"`
}

// Counts returns the size of each catalog.
func (r *Result) Counts() Counts {
	return Counts{
		Components: len(r.Catalogs.Components),
		Styles:     len(r.Catalogs.Styles),
		Fonts:      len(r.Catalogs.Fonts),
		Texts:      len(r.Catalogs.Texts),
		Pages:      len(r.RawPages),
		Nodes:      r.NodeCount,
	}
}

package designtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrMalformedInput marks a document source that fails structural
// validation. Generation aborts before extraction when it is returned.
var ErrMalformedInput = errors.New("malformed input")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// File mirrors the subset of the Figma REST file payload the engine reads.
type File struct {
	Name         string                  `json:"name"`
	LastModified string                  `json:"lastModified"`
	Version      string                  `json:"version"`
	Document     *RawNode                `json:"document"`
	Components   map[string]RawComponent `json:"components"`
	Styles       map[string]RawStyle     `json:"styles"`
}

// RawNode is a loosely typed node as it arrives on the wire.
type RawNode struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Children    []*RawNode        `json:"children,omitempty"`
	Characters  *string           `json:"characters,omitempty"`
	Style       *RawTypeStyle     `json:"style,omitempty"`
	Styles      map[string]string `json:"styles,omitempty"`
	ComponentID string            `json:"componentId,omitempty"`
}

type RawTypeStyle struct {
	FontFamily         string  `json:"fontFamily"`
	FontPostScriptName string  `json:"fontPostScriptName"`
	FontWeight         float64 `json:"fontWeight"`
	FontSize           float64 `json:"fontSize"`
	Italic             bool    `json:"italic"`
	LineHeightPx       float64 `json:"lineHeightPx"`
}

type RawComponent struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ComponentSetID string `json:"componentSetId"`
}

type RawStyle struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	StyleType   string `json:"styleType"`
	Description string `json:"description"`
}

// Decode reads a Figma file payload and validates it into a Source.
func Decode(r io.Reader) (*Source, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, malformed("decode document: %v", err)
	}
	return FromFile(&f)
}

// FromFile converts a decoded payload into a Source. Every node must carry a
// unique id; kind-specific payloads are attached here so later stages never
// probe optional fields.
func FromFile(f *File) (*Source, error) {
	if f == nil || f.Document == nil {
		return nil, malformed("missing document root")
	}

	src := &Source{
		Name:         strings.TrimSpace(f.Name),
		LastModified: f.LastModified,
		Version:      f.Version,
		Styles:       make(map[string]StyleDef, len(f.Styles)),
		Components:   make(map[string]ComponentDef, len(f.Components)),
	}
	for id, s := range f.Styles {
		src.Styles[id] = StyleDef{Key: s.Key, Name: s.Name, StyleType: s.StyleType, Description: s.Description}
	}
	for id, c := range f.Components {
		src.Components[id] = ComponentDef{Key: c.Key, Name: c.Name, Description: c.Description, SetID: c.ComponentSetID}
	}

	type pair struct {
		raw *RawNode
		dst *Node
	}
	seen := make(map[string]bool)
	root := &Node{}
	stack := []pair{{raw: f.Document, dst: root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := convertNode(p.raw, p.dst); err != nil {
			return nil, err
		}
		if seen[p.dst.ID] {
			return nil, malformed("duplicate node id %q", p.dst.ID)
		}
		seen[p.dst.ID] = true

		if len(p.raw.Children) == 0 {
			continue
		}
		p.dst.Children = make([]*Node, len(p.raw.Children))
		for i, rc := range p.raw.Children {
			if rc == nil {
				return nil, malformed("null child %d under node %q", i, p.dst.ID)
			}
			child := &Node{}
			p.dst.Children[i] = child
			stack = append(stack, pair{raw: rc, dst: child})
		}
	}
	src.Root = root
	return src, nil
}

func convertNode(raw *RawNode, dst *Node) error {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return malformed("node %q of type %s has no id", raw.Name, raw.Type)
	}
	dst.ID = id
	dst.Name = strings.TrimSpace(raw.Name)
	dst.Kind = KindFromFigma(raw.Type)
	dst.StyleRefs = styleRefs(raw.Styles)

	switch dst.Kind {
	case KindText:
		tp := &TextPayload{}
		if raw.Characters != nil {
			tp.Characters = *raw.Characters
		}
		if raw.Style != nil {
			tp.Font = Font{
				Family:       strings.TrimSpace(raw.Style.FontFamily),
				Weight:       int(raw.Style.FontWeight),
				Size:         raw.Style.FontSize,
				Italic:       raw.Style.Italic,
				LineHeightPx: raw.Style.LineHeightPx,
				PostScript:   raw.Style.FontPostScriptName,
			}
		}
		dst.Text = tp
	case KindInstance:
		dst.Instance = &InstancePayload{ComponentID: strings.TrimSpace(raw.ComponentID)}
	}
	return nil
}

// styleRefs flattens the role->id map into a deduplicated list ordered by
// role so that catalogs come out the same on every run.
func styleRefs(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	roles := make([]string, 0, len(m))
	for role := range m {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	seen := make(map[string]bool, len(m))
	refs := make([]string, 0, len(m))
	for _, role := range roles {
		id := strings.TrimSpace(m[role])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, id)
	}
	return refs
}

package designtree

import "fmt"

// NodeKind is the closed set of node kinds the engine distinguishes.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindCanvas
	KindFrame
	KindGroup
	KindText
	KindVector
	KindInstance
)

func (k NodeKind) String() string {
	switch k {
	case KindCanvas:
		return "canvas"
	case KindFrame:
		return "frame"
	case KindGroup:
		return "group"
	case KindText:
		return "text"
	case KindVector:
		return "vector"
	case KindInstance:
		return "instance"
	default:
		return "other"
	}
}

// KindFromFigma maps a Figma node type onto a NodeKind.
func KindFromFigma(t string) NodeKind {
	switch t {
	case "CANVAS":
		return KindCanvas
	case "FRAME", "COMPONENT", "COMPONENT_SET", "SECTION":
		return KindFrame
	case "GROUP", "BOOLEAN_OPERATION":
		return KindGroup
	case "TEXT":
		return KindText
	case "VECTOR", "RECTANGLE", "ELLIPSE", "LINE", "STAR", "REGULAR_POLYGON", "POLYGON":
		return KindVector
	case "INSTANCE":
		return KindInstance
	default:
		return KindOther
	}
}

// Source is a fetched design document: the node tree plus the definition
// tables that style and component references resolve against.
type Source struct {
	Name         string
	LastModified string
	Version      string
	Root         *Node
	Styles       map[string]StyleDef
	Components   map[string]ComponentDef
}

// Node is one element of the design tree. Text and Instance are set only
// for nodes of the matching kind.
type Node struct {
	ID        string
	Kind      NodeKind
	Name      string
	Children  []*Node
	StyleRefs []string // Deduplicated, ordered by style role.

	Text     *TextPayload
	Instance *InstancePayload
}

// TextPayload carries the content of a text node.
type TextPayload struct {
	Characters string
	Font       Font
}

// InstancePayload points an instance node at its component definition.
type InstancePayload struct {
	ComponentID string
}

// Font describes the typeface used by a text node.
type Font struct {
	Family       string  `json:"family"`
	Weight       int     `json:"weight"`
	Size         float64 `json:"size"`
	Italic       bool    `json:"italic,omitempty"`
	LineHeightPx float64 `json:"line_height_px,omitempty"`
	PostScript   string  `json:"postscript,omitempty"`
}

// StyleDef is an entry of the document's style-definition table.
type StyleDef struct {
	Key         string
	Name        string
	StyleType   string // FILL, TEXT, EFFECT, GRID
	Description string
}

// ComponentDef is an entry of the document's component-definition table.
type ComponentDef struct {
	Key         string
	Name        string
	Description string
	SetID       string
}

// DisplayName returns the node name, or a deterministic placeholder when the
// node has none.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("Untitled %s %s", n.Kind, n.ID)
}

// Walk visits root and its descendants in document (pre-)order without
// recursion. ancestors holds the path from root to the visited node's parent
// and is only valid for the duration of the call. Returning false skips the
// node's children.
func Walk(root *Node, visit func(n *Node, ancestors []*Node) bool) {
	if root == nil {
		return
	}
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{node: root}}
	var ancestors []*Node
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ancestors = ancestors[:f.depth]
		if !visit(f.node, ancestors) {
			continue
		}
		ancestors = append(ancestors, f.node)
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], depth: f.depth + 1})
		}
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node, []*Node) bool {
		total++
		return true
	})
	return total
}

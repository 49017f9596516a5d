package designtree

import (
	"strings"
	"testing"
)

func TestWalk_DocumentOrderAndAncestors(t *testing.T) {
	root := &Node{ID: "r", Name: "root", Children: []*Node{
		{ID: "a", Name: "A", Children: []*Node{
			{ID: "a1", Name: "A1"},
			{ID: "a2", Name: "A2"},
		}},
		{ID: "b", Name: "B"},
	}}

	var order []string
	paths := map[string]string{}
	Walk(root, func(n *Node, ancestors []*Node) bool {
		order = append(order, n.ID)
		var names []string
		for _, a := range ancestors {
			names = append(names, a.Name)
		}
		paths[n.ID] = strings.Join(names, "/")
		return true
	})

	if got := strings.Join(order, ","); got != "r,a,a1,a2,b" {
		t.Errorf("expected pre-order r,a,a1,a2,b, got %s", got)
	}
	if paths["a2"] != "root/A" {
		t.Errorf("expected a2 path root/A, got %q", paths["a2"])
	}
	if paths["b"] != "root" {
		t.Errorf("expected b path root, got %q", paths["b"])
	}
	if paths["r"] != "" {
		t.Errorf("expected empty path for root, got %q", paths["r"])
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	root := &Node{ID: "r", Children: []*Node{
		{ID: "a", Children: []*Node{{ID: "a1"}}},
		{ID: "b"},
	}}
	var order []string
	Walk(root, func(n *Node, _ []*Node) bool {
		order = append(order, n.ID)
		return n.ID != "a"
	})
	if got := strings.Join(order, ","); got != "r,a,b" {
		t.Errorf("expected r,a,b, got %s", got)
	}
}

func TestWalk_NilRoot(t *testing.T) {
	called := false
	Walk(nil, func(*Node, []*Node) bool {
		called = true
		return true
	})
	if called {
		t.Error("expected no visits for nil root")
	}
}

func TestWalk_DeeplyNestedTree(t *testing.T) {
	// Deep enough that a naive recursive walk with large frames would be
	// uncomfortable; the iterative walk only grows heap slices.
	const depth = 200000
	root := &Node{ID: "0"}
	cur := root
	for i := 1; i < depth; i++ {
		child := &Node{ID: "n"}
		cur.Children = []*Node{child}
		cur = child
	}
	if got := Count(root); got != depth {
		t.Fatalf("expected %d nodes, got %d", depth, got)
	}
}

func TestDisplayName_Placeholder(t *testing.T) {
	n := &Node{ID: "4:2", Kind: KindFrame}
	if got := n.DisplayName(); got != "Untitled frame 4:2" {
		t.Errorf("expected placeholder, got %q", got)
	}
	n.Name = "Checkout"
	if got := n.DisplayName(); got != "Checkout" {
		t.Errorf("expected name, got %q", got)
	}
}

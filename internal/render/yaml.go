package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/figdoc/internal/report"
)

// YAML exports the document structure. It goes through the JSON encoding
// so keys match the API's JSON field names, and through a yaml.Node so
// field order is kept.
type YAML struct{}

func (YAML) Ext() string         { return "yaml" }
func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Render(w io.Writer, doc *report.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("convert document: %w", err)
	}
	// JSON input decodes with flow style; switch to block style for output.
	unflow(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func unflow(n *yaml.Node) {
	stack := []*yaml.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.Style &^= yaml.FlowStyle
		if cur.Kind == yaml.ScalarNode && cur.Style&yaml.DoubleQuotedStyle != 0 && cur.Tag == "!!str" {
			cur.Style &^= yaml.DoubleQuotedStyle
		}
		stack = append(stack, cur.Content...)
	}
}

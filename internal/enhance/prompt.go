package enhance

import (
	"fmt"
	"strings"

	"github.com/dgallion1/figdoc/internal/segment"
)

// SystemPrompt frames every page analysis call.
const SystemPrompt = `You are a senior software architect analyzing Figma design files. Always respond with valid JSON when requested.`

const PagePrompt = `Analyze this design page/screen from a Figma file. Return ONE JSON object with these fields:

- "suggested_route": URL route path for the page (e.g. "/home", "/dashboard", "/login")
- "page_purpose": what the page is for (1-3 sentences)
- "app_summary": one sentence on what the whole application appears to be, as seen from this page
- "user_stories": list of "As a user, I want to ..." statements
- "user_flows": list of step sequences a user follows on this page, each as one line ("Open cart -> Edit quantity -> Checkout")
- "user_interactions": list of interactions the page supports
- "connected_pages": list of other page names this page links to (only names from the list below)
- "key_components": list of important UI components
- "implementation_priority": "high", "medium" or "low"
- "developer_notes": list of short implementation notes
- "feature_spec": object with "feature_name", "description", "technical_requirements" (list), "api_endpoints_needed" (list, e.g. "GET /api/items"), "database_models" (list), "acceptance_criteria" (list)
- "tech_stack": object with "frontend", "backend", "database", "additional_tools" (each a list)

Rules:
- Base the analysis only on the structure and text shown below
- Keep every list item under 200 characters
- Use lists, never a single string, for list fields

Respond with ONLY the JSON object, no markdown formatting or other text.`

// PageRequest is everything the coordinator knows about one page.
type PageRequest struct {
	Project    string
	PageID     string
	PageName   string
	OrderIndex int
	Siblings   []string // Names of the other pages, in document order.
	Components []string // Resolved names of components used on the page.
	Facts      segment.Facts
	Context    string // Optional excerpt of a supplementary report.
}

// BuildPagePrompt renders the user prompt for one page, with the project
// name and page position as context.
func BuildPagePrompt(req PageRequest) string {
	var sb strings.Builder
	sb.WriteString(PagePrompt)
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "Project: %q\n", req.Project)
	fmt.Fprintf(&sb, "Page: %q (page %d)\n", req.PageName, req.OrderIndex+1)
	if len(req.Siblings) > 0 {
		sb.WriteString("Other pages: ")
		sb.WriteString(strings.Join(req.Siblings, ", "))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Nodes: %d, text elements: %d, max depth: %d\n", req.Facts.NodeCount, req.Facts.TextCount, req.Facts.MaxDepth)
	if len(req.Facts.Frames) > 0 {
		sb.WriteString("Frames: ")
		sb.WriteString(strings.Join(req.Facts.Frames, ", "))
		sb.WriteString("\n")
	}
	if len(req.Components) > 0 {
		sb.WriteString("Components: ")
		sb.WriteString(strings.Join(req.Components, ", "))
		sb.WriteString("\n")
	}
	if len(req.Facts.TextExcerpts) > 0 {
		sb.WriteString("Visible text:\n")
		for _, t := range req.Facts.TextExcerpts {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
	}
	if req.Context != "" {
		sb.WriteString("Supplementary report excerpt:\n")
		sb.WriteString(req.Context)
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	return sb.String()
}

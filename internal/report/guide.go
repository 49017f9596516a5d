package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var priorityOrder = []string{"high", "medium", "low"}

var phaseNames = map[string]string{
	"high":   "Phase 1: Core screens",
	"medium": "Phase 2: Supporting screens",
	"low":    "Phase 3: Secondary screens",
}

// implementationGuide derives phases, routes and notes from the analyzed
// pages only.
func implementationGuide(pages []pageView) GuideContent {
	if len(pages) == 0 {
		return GuideContent{Placeholder: UnavailablePlaceholder}
	}

	g := GuideContent{Available: true}
	byPriority := make(map[string][]pageView)
	for _, p := range pages {
		g.DerivedFrom = append(g.DerivedFrom, p.seg.Name)
		a := p.result.Analysis
		byPriority[a.Priority] = append(byPriority[a.Priority], p)
		g.Routes = append(g.Routes, Route{Path: a.Route, Page: p.seg.Name, Purpose: a.Purpose})
	}

	for _, prio := range priorityOrder {
		group := byPriority[prio]
		if len(group) == 0 {
			continue
		}
		phase := Phase{Name: phaseNames[prio], Priority: prio}
		for _, p := range group {
			a := p.result.Analysis
			phase.Pages = append(phase.Pages, p.seg.Name)
			step := fmt.Sprintf("Build %s at %s", p.seg.Name, a.Route)
			if len(a.KeyComponents) > 0 {
				step += " using " + strings.Join(a.KeyComponents, ", ")
			}
			phase.Steps = append(phase.Steps, step)
			for _, req := range a.Feature.Requirements {
				phase.Steps = append(phase.Steps, fmt.Sprintf("%s: %s", p.seg.Name, req))
			}
		}
		g.Phases = append(g.Phases, phase)
	}

	seen := make(map[string]bool)
	for _, p := range pages {
		for _, n := range p.result.Analysis.DeveloperNotes {
			if key := strings.ToLower(n); !seen[key] {
				seen[key] = true
				g.Notes = append(g.Notes, n)
			}
		}
	}
	return g
}

// techStack unions the stack hints of the analyzed pages, keeping first-seen
// order, and draws the architecture diagram.
func techStack(project string, pages []pageView) TechStackContent {
	if len(pages) == 0 {
		return TechStackContent{Placeholder: UnavailablePlaceholder}
	}

	t := TechStackContent{Available: true}
	var fe, be, db, tools, endpoints, models unionList
	for _, p := range pages {
		t.DerivedFrom = append(t.DerivedFrom, p.seg.Name)
		a := p.result.Analysis
		fe.add(a.Stack.Frontend...)
		be.add(a.Stack.Backend...)
		db.add(a.Stack.Database...)
		tools.add(a.Stack.Tools...)
		endpoints.add(a.Feature.APIEndpoints...)
		models.add(a.Feature.DataModels...)
	}
	t.Frontend, t.Backend, t.Database, t.Tools = fe.items, be.items, db.items, tools.items
	t.Endpoints, t.DataModels = endpoints.items, models.items
	t.Diagram = ArchitectureDiagram(diagramLayers(project, pages, t))
	return t
}

type unionList struct {
	seen  map[string]bool
	items []string
}

func (u *unionList) add(vals ...string) {
	if u.seen == nil {
		u.seen = make(map[string]bool)
	}
	for _, v := range vals {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || u.seen[key] {
			continue
		}
		u.seen[key] = true
		u.items = append(u.items, strings.TrimSpace(v))
	}
}

// diagramLayers lists the boxes from user interaction down to storage.
func diagramLayers(project string, pages []pageView, t TechStackContent) []string {
	layers := []string{"User (browser)"}
	for i, p := range pages {
		if i == 2 {
			break
		}
		layers = append(layers, p.seg.Name+" Interface")
	}
	if len(t.Frontend) > 0 {
		layers = append(layers, t.Frontend[0]+" Layer")
	}
	if len(t.Backend) > 0 {
		layers = append(layers, t.Backend[0]+" API")
	}
	if len(t.Database) > 0 {
		layers = append(layers, t.Database[0])
	}
	if len(layers) == 1 {
		layers = append(layers, project+" System")
	}
	if len(layers) > 6 {
		layers = layers[:6]
	}
	return layers
}

// ArchitectureDiagram stacks one ASCII box per layer, joined by arrows.
func ArchitectureDiagram(layers []string) string {
	if len(layers) == 0 {
		return ""
	}
	width := 20
	for _, l := range layers {
		if n := utf8.RuneCountInString(l); n+4 > width {
			width = n + 4
		}
	}
	border := "+" + strings.Repeat("-", width-2) + "+"
	arrowPad := strings.Repeat(" ", (width-1)/2)

	var lines []string
	for i, l := range layers {
		inner := width - 2 - utf8.RuneCountInString(l)
		left := inner / 2
		lines = append(lines,
			border,
			"|"+strings.Repeat(" ", left)+l+strings.Repeat(" ", inner-left)+"|",
			border,
		)
		if i < len(layers)-1 {
			lines = append(lines, arrowPad+"|", arrowPad+"v")
		}
	}
	return strings.Join(lines, "\n")
}

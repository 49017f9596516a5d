// Package render turns an assembled report document into a downloadable
// file. Markdown, HTML and DOCX share one outline of typed blocks; YAML
// serializes the document itself.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/figdoc/internal/catalog"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/report"
)

// maxListedTexts caps the text catalog listing; the count is always shown.
const maxListedTexts = 50

// BasicMarker prefixes the note on every page section rendered without
// analysis.
const BasicMarker = "Basic content"

type blockKind int

const (
	blockHeading blockKind = iota
	blockText
	blockBullet
	blockCode
	blockNote
)

type block struct {
	kind  blockKind
	level int
	text  string
}

type outline struct {
	blocks []block
}

func (o *outline) heading(level int, format string, args ...any) {
	o.blocks = append(o.blocks, block{kind: blockHeading, level: level, text: fmt.Sprintf(format, args...)})
}

func (o *outline) text(format string, args ...any) {
	o.blocks = append(o.blocks, block{kind: blockText, text: fmt.Sprintf(format, args...)})
}

func (o *outline) note(s string) {
	o.blocks = append(o.blocks, block{kind: blockNote, text: s})
}

func (o *outline) code(s string) {
	if s != "" {
		o.blocks = append(o.blocks, block{kind: blockCode, text: s})
	}
}

func (o *outline) bullets(items ...string) {
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			o.blocks = append(o.blocks, block{kind: blockBullet, text: it})
		}
	}
}

// list writes a titled bullet list, or nothing when items is empty.
func (o *outline) list(level int, title string, items []string) {
	if len(items) == 0 {
		return
	}
	o.heading(level, "%s", title)
	o.bullets(items...)
}

// buildOutline lays the document out section by section in order.
func buildOutline(doc *report.Document) *outline {
	o := &outline{}
	for _, s := range doc.Sections {
		switch c := s.Content.(type) {
		case report.CoverContent:
			coverBlocks(o, doc, c)
		case report.DesignAssetsContent:
			o.heading(1, "%s", s.Title)
			assetBlocks(o, c)
		case report.OverviewContent:
			o.heading(1, "%s", s.Title)
			overviewBlocks(o, c)
		case report.PageContent:
			o.heading(1, "%s", s.Title)
			pageBlocks(o, c)
		case report.GuideContent:
			o.heading(1, "%s", s.Title)
			guideBlocks(o, c)
		case report.TechStackContent:
			o.heading(1, "%s", s.Title)
			stackBlocks(o, c)
		}
	}
	return o
}

func coverBlocks(o *outline, doc *report.Document, c report.CoverContent) {
	o.heading(1, "%s", doc.Title)
	o.text("Project: %s", c.Project)
	o.text("Mode: %s", c.Mode)
	o.text("Generated: %s", c.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	if c.Version != "" {
		o.text("Design version: %s", c.Version)
	}
	if c.LastModified != "" {
		o.text("Last modified: %s", c.LastModified)
	}
	o.heading(2, "Contents")
	for _, e := range c.Contents {
		o.bullets(fmt.Sprintf("%d. %s", e.Order+1, e.Title))
	}
}

func assetBlocks(o *outline, c report.DesignAssetsContent) {
	o.text("%d components, %d styles, %d fonts, %d text layers across %d pages (%d nodes).",
		c.Counts.Components, c.Counts.Styles, c.Counts.Fonts, c.Counts.Texts, c.Counts.Pages, c.Counts.Nodes)

	comps := make([]string, 0, len(c.Components))
	for _, e := range c.Components {
		comps = append(comps, componentLine(e))
	}
	o.list(2, "Components", comps)

	styles := make([]string, 0, len(c.Styles))
	for _, e := range c.Styles {
		line := e.Name
		if e.StyleType != "" {
			line += " [" + strings.ToLower(e.StyleType) + "]"
		}
		styles = append(styles, fmt.Sprintf("%s (x%d)", line, e.Occurrences))
	}
	o.list(2, "Styles", styles)

	fonts := make([]string, 0, len(c.Fonts))
	for _, e := range c.Fonts {
		line := fmt.Sprintf("%s %d", e.Font.Family, e.Font.Weight)
		if e.Font.Size > 0 {
			line += fmt.Sprintf(", %gpx", e.Font.Size)
		}
		if e.Font.Italic {
			line += ", italic"
		}
		fonts = append(fonts, fmt.Sprintf("%s (x%d)", line, e.Occurrences))
	}
	o.list(2, "Fonts", fonts)

	texts := make([]string, 0, min(len(c.Texts), maxListedTexts))
	for i, e := range c.Texts {
		if i == maxListedTexts {
			break
		}
		texts = append(texts, fmt.Sprintf("%s: %s", strings.Join(e.Path, " > "), e.Content))
	}
	o.list(2, "Text content", texts)
	if extra := len(c.Texts) - maxListedTexts; extra > 0 {
		o.text("... and %d more text layers.", extra)
	}

	o.list(2, "Unresolved references", c.Inconsistencies)
}

func componentLine(e catalog.ComponentEntry) string {
	line := fmt.Sprintf("%s (x%d)", e.Name, e.Occurrences)
	if e.Description != "" {
		line += ": " + e.Description
	}
	return line
}

func overviewBlocks(o *outline, c report.OverviewContent) {
	o.text("%s", c.Summary)
	if c.Note != "" {
		o.note(c.Note)
	}
	if c.Basis == report.BasisAI {
		o.text("Derived from %d analyzed pages.", c.AnalyzedPages)
	}

	purposes := make([]string, 0, len(c.PagePurposes))
	for _, p := range c.PagePurposes {
		purposes = append(purposes, p.Page+": "+p.Purpose)
	}
	o.list(2, "Page purposes", purposes)
	o.list(2, "Key features", c.KeyFeatures)
	o.list(2, "Pages", c.Pages)

	if c.Attachment != nil && c.Attachment.Excerpt != "" {
		o.heading(2, "Supplementary report: %s", c.Attachment.Filename)
		o.text("%s", c.Attachment.Excerpt)
	}
}

func pageBlocks(o *outline, c report.PageContent) {
	if c.Basic {
		marker := BasicMarker
		if c.Note != "" {
			marker += ": " + c.Note
		}
		o.note(marker)
	}

	f := c.Facts
	o.text("%d nodes, %d text layers, depth %d.", f.NodeCount, f.TextCount, f.MaxDepth)
	o.list(2, "Frames", f.Frames)
	o.list(2, "Components used", c.Components)
	o.list(2, "Text excerpts", f.TextExcerpts)

	if c.Basic || c.Analysis == nil {
		return
	}
	analysisBlocks(o, c.Analysis)
}

func analysisBlocks(o *outline, a *enhance.Analysis) {
	o.heading(2, "Analysis")
	o.text("Route: %s", a.Route)
	o.text("Priority: %s", a.Priority)
	o.text("%s", a.Purpose)
	o.list(3, "User stories", a.UserStories)
	o.list(3, "User flows", a.UserFlows)
	o.list(3, "Interactions", a.Interactions)
	o.list(3, "Connected pages", a.ConnectedPages)
	o.list(3, "Key components", a.KeyComponents)
	o.list(3, "Developer notes", a.DeveloperNotes)

	fs := a.Feature
	if fs.Name != "" || fs.Description != "" {
		o.heading(3, "Feature: %s", fs.Name)
		if fs.Description != "" {
			o.text("%s", fs.Description)
		}
	}
	o.list(3, "Technical requirements", fs.Requirements)
	o.list(3, "API endpoints", fs.APIEndpoints)
	o.list(3, "Data models", fs.DataModels)
	o.list(3, "Acceptance criteria", fs.AcceptanceCriteria)
}

func guideBlocks(o *outline, c report.GuideContent) {
	if !c.Available {
		o.note(c.Placeholder)
		return
	}
	if len(c.DerivedFrom) > 0 {
		o.text("Derived from: %s", strings.Join(c.DerivedFrom, ", "))
	}
	for _, ph := range c.Phases {
		o.heading(2, "%s (%s priority)", ph.Name, ph.Priority)
		o.text("Pages: %s", strings.Join(ph.Pages, ", "))
		o.bullets(ph.Steps...)
	}
	routes := make([]string, 0, len(c.Routes))
	for _, r := range c.Routes {
		line := r.Path + " -> " + r.Page
		if r.Purpose != "" {
			line += ": " + r.Purpose
		}
		routes = append(routes, line)
	}
	o.list(2, "Routes", routes)
	o.list(2, "Notes", c.Notes)
}

func stackBlocks(o *outline, c report.TechStackContent) {
	if !c.Available {
		o.note(c.Placeholder)
		return
	}
	if len(c.DerivedFrom) > 0 {
		o.text("Derived from: %s", strings.Join(c.DerivedFrom, ", "))
	}
	o.list(2, "Frontend", c.Frontend)
	o.list(2, "Backend", c.Backend)
	o.list(2, "Database", c.Database)
	o.list(2, "Tools", c.Tools)
	o.list(2, "API endpoints", c.Endpoints)
	o.list(2, "Data models", c.DataModels)
	if c.Diagram != "" {
		o.heading(2, "Architecture")
		o.code(c.Diagram)
	}
}

package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/figdoc/internal/catalog"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/segment"
)

// ErrAssemblyFailure means the inputs or the assembled document violate the
// document's structural rules. It indicates a bug upstream.
var ErrAssemblyFailure = errors.New("report assembly failed")

// UnavailablePlaceholder explains missing AI sections in an enhanced report
// where no page could be analyzed.
const UnavailablePlaceholder = "Enhancement was attempted but unavailable: no page could be analyzed, so this section could not be derived."

// Input is everything Assemble merges.
type Input struct {
	Project      string
	Version      string
	LastModified string
	Mode         Mode
	Catalog      *catalog.Result
	Segments     []segment.PageSegment
	Facts        map[string]segment.Facts // Optional; computed from the segment when missing.
	Results      enhance.Results
	Attachment   *Attachment
	GeneratedAt  time.Time
	FactsConfig  segment.Config
}

func assemblyErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAssemblyFailure, fmt.Sprintf(format, args...))
}

// Assemble builds the report. The number of sections depends only on the
// number of segments and the mode; which pages succeeded only changes
// section content.
func Assemble(in Input) (*Document, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	project := strings.TrimSpace(in.Project)
	if project == "" {
		project = "Untitled design"
	}
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	pages := make([]pageView, len(in.Segments))
	for i, seg := range in.Segments {
		pages[i] = newPageView(seg, in)
	}
	succeeded := succeededPages(pages)

	doc := &Document{
		Title:       project + " Design Report",
		Project:     project,
		Mode:        in.Mode,
		GeneratedAt: generatedAt,
	}

	// The cover is filled in last, once the final sequence is known.
	doc.Sections = append(doc.Sections, Section{Kind: KindCover, Title: project})
	doc.Sections = append(doc.Sections, Section{
		Kind:    KindDesignAssets,
		Title:   "Design Assets",
		Content: designAssets(in.Catalog),
	})
	doc.Sections = append(doc.Sections, Section{
		Kind:    KindOverview,
		Title:   "Overview",
		Content: overview(project, in, pages, succeeded),
	})
	for _, p := range pages {
		doc.Sections = append(doc.Sections, Section{
			Kind:    KindPage,
			Title:   p.seg.Name,
			Content: p.content(),
		})
	}
	if in.Mode == ModeEnhanced {
		doc.Sections = append(doc.Sections,
			Section{Kind: KindImplementationGuide, Title: "Implementation Guide", Content: implementationGuide(succeeded)},
			Section{Kind: KindTechStack, Title: "Technology Stack", Content: techStack(project, succeeded)},
		)
	}

	toc := make([]TOCEntry, len(doc.Sections))
	for i := range doc.Sections {
		doc.Sections[i].Order = i
		toc[i] = TOCEntry{Order: i, Kind: doc.Sections[i].Kind, Title: doc.Sections[i].Title}
	}
	doc.Sections[0].Content = CoverContent{
		Project:      project,
		Mode:         in.Mode,
		GeneratedAt:  generatedAt,
		Version:      in.Version,
		LastModified: in.LastModified,
		Contents:     toc,
	}

	if err := checkDocument(doc, len(in.Segments)); err != nil {
		return nil, err
	}
	return doc, nil
}

func checkInput(in Input) error {
	if in.Mode != ModeBasic && in.Mode != ModeEnhanced {
		return assemblyErr("unknown mode %q", in.Mode)
	}
	if in.Catalog == nil {
		return assemblyErr("missing catalog")
	}
	seen := make(map[string]bool, len(in.Segments))
	for i, seg := range in.Segments {
		if seg.OrderIndex != i {
			return assemblyErr("segment %q has order index %d at position %d", seg.PageID, seg.OrderIndex, i)
		}
		if seen[seg.PageID] {
			return assemblyErr("duplicate segment %q", seg.PageID)
		}
		seen[seg.PageID] = true

		r, ok := in.Results[seg.PageID]
		switch {
		case in.Mode == ModeEnhanced && !ok:
			return assemblyErr("no enhancement result for page %q", seg.PageID)
		case in.Mode == ModeBasic && ok && r.Status != enhance.StatusSkipped:
			return assemblyErr("basic report has %s result for page %q", r.Status, seg.PageID)
		case ok && r.Status == enhance.StatusSucceeded && r.Analysis == nil:
			return assemblyErr("page %q succeeded without analysis", seg.PageID)
		}
	}
	return nil
}

func checkDocument(doc *Document, pageCount int) error {
	if want := ExpectedSections(pageCount, doc.Mode); len(doc.Sections) != want {
		return assemblyErr("%d sections, want %d", len(doc.Sections), want)
	}
	assets := 0
	for i, s := range doc.Sections {
		if s.Content == nil || s.Content.sectionKind() != s.Kind {
			return assemblyErr("section %d (%s) has mismatched content", i, s.Kind)
		}
		switch c := s.Content.(type) {
		case DesignAssetsContent:
			assets++
		case PageContent:
			if c.Basic != (c.Analysis == nil) {
				return assemblyErr("page %q mixes basic marker and analysis", c.PageID)
			}
			if c.Basic == (c.Status == enhance.StatusSucceeded) {
				return assemblyErr("page %q with status %s has basic=%t", c.PageID, c.Status, c.Basic)
			}
		}
	}
	if assets != 1 {
		return assemblyErr("%d design asset sections", assets)
	}
	return nil
}

type pageView struct {
	seg        segment.PageSegment
	facts      segment.Facts
	components []string
	result     enhance.Result
}

func newPageView(seg segment.PageSegment, in Input) pageView {
	facts, ok := in.Facts[seg.PageID]
	if !ok {
		facts = segment.FactsOf(seg, in.FactsConfig)
	}
	result, ok := in.Results[seg.PageID]
	if !ok {
		result = enhance.Result{PageID: seg.PageID, Status: enhance.StatusSkipped}
	}
	return pageView{
		seg:        seg,
		facts:      facts,
		components: componentNames(in.Catalog, facts),
		result:     result,
	}
}

func (p pageView) succeeded() bool {
	return p.result.Status == enhance.StatusSucceeded
}

func (p pageView) content() PageContent {
	c := PageContent{
		PageID:     p.seg.PageID,
		Name:       p.seg.Name,
		OrderIndex: p.seg.OrderIndex,
		Status:     p.result.Status,
		Facts:      p.facts,
		Components: p.components,
	}
	if p.succeeded() {
		c.Analysis = p.result.Analysis
		return c
	}
	c.Basic = true
	switch p.result.Status {
	case enhance.StatusFailed:
		reason := enhance.ReasonUpstream
		if p.result.Failure != nil {
			reason = p.result.Failure.Reason
		}
		c.Note = fmt.Sprintf("AI analysis failed for this page (%s). Only structural facts are shown.", reason)
	default:
		c.Note = "AI analysis was not requested. Only structural facts are shown."
	}
	return c
}

func succeededPages(pages []pageView) []pageView {
	var out []pageView
	for _, p := range pages {
		if p.succeeded() {
			out = append(out, p)
		}
	}
	return out
}

// componentNames resolves a page's component references against the
// catalog, keeping the page's first-use order.
func componentNames(cat *catalog.Result, facts segment.Facts) []string {
	if len(facts.ComponentRefs) == 0 {
		return nil
	}
	names := make(map[string]string, len(cat.Catalogs.Components))
	for _, c := range cat.Catalogs.Components {
		names[c.Key] = c.Name
	}
	out := make([]string, 0, len(facts.ComponentRefs))
	for _, ref := range facts.ComponentRefs {
		name, ok := names[ref.ComponentID]
		if !ok {
			name = ref.ComponentID
		}
		if ref.Occurrences > 1 {
			name = fmt.Sprintf("%s (x%d)", name, ref.Occurrences)
		}
		out = append(out, name)
	}
	return out
}

func designAssets(cat *catalog.Result) DesignAssetsContent {
	c := DesignAssetsContent{
		Counts:     cat.Counts(),
		Components: cat.Catalogs.Components,
		Styles:     cat.Catalogs.Styles,
		Fonts:      cat.Catalogs.Fonts,
		Texts:      cat.Catalogs.Texts,
	}
	for _, inc := range cat.Catalogs.Inconsistencies {
		c.Inconsistencies = append(c.Inconsistencies, inc.String())
	}
	return c
}

func overview(project string, in Input, pages []pageView, succeeded []pageView) OverviewContent {
	c := OverviewContent{
		Counts:        in.Catalog.Counts(),
		AnalyzedPages: len(succeeded),
		Attachment:    in.Attachment,
	}
	for _, p := range pages {
		c.Pages = append(c.Pages, p.seg.Name)
	}

	if in.Mode != ModeEnhanced || len(succeeded) == 0 {
		c.Basis = BasisStructural
		c.Summary = structuralSummary(project, c.Counts)
		if in.Mode == ModeEnhanced {
			c.Note = UnavailablePlaceholder
		}
		return c
	}

	c.Basis = BasisAI
	seenFeature := make(map[string]bool)
	for _, p := range succeeded {
		a := p.result.Analysis
		if c.Summary == "" && a.AppSummary != "" {
			c.Summary = a.AppSummary
		}
		c.PagePurposes = append(c.PagePurposes, PagePurpose{Page: p.seg.Name, Purpose: a.Purpose})
		if name := a.Feature.Name; name != "" && !seenFeature[strings.ToLower(name)] {
			seenFeature[strings.ToLower(name)] = true
			c.KeyFeatures = append(c.KeyFeatures, name)
		}
	}
	if c.Summary == "" {
		c.Summary = structuralSummary(project, c.Counts)
	}
	if len(succeeded) < len(pages) {
		c.Note = fmt.Sprintf("AI analysis covers %d of %d pages.", len(succeeded), len(pages))
	}
	return c
}

func structuralSummary(project string, c catalog.Counts) string {
	return fmt.Sprintf("%s contains %d pages, %d components, %d styles, %d fonts and %d text elements across %d nodes.",
		project, c.Pages, c.Components, c.Styles, c.Fonts, c.Texts, c.Nodes)
}

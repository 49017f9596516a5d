package report

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/figdoc/internal/catalog"
	"github.com/dgallion1/figdoc/internal/designtree"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/segment"
)

var fixedTime = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// buildInput makes a document with one canvas per name, each holding a frame
// with a text and a button instance.
func buildInput(t *testing.T, mode Mode, names ...string) Input {
	t.Helper()
	root := &designtree.Node{ID: "0:0", Name: "Document"}
	for i, n := range names {
		root.Children = append(root.Children, &designtree.Node{
			ID: fmt.Sprintf("1:%d", i+1), Kind: designtree.KindCanvas, Name: n,
			Children: []*designtree.Node{{
				ID: fmt.Sprintf("2:%d", i+1), Kind: designtree.KindFrame, Name: n + " frame",
				Children: []*designtree.Node{
					{ID: fmt.Sprintf("3:%d", i+1), Kind: designtree.KindText, Name: "Title",
						Text: &designtree.TextPayload{Characters: "Welcome to " + n, Font: designtree.Font{Family: "Inter", Weight: 400}}},
					{ID: fmt.Sprintf("4:%d", i+1), Kind: designtree.KindInstance, Name: "Button",
						Instance: &designtree.InstancePayload{ComponentID: "C:btn"}},
				},
			}},
		})
	}
	src := &designtree.Source{
		Name:       "Shop App",
		Root:       root,
		Components: map[string]designtree.ComponentDef{"C:btn": {Name: "Button"}},
	}
	cat, err := catalog.Extract(src)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	segs, err := segment.Segment(root, cat.RawPages)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	return Input{
		Project:     src.Name,
		Mode:        mode,
		Catalog:     cat,
		Segments:    segs,
		Results:     enhance.Results{},
		GeneratedAt: fixedTime,
	}
}

func analysisFor(name, prio string) *enhance.Analysis {
	return &enhance.Analysis{
		Route:          "/" + strings.ToLower(name),
		Purpose:        name + " purpose",
		AppSummary:     "An online shop.",
		UserStories:    []string{"As a user, I want to use " + name},
		UserFlows:      []string{"Open " + name},
		KeyComponents:  []string{"Button"},
		Priority:       prio,
		DeveloperNotes: []string{"Cache " + name},
		Feature:        enhance.FeatureSpec{Name: name + " feature", APIEndpoints: []string{"GET /api/" + strings.ToLower(name)}},
		Stack:          enhance.TechHints{Frontend: []string{"React"}, Backend: []string{"Go"}, Database: []string{"PostgreSQL"}},
	}
}

func succeed(in *Input, idx int, prio string) {
	seg := in.Segments[idx]
	in.Results[seg.PageID] = enhance.Result{PageID: seg.PageID, Status: enhance.StatusSucceeded, Analysis: analysisFor(seg.Name, prio), Attempts: 1}
}

func fail(in *Input, idx int, reason enhance.Reason) {
	seg := in.Segments[idx]
	in.Results[seg.PageID] = enhance.Result{PageID: seg.PageID, Status: enhance.StatusFailed, Failure: &enhance.Failure{Reason: reason, Message: "x"}, Attempts: 1}
}

func kinds(doc *Document) string {
	var ks []string
	for _, s := range doc.Sections {
		ks = append(ks, string(s.Kind))
	}
	return strings.Join(ks, ",")
}

func pageSections(doc *Document) []PageContent {
	var out []PageContent
	for _, s := range doc.Sections {
		if pc, ok := s.Content.(PageContent); ok {
			out = append(out, pc)
		}
	}
	return out
}

func sectionOf[T Content](t *testing.T, doc *Document) T {
	t.Helper()
	for _, s := range doc.Sections {
		if c, ok := s.Content.(T); ok {
			return c
		}
	}
	var zero T
	t.Fatalf("no %T section", zero)
	return zero
}

func TestAssemble_BasicTwoPages(t *testing.T) {
	in := buildInput(t, ModeBasic, "Home", "Cart")
	doc, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Mode != ModeBasic {
		t.Errorf("expected basic mode, got %s", doc.Mode)
	}
	if got := kinds(doc); got != "cover,design_assets,overview,page,page" {
		t.Errorf("unexpected section sequence %s", got)
	}
	for _, pc := range pageSections(doc) {
		if !pc.Basic || pc.Analysis != nil {
			t.Errorf("page %s: expected structural-only content", pc.Name)
		}
		if pc.Status != enhance.StatusSkipped {
			t.Errorf("page %s: expected skipped, got %s", pc.Name, pc.Status)
		}
		if pc.Facts.NodeCount != 4 {
			t.Errorf("page %s: expected 4 nodes, got %d", pc.Name, pc.Facts.NodeCount)
		}
		if len(pc.Components) != 1 || pc.Components[0] != "Button" {
			t.Errorf("page %s: expected resolved component name, got %v", pc.Name, pc.Components)
		}
	}
	ov := sectionOf[OverviewContent](t, doc)
	if ov.Basis != BasisStructural || ov.Note != "" {
		t.Errorf("expected structural overview without note, got %+v", ov)
	}
	if !strings.Contains(ov.Summary, "2 pages") {
		t.Errorf("unexpected summary %q", ov.Summary)
	}
}

func TestAssemble_EnhancedWithOneTimeout(t *testing.T) {
	in := buildInput(t, ModeEnhanced, "Home", "Cart", "Profile")
	succeed(&in, 0, "high")
	fail(&in, 1, enhance.ReasonTimeout)
	succeed(&in, 2, "low")

	doc, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := kinds(doc); got != "cover,design_assets,overview,page,page,page,implementation_guide,tech_stack" {
		t.Errorf("unexpected section sequence %s", got)
	}

	pages := pageSections(doc)
	if pages[0].Basic || pages[0].Analysis == nil || pages[0].Analysis.Route != "/home" {
		t.Errorf("page 1 should carry AI content, got %+v", pages[0])
	}
	if !pages[1].Basic || pages[1].Analysis != nil {
		t.Errorf("page 2 must be structural-only, got %+v", pages[1])
	}
	if !strings.Contains(pages[1].Note, "timeout") {
		t.Errorf("expected note naming the timeout, got %q", pages[1].Note)
	}
	if pages[2].Basic {
		t.Errorf("page 3 should carry AI content")
	}

	guide := sectionOf[GuideContent](t, doc)
	if !guide.Available {
		t.Fatal("expected guide to be available")
	}
	if diff := cmp.Diff([]string{"Home", "Profile"}, guide.DerivedFrom); diff != "" {
		t.Errorf("guide must derive from pages 1 and 3 only (-want +got):\n%s", diff)
	}
	for _, r := range guide.Routes {
		if r.Page == "Cart" {
			t.Errorf("failed page leaked into routes: %+v", r)
		}
	}
	if len(guide.Phases) != 2 || guide.Phases[0].Priority != "high" || guide.Phases[1].Priority != "low" {
		t.Errorf("expected high then low phases, got %+v", guide.Phases)
	}

	stack := sectionOf[TechStackContent](t, doc)
	if diff := cmp.Diff([]string{"React"}, stack.Frontend); diff != "" {
		t.Errorf("expected deduplicated frontend list (-want +got):\n%s", diff)
	}
	if !strings.Contains(stack.Diagram, "Go API") {
		t.Errorf("expected backend box in diagram:\n%s", stack.Diagram)
	}

	ov := sectionOf[OverviewContent](t, doc)
	if ov.Basis != BasisAI || ov.AnalyzedPages != 2 || ov.Summary != "An online shop." {
		t.Errorf("unexpected overview %+v", ov)
	}
}

func TestAssemble_EmptyTree(t *testing.T) {
	in := buildInput(t, ModeBasic)
	doc, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := kinds(doc); got != "cover,design_assets,overview" {
		t.Errorf("unexpected section sequence %s", got)
	}
	assets := sectionOf[DesignAssetsContent](t, doc)
	if len(assets.Components)+len(assets.Styles)+len(assets.Fonts)+len(assets.Texts) != 0 {
		t.Errorf("expected empty catalogs, got %+v", assets)
	}
}

func TestAssemble_AllPagesFail(t *testing.T) {
	in := buildInput(t, ModeEnhanced, "Home", "Cart")
	fail(&in, 0, enhance.ReasonRateLimited)
	fail(&in, 1, enhance.ReasonAuth)

	doc, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Mode != ModeEnhanced {
		t.Errorf("expected enhanced mode, got %s", doc.Mode)
	}
	if len(doc.Sections) != ExpectedSections(2, ModeEnhanced) {
		t.Errorf("expected %d sections, got %d", ExpectedSections(2, ModeEnhanced), len(doc.Sections))
	}
	guide := sectionOf[GuideContent](t, doc)
	stack := sectionOf[TechStackContent](t, doc)
	if guide.Available || guide.Placeholder != UnavailablePlaceholder {
		t.Errorf("expected guide placeholder, got %+v", guide)
	}
	if stack.Available || stack.Placeholder != UnavailablePlaceholder || stack.Diagram != "" {
		t.Errorf("expected tech stack placeholder, got %+v", stack)
	}
	for _, pc := range pageSections(doc) {
		if !pc.Basic || pc.Analysis != nil {
			t.Errorf("page %s must be structural-only", pc.Name)
		}
	}
	ov := sectionOf[OverviewContent](t, doc)
	if ov.Basis != BasisStructural || ov.Note != UnavailablePlaceholder {
		t.Errorf("expected structural overview with placeholder note, got %+v", ov)
	}
}

func TestAssemble_SectionCountIndependentOfOutcomes(t *testing.T) {
	const n = 4
	for mask := 0; mask < 1<<n; mask++ {
		in := buildInput(t, ModeEnhanced, "A", "B", "C", "D")
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				succeed(&in, i, "medium")
			} else {
				fail(&in, i, enhance.ReasonUpstream)
			}
		}
		doc, err := Assemble(in)
		if err != nil {
			t.Fatalf("mask %04b: unexpected error: %v", mask, err)
		}
		if len(doc.Sections) != 5+n {
			t.Errorf("mask %04b: expected %d sections, got %d", mask, 5+n, len(doc.Sections))
		}
		for i, pc := range pageSections(doc) {
			ok := mask&(1<<i) != 0
			if ok == pc.Basic {
				t.Errorf("mask %04b page %d: basic=%t", mask, i, pc.Basic)
			}
			if !ok && pc.Analysis != nil {
				t.Errorf("mask %04b page %d: failed page carries analysis", mask, i)
			}
		}
	}
}

func TestAssemble_CoverListsFinalSequence(t *testing.T) {
	in := buildInput(t, ModeEnhanced, "Home")
	succeed(&in, 0, "high")
	doc, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Sections[0].Kind != KindCover {
		t.Fatalf("expected cover first, got %s", doc.Sections[0].Kind)
	}
	cover := doc.Sections[0].Content.(CoverContent)
	if len(cover.Contents) != len(doc.Sections) {
		t.Fatalf("expected %d toc entries, got %d", len(doc.Sections), len(cover.Contents))
	}
	for i, e := range cover.Contents {
		s := doc.Sections[i]
		if e.Order != s.Order || e.Kind != s.Kind || e.Title != s.Title || s.Order != i {
			t.Errorf("toc entry %d %+v does not match section %+v", i, e, s)
		}
	}
	if !cover.GeneratedAt.Equal(fixedTime) {
		t.Errorf("expected generation time to be carried, got %v", cover.GeneratedAt)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	in := buildInput(t, ModeEnhanced, "Home", "Cart")
	succeed(&in, 0, "high")
	fail(&in, 1, enhance.ReasonTimeout)
	first, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("assembly not deterministic (-first +second):\n%s", diff)
	}
}

func TestAssemble_InvariantViolations(t *testing.T) {
	cases := map[string]func(in *Input){
		"missing catalog": func(in *Input) { in.Catalog = nil },
		"unknown mode":    func(in *Input) { in.Mode = "fancy" },
		"missing enhanced result": func(in *Input) {
			in.Mode = ModeEnhanced
		},
		"succeeded in basic mode": func(in *Input) {
			succeed(in, 0, "high")
		},
		"succeeded without analysis": func(in *Input) {
			in.Mode = ModeEnhanced
			for _, s := range in.Segments {
				in.Results[s.PageID] = enhance.Result{PageID: s.PageID, Status: enhance.StatusSucceeded}
			}
		},
		"reordered segments": func(in *Input) {
			in.Segments[0], in.Segments[1] = in.Segments[1], in.Segments[0]
		},
	}
	for name, mutate := range cases {
		in := buildInput(t, ModeBasic, "Home", "Cart")
		mutate(&in)
		if _, err := Assemble(in); !errors.Is(err, ErrAssemblyFailure) {
			t.Errorf("%s: expected ErrAssemblyFailure, got %v", name, err)
		}
	}
}

func TestAssemble_UntitledProject(t *testing.T) {
	in := buildInput(t, ModeBasic, "Home")
	in.Project = "  "
	doc, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Project != "Untitled design" {
		t.Errorf("expected placeholder project name, got %q", doc.Project)
	}
}

func TestAssemble_AttachmentOnOverview(t *testing.T) {
	in := buildInput(t, ModeBasic, "Home")
	in.Attachment = &Attachment{Filename: "notes.md", Excerpt: "Research summary"}
	doc, err := Assemble(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ov := sectionOf[OverviewContent](t, doc)
	if ov.Attachment == nil || ov.Attachment.Excerpt != "Research summary" {
		t.Errorf("expected attachment excerpt on overview, got %+v", ov.Attachment)
	}
}

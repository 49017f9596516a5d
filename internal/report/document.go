// Package report assembles catalogs, page segments and enhancement results
// into an ordered report document.
package report

import (
	"time"

	"github.com/dgallion1/figdoc/internal/catalog"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/segment"
)

// Mode is fixed for the whole document when assembly starts.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeEnhanced Mode = "enhanced"
)

// SectionKind identifies a report section.
type SectionKind string

const (
	KindCover               SectionKind = "cover"
	KindOverview            SectionKind = "overview"
	KindDesignAssets        SectionKind = "design_assets"
	KindPage                SectionKind = "page"
	KindImplementationGuide SectionKind = "implementation_guide"
	KindTechStack           SectionKind = "tech_stack"
)

// Document is the assembled report handed to a renderer.
type Document struct {
	Title       string    `json:"title" yaml:"title"`
	Project     string    `json:"project" yaml:"project"`
	Mode        Mode      `json:"mode" yaml:"mode"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Sections    []Section `json:"sections" yaml:"sections"`
}

// Section is one entry of the document. Content holds the payload type that
// matches Kind.
type Section struct {
	Kind    SectionKind `json:"kind" yaml:"kind"`
	Order   int         `json:"order" yaml:"order"`
	Title   string      `json:"title" yaml:"title"`
	Content Content     `json:"content" yaml:"content"`
}

// Content is implemented by every section payload.
type Content interface {
	sectionKind() SectionKind
}

// TOCEntry is one line of the cover's table of contents.
type TOCEntry struct {
	Order int         `json:"order" yaml:"order"`
	Kind  SectionKind `json:"kind" yaml:"kind"`
	Title string      `json:"title" yaml:"title"`
}

type CoverContent struct {
	Project      string     `json:"project" yaml:"project"`
	Mode         Mode       `json:"mode" yaml:"mode"`
	GeneratedAt  time.Time  `json:"generated_at" yaml:"generated_at"`
	Version      string     `json:"version,omitempty" yaml:"version,omitempty"`
	LastModified string     `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	Contents     []TOCEntry `json:"contents" yaml:"contents"`
}

type DesignAssetsContent struct {
	Counts          catalog.Counts           `json:"counts" yaml:"counts"`
	Components      []catalog.ComponentEntry `json:"components" yaml:"components"`
	Styles          []catalog.StyleEntry     `json:"styles" yaml:"styles"`
	Fonts           []catalog.FontEntry      `json:"fonts" yaml:"fonts"`
	Texts           []catalog.TextEntry      `json:"texts" yaml:"texts"`
	Inconsistencies []string                 `json:"inconsistencies,omitempty" yaml:"inconsistencies,omitempty"`
}

// Overview bases.
const (
	BasisAI         = "ai"
	BasisStructural = "structural"
)

type OverviewContent struct {
	Basis         string         `json:"basis" yaml:"basis"`
	Summary       string         `json:"summary" yaml:"summary"`
	PagePurposes  []PagePurpose  `json:"page_purposes,omitempty" yaml:"page_purposes,omitempty"`
	KeyFeatures   []string       `json:"key_features,omitempty" yaml:"key_features,omitempty"`
	Pages         []string       `json:"pages" yaml:"pages"`
	Counts        catalog.Counts `json:"counts" yaml:"counts"`
	AnalyzedPages int            `json:"analyzed_pages" yaml:"analyzed_pages"`
	Attachment    *Attachment    `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Note          string         `json:"note,omitempty" yaml:"note,omitempty"`
}

// PagePurpose pairs a page with its AI-derived purpose.
type PagePurpose struct {
	Page    string `json:"page" yaml:"page"`
	Purpose string `json:"purpose" yaml:"purpose"`
}

// Attachment is an excerpt of a supplementary report supplied with the
// request.
type Attachment struct {
	Filename string `json:"filename" yaml:"filename"`
	Excerpt  string `json:"excerpt" yaml:"excerpt"`
}

// PageContent is the payload of one page section. Analysis is nil whenever
// Basic is true.
type PageContent struct {
	PageID     string            `json:"page_id" yaml:"page_id"`
	Name       string            `json:"name" yaml:"name"`
	OrderIndex int               `json:"order_index" yaml:"order_index"`
	Basic      bool              `json:"basic" yaml:"basic"`
	Status     enhance.Status    `json:"status" yaml:"status"`
	Note       string            `json:"note,omitempty" yaml:"note,omitempty"`
	Facts      segment.Facts     `json:"facts" yaml:"facts"`
	Components []string          `json:"components,omitempty" yaml:"components,omitempty"`
	Analysis   *enhance.Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// Phase groups pages of the same priority into one implementation step.
type Phase struct {
	Name     string   `json:"name" yaml:"name"`
	Priority string   `json:"priority" yaml:"priority"`
	Pages    []string `json:"pages" yaml:"pages"`
	Steps    []string `json:"steps" yaml:"steps"`
}

// Route is one entry of the suggested routing table.
type Route struct {
	Path    string `json:"path" yaml:"path"`
	Page    string `json:"page" yaml:"page"`
	Purpose string `json:"purpose" yaml:"purpose"`
}

type GuideContent struct {
	Available   bool     `json:"available" yaml:"available"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	DerivedFrom []string `json:"derived_from,omitempty" yaml:"derived_from,omitempty"`
	Phases      []Phase  `json:"phases,omitempty" yaml:"phases,omitempty"`
	Routes      []Route  `json:"routes,omitempty" yaml:"routes,omitempty"`
	Notes       []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type TechStackContent struct {
	Available   bool     `json:"available" yaml:"available"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	DerivedFrom []string `json:"derived_from,omitempty" yaml:"derived_from,omitempty"`
	Frontend    []string `json:"frontend,omitempty" yaml:"frontend,omitempty"`
	Backend     []string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Database    []string `json:"database,omitempty" yaml:"database,omitempty"`
	Tools       []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	Endpoints   []string `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	DataModels  []string `json:"data_models,omitempty" yaml:"data_models,omitempty"`
	Diagram     string   `json:"diagram,omitempty" yaml:"diagram,omitempty"`
}

func (CoverContent) sectionKind() SectionKind        { return KindCover }
func (DesignAssetsContent) sectionKind() SectionKind { return KindDesignAssets }
func (OverviewContent) sectionKind() SectionKind     { return KindOverview }
func (PageContent) sectionKind() SectionKind         { return KindPage }
func (GuideContent) sectionKind() SectionKind        { return KindImplementationGuide }
func (TechStackContent) sectionKind() SectionKind    { return KindTechStack }

// ExpectedSections is the section count for a document with pageCount pages.
func ExpectedSections(pageCount int, mode Mode) int {
	if mode == ModeEnhanced {
		return 5 + pageCount
	}
	return 3 + pageCount
}

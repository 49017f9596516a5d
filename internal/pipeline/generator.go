package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/figdoc/internal/catalog"
	"github.com/dgallion1/figdoc/internal/designtree"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/parser"
	"github.com/dgallion1/figdoc/internal/report"
	"github.com/dgallion1/figdoc/internal/segment"
)

// ErrGenerateTimeout is returned when a generation does not finish assembly
// within its end-to-end limit. It wraps context.DeadlineExceeded.
var ErrGenerateTimeout = errors.New("report generation timed out")

// pageContextChars is how much of an attachment each page prompt carries.
const pageContextChars = 600

// CapabilityFactory builds an analysis capability for a credential.
type CapabilityFactory func(ctx context.Context, credential string) (enhance.Capability, error)

// ProviderFactory returns a factory backed by enhance.NewCapability.
func ProviderFactory(pc enhance.ProviderConfig) CapabilityFactory {
	return func(ctx context.Context, credential string) (enhance.Capability, error) {
		return enhance.NewCapability(ctx, pc, credential)
	}
}

// Request is one generation.
type Request struct {
	Source     *designtree.Source
	Credential string // Empty forces basic mode.
	Attachment *parser.Attachment

	// OnStage, if set, is called as each stage starts.
	OnStage func(JobStatus)
}

type GeneratorConfig struct {
	Enhance enhance.Config
	Facts   segment.Config
	Timeout time.Duration
}

// Generator runs extraction, segmentation, enhancement and assembly for one
// design. It holds no per-request state.
type Generator struct {
	factory CapabilityFactory
	cfg     GeneratorConfig
	stats   *enhance.LLMStats
	log     *slog.Logger
	now     func() time.Time
}

// NewGenerator returns a generator. factory may be nil, in which case every
// report is basic. stats may be nil.
func NewGenerator(factory CapabilityFactory, cfg GeneratorConfig, stats *enhance.LLMStats, log *slog.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		factory: factory,
		cfg:     cfg,
		stats:   stats,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate produces the report document. Malformed input, assembly
// failures and the end-to-end timeout are the only errors; enhancement
// problems only degrade page content.
func (g *Generator) Generate(ctx context.Context, req Request) (*report.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	stage := func(s JobStatus) {
		if req.OnStage != nil {
			req.OnStage(s)
		}
	}

	if req.Source == nil {
		return nil, fmt.Errorf("%w: no design source", designtree.ErrMalformedInput)
	}
	log := g.log.With("project", req.Source.Name)

	stage(StatusExtracting)
	cat, err := catalog.Extract(req.Source)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	segs, err := segment.Segment(req.Source.Root, cat.RawPages)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	log.Info("extracted design", "pages", len(segs), "nodes", cat.NodeCount,
		"components", len(cat.Catalogs.Components), "inconsistencies", len(cat.Catalogs.Inconsistencies))

	facts := make(map[string]segment.Facts, len(segs))
	for _, s := range segs {
		facts[s.PageID] = segment.FactsOf(s, g.cfg.Facts)
	}
	pages := pageRequests(req, cat, segs, facts)

	mode := report.ModeBasic
	var results enhance.Results
	if req.Credential != "" && g.factory != nil {
		mode = report.ModeEnhanced
		stage(StatusEnhancing)
		results = g.enhance(ctx, log, req.Credential, pages)
	} else {
		results = enhance.NewCoordinator(nil, g.cfg.Enhance, nil, log).Enhance(ctx, pages)
	}

	if err := g.deadline(ctx); err != nil {
		return nil, err
	}

	stage(StatusAssembling)
	var att *report.Attachment
	if req.Attachment != nil {
		att = &report.Attachment{
			Filename: req.Attachment.Filename,
			Excerpt:  req.Attachment.Excerpt(parser.DefaultExcerptChars),
		}
	}
	doc, err := report.Assemble(report.Input{
		Project:      req.Source.Name,
		Version:      req.Source.Version,
		LastModified: req.Source.LastModified,
		Mode:         mode,
		Catalog:      cat,
		Segments:     segs,
		Facts:        facts,
		Results:      results,
		Attachment:   att,
		GeneratedAt:  g.now(),
		FactsConfig:  g.cfg.Facts,
	})
	if err != nil {
		return nil, err
	}
	if err := g.deadline(ctx); err != nil {
		return nil, err
	}
	log.Info("report assembled", "mode", mode, "sections", len(doc.Sections),
		"succeeded", results.Succeeded(), "failed", results.Failed())
	return doc, nil
}

func (g *Generator) enhance(ctx context.Context, log *slog.Logger, credential string, pages []enhance.PageRequest) enhance.Results {
	capability, err := g.factory(ctx, credential)
	if err != nil {
		log.Warn("enhancement unavailable", "error", err)
		return enhance.Unavailable(pages, err)
	}
	if c, ok := capability.(interface{ Close() }); ok {
		defer c.Close()
	}
	return enhance.NewCoordinator(capability, g.cfg.Enhance, g.stats, log).Enhance(ctx, pages)
}

// deadline converts an expired generation context into ErrGenerateTimeout.
func (g *Generator) deadline(ctx context.Context) error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s: %w", ErrGenerateTimeout, g.cfg.Timeout, err)
	case err != nil:
		return fmt.Errorf("generate: %w", err)
	}
	return nil
}

func pageRequests(req Request, cat *catalog.Result, segs []segment.PageSegment, facts map[string]segment.Facts) []enhance.PageRequest {
	names := make(map[string]string, len(cat.Catalogs.Components))
	for _, c := range cat.Catalogs.Components {
		names[c.Key] = c.Name
	}
	var pageContext string
	if req.Attachment != nil {
		pageContext = req.Attachment.Excerpt(pageContextChars)
	}

	pages := make([]enhance.PageRequest, len(segs))
	for i, s := range segs {
		siblings := make([]string, 0, len(segs)-1)
		for j, other := range segs {
			if j != i {
				siblings = append(siblings, other.Name)
			}
		}
		f := facts[s.PageID]
		comps := make([]string, 0, len(f.ComponentRefs))
		for _, ref := range f.ComponentRefs {
			if n, ok := names[ref.ComponentID]; ok {
				comps = append(comps, n)
			}
		}
		pages[i] = enhance.PageRequest{
			Project:    req.Source.Name,
			PageID:     s.PageID,
			PageName:   s.Name,
			OrderIndex: s.OrderIndex,
			Siblings:   siblings,
			Components: comps,
			Facts:      f,
			Context:    pageContext,
		}
	}
	return pages
}

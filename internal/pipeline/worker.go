package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/figdoc/internal/designtree"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/render"
	"github.com/dgallion1/figdoc/internal/report"
	"github.com/dgallion1/figdoc/internal/storage"
)

// Fetcher downloads a design file.
type Fetcher interface {
	GetFile(ctx context.Context, key, token string) (*designtree.Source, error)
}

// Worker processes a single report job.
type Worker struct {
	fetcher    Fetcher
	generator  *Generator
	renderer   render.Renderer
	store      storage.Store
	credential string
	log        *slog.Logger
}

func NewWorker(fetcher Fetcher, generator *Generator, renderer render.Renderer, store storage.Store, credential string, log *slog.Logger) *Worker {
	return &Worker{
		fetcher:    fetcher,
		generator:  generator,
		renderer:   renderer,
		store:      store,
		credential: credential,
		log:        log,
	}
}

// Process runs fetch, generate, render and store for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file_key", job.FileKey)
	token, attachment := job.credentials()

	// Phase 1: Fetch
	job.SetStatus(StatusFetching, "fetching design")
	src, err := w.fetcher.GetFile(ctx, job.FileKey, token)
	if err != nil {
		log.Error("fetch failed", "error", err)
		job.Fail("fetching", fmt.Errorf("fetch: %w", err))
		return
	}

	// Phase 2: Generate
	doc, err := w.generator.Generate(ctx, Request{
		Source:     src,
		Credential: w.credential,
		Attachment: attachment,
		OnStage: func(s JobStatus) {
			job.SetStatus(s, string(s))
		},
	})
	if err != nil {
		log.Error("generation failed", "error", err)
		job.Fail("generating", err)
		return
	}
	progress := documentProgress(doc)
	job.SetDocument(doc.Project, string(doc.Mode), progress)
	for _, e := range pageFailures(doc) {
		job.AddError(e)
	}

	// Phase 3: Render
	job.SetStatus(StatusRendering, "rendering")
	var buf bytes.Buffer
	if err := w.renderer.Render(&buf, doc); err != nil {
		log.Error("render failed", "error", err)
		job.Fail("rendering", fmt.Errorf("render: %w", err))
		return
	}

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	filename := render.Filename(w.renderer, doc)
	err = w.store.Put(ctx, filename, w.renderer.ContentType(), buf.Bytes())
	if errors.Is(err, storage.ErrExists) {
		// Same project finished within the same second.
		filename = withJobSuffix(filename, job.ID)
		err = w.store.Put(ctx, filename, w.renderer.ContentType(), buf.Bytes())
	}
	if err != nil {
		log.Error("store failed", "filename", filename, "error", err)
		job.Fail("storing", fmt.Errorf("store: %w", err))
		return
	}

	status := StatusCompleted
	if doc.Mode == report.ModeEnhanced && progress.BasicPages > 0 {
		status = StatusPartial
	}
	job.Finish(status, filename)
	log.Info("report stored", "filename", filename, "status", status, "bytes", buf.Len(),
		"pages", progress.TotalPages, "analyzed", progress.AnalyzedPages)
}

// withJobSuffix turns shop_123.md into shop_123_<job id>.md.
func withJobSuffix(filename, jobID string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_" + strings.ToLower(jobID) + ext
}

func documentProgress(doc *report.Document) Progress {
	var p Progress
	for _, s := range doc.Sections {
		pc, ok := s.Content.(report.PageContent)
		if !ok {
			continue
		}
		p.TotalPages++
		if pc.Basic {
			p.BasicPages++
		} else {
			p.AnalyzedPages++
		}
	}
	return p
}

func pageFailures(doc *report.Document) []string {
	var out []string
	for _, s := range doc.Sections {
		pc, ok := s.Content.(report.PageContent)
		if ok && pc.Status == enhance.StatusFailed {
			out = append(out, fmt.Sprintf("page %q: %s", pc.Name, pc.Note))
		}
	}
	return out
}

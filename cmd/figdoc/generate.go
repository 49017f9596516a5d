package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/figdoc/internal/config"
	"github.com/dgallion1/figdoc/internal/designtree"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/figma"
	"github.com/dgallion1/figdoc/internal/parser"
	"github.com/dgallion1/figdoc/internal/pipeline"
	"github.com/dgallion1/figdoc/internal/render"
	"github.com/dgallion1/figdoc/internal/report"
	"github.com/dgallion1/figdoc/internal/segment"
)

type generateOptions struct {
	format   string
	out      string
	attach   string
	provider string
	token    string
	verbose  bool
}

func generateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <figma-link | export.json>",
		Short: "Generate a report from a Figma link or a local file export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if opts.provider != "" {
				cfg.Provider = strings.ToLower(opts.provider)
			}
			if opts.format == "" {
				opts.format = cfg.OutputFormat
			}
			if opts.token == "" {
				opts.token = os.Getenv("FIGMA_TOKEN")
			}
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelInfo
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			path, doc, err := runGenerate(cmd.Context(), cfg, opts, args[0], log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d sections)\n", path, doc.Mode, len(doc.Sections))
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: docx|html|markdown|yaml (default: $OUTPUT_FORMAT or docx)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.attach, "attach", "", "supplementary report file (txt, md, csv, html, pdf, docx)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "enhancement provider: groq|gemini|off (default: $ENHANCE_PROVIDER)")
	cmd.Flags().StringVar(&opts.token, "token", "", "Figma access token for links (default: $FIGMA_TOKEN)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress")
	return cmd
}

func runGenerate(ctx context.Context, cfg config.Config, opts generateOptions, target string, log *slog.Logger) (string, *report.Document, error) {
	renderer, err := render.ForFormat(opts.format)
	if err != nil {
		return "", nil, err
	}

	src, err := loadSource(ctx, cfg, opts.token, target, log)
	if err != nil {
		return "", nil, err
	}

	var attachment *parser.Attachment
	if opts.attach != "" {
		f, err := os.Open(opts.attach)
		if err != nil {
			return "", nil, fmt.Errorf("open attachment: %w", err)
		}
		attachment, err = parser.ParseFile(f, opts.attach)
		f.Close()
		if err != nil {
			return "", nil, fmt.Errorf("parse attachment: %w", err)
		}
	}

	var factory pipeline.CapabilityFactory
	credential := cfg.Credential()
	if cfg.Provider != "off" && credential != "" {
		pc := enhance.ProviderConfig{
			Provider:    cfg.Provider,
			GroqModel:   cfg.GroqModel,
			GroqBaseURL: cfg.GroqBaseURL,
			GeminiModel: cfg.GeminiModel,
		}
		if cfg.Provider == enhance.ProviderGroq {
			pc.GeminiFallbackKey = cfg.GeminiAPIKey
		}
		factory = pipeline.ProviderFactory(pc)
	}
	gen := pipeline.NewGenerator(factory, pipeline.GeneratorConfig{
		Enhance: enhance.Config{
			Concurrency: cfg.EnhanceConcurrency,
			CallTimeout: cfg.EnhanceCallTimeout,
			MaxAttempts: cfg.EnhanceMaxAttempts,
		},
		Facts:   segment.DefaultConfig(),
		Timeout: cfg.GenerateTimeout,
	}, nil, log)

	doc, err := gen.Generate(ctx, pipeline.Request{
		Source:     src,
		Credential: credential,
		Attachment: attachment,
	})
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, doc); err != nil {
		return "", nil, fmt.Errorf("render: %w", err)
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return "", nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(opts.out, render.Filename(renderer, doc))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", nil, fmt.Errorf("write report: %w", err)
	}
	return path, doc, nil
}

// loadSource reads a local export when target is a file, else fetches the
// linked design.
func loadSource(ctx context.Context, cfg config.Config, token, target string, log *slog.Logger) (*designtree.Source, error) {
	if !strings.Contains(target, "://") {
		f, err := os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("open export: %w", err)
		}
		defer f.Close()
		return designtree.Decode(f)
	}

	key, err := figma.ParseFileKey(target)
	if err != nil {
		return nil, err
	}
	client := figma.NewClient(cfg.FigmaAPIURL, cfg.FigmaTimeout, log)
	defer client.Close()
	return client.GetFile(ctx, key, token)
}

package enhance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Capability is an external analysis provider. Implementations must honor
// ctx cancellation and deadlines.
type Capability interface {
	Name() string
	AnalyzePage(ctx context.Context, prompt string) (*Analysis, error)
}

// Config controls the coordinator's pool and retry behavior.
type Config struct {
	Concurrency int           // Simultaneous calls, clamped to 1..16.
	CallTimeout time.Duration // Deadline for a single call.
	MaxAttempts int           // Attempts per page for retryable errors.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		CallTimeout: 45 * time.Second,
		MaxAttempts: 2,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.Concurrency > 16 {
		c.Concurrency = 16
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	return c
}

// Coordinator fans page analyses out over a bounded pool.
type Coordinator struct {
	capability Capability
	cfg        Config
	stats      *LLMStats
	log        *slog.Logger

	backoff func(attempt int) time.Duration
}

// NewCoordinator returns a coordinator. A nil capability makes every page
// skipped. stats may be nil.
func NewCoordinator(capability Capability, cfg Config, stats *LLMStats, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		capability: capability,
		cfg:        cfg.normalized(),
		stats:      stats,
		log:        log,
		backoff:    Backoff,
	}
}

// Enabled reports whether a capability is configured.
func (c *Coordinator) Enabled() bool {
	return c != nil && c.capability != nil
}

// Enhance analyzes every page at most once per attempt and returns one
// result per page id. It never returns an error: failures, including
// cancellation of ctx, are recorded on the affected pages.
func (c *Coordinator) Enhance(ctx context.Context, pages []PageRequest) Results {
	results := make(Results, len(pages))
	if !c.Enabled() {
		for _, p := range pages {
			results[p.PageID] = Result{PageID: p.PageID, Status: StatusSkipped}
		}
		return results
	}

	slots := make([]Result, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, p := range pages {
		g.Go(func() error {
			slots[i] = c.analyze(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range slots {
		results[r.PageID] = r
	}
	c.log.Info("enhancement complete",
		"provider", c.capability.Name(),
		"pages", len(pages),
		"succeeded", results.Succeeded(),
		"failed", results.Failed())
	return results
}

func (c *Coordinator) analyze(ctx context.Context, req PageRequest) Result {
	log := c.log.With("page_id", req.PageID, "provider", c.capability.Name())
	start := time.Now()
	res := Result{PageID: req.PageID}

	prompt := BuildPagePrompt(req)
	var lastErr error
	for attempt := range c.cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		if attempt > 0 {
			delay := retryDelay(lastErr, attempt-1, c.backoff)
			log.Warn("retryable enhancement error", "attempt", attempt, "delay", delay, "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
		res.Attempts++

		a, err := c.call(ctx, prompt)
		if err == nil {
			res.Status = StatusSucceeded
			res.Analysis = a
			res.Duration = time.Since(start)
			return res
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}

	reason := Classify(lastErr)
	log.Warn("enhancement failed", "reason", reason, "attempts", res.Attempts, "error", lastErr)
	res.Status = StatusFailed
	res.Failure = &Failure{Reason: reason, Message: truncate(lastErr.Error(), 300)}
	res.Duration = time.Since(start)
	return res
}

// call runs one attempt under its own deadline. A reply that arrives after
// the deadline is discarded.
func (c *Coordinator) call(ctx context.Context, prompt string) (*Analysis, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	a, err := c.capability.AnalyzePage(callCtx, prompt)
	if c.stats != nil {
		c.stats.Record(time.Since(start).Milliseconds(), err == nil)
	}
	if cerr := callCtx.Err(); cerr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}
	if err := ValidateAnalysis(a); err != nil {
		return nil, err
	}
	return a, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unavailable returns a failed result for every page. It is used when a
// credential was supplied but the capability could not be constructed.
func Unavailable(pages []PageRequest, cause error) Results {
	msg := "enhancement provider unavailable"
	if cause != nil {
		msg = truncate(cause.Error(), 300)
	}
	reason := ReasonUnavailable
	var authErr *AuthError
	if errors.As(cause, &authErr) {
		reason = ReasonAuth
	}
	results := make(Results, len(pages))
	for _, p := range pages {
		results[p.PageID] = Result{
			PageID:  p.PageID,
			Status:  StatusFailed,
			Failure: &Failure{Reason: reason, Message: msg},
		}
	}
	return results
}

package enhance

import (
	"context"
	"errors"
)

type fallback struct {
	primary   Capability
	secondary Capability
}

// WithFallback returns a capability that asks secondary when primary fails.
// Cancellation and deadline errors are returned as-is. Either argument may
// be nil.
func WithFallback(primary, secondary Capability) Capability {
	switch {
	case primary == nil:
		return secondary
	case secondary == nil:
		return primary
	}
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *fallback) AnalyzePage(ctx context.Context, prompt string) (*Analysis, error) {
	a, err := f.primary.AnalyzePage(ctx, prompt)
	if err == nil {
		return a, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	a, serr := f.secondary.AnalyzePage(ctx, prompt)
	if serr != nil {
		return nil, errors.Join(err, serr)
	}
	return a, nil
}

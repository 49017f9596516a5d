package enhance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

type stubCapability struct {
	name  string
	a     *Analysis
	err   error
	calls int
}

func (s *stubCapability) Name() string { return s.name }

func (s *stubCapability) AnalyzePage(ctx context.Context, prompt string) (*Analysis, error) {
	s.calls++
	return s.a, s.err
}

func TestWithFallback_UsesSecondaryOnFailure(t *testing.T) {
	primary := &stubCapability{name: "groq", err: &RetryableError{StatusCode: 503}}
	secondary := &stubCapability{name: "gemini", a: validAnalysis("/x")}
	c := WithFallback(primary, secondary)

	a, err := c.AnalyzePage(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil || secondary.calls != 1 {
		t.Errorf("expected secondary to answer, calls=%d", secondary.calls)
	}
	if c.Name() != "groq+gemini" {
		t.Errorf("unexpected name %q", c.Name())
	}
}

func TestWithFallback_PrimarySuccessSkipsSecondary(t *testing.T) {
	primary := &stubCapability{name: "groq", a: validAnalysis("/x")}
	secondary := &stubCapability{name: "gemini"}
	if _, err := WithFallback(primary, secondary).AnalyzePage(context.Background(), "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secondary.calls != 0 {
		t.Errorf("expected secondary untouched, got %d calls", secondary.calls)
	}
}

func TestWithFallback_CancellationNotRetried(t *testing.T) {
	primary := &stubCapability{name: "groq", err: context.Canceled}
	secondary := &stubCapability{name: "gemini", a: validAnalysis("/x")}
	_, err := WithFallback(primary, secondary).AnalyzePage(context.Background(), "p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if secondary.calls != 0 {
		t.Errorf("expected no fallback after cancellation, got %d calls", secondary.calls)
	}
}

func TestWithFallback_BothFail(t *testing.T) {
	primary := &stubCapability{name: "groq", err: &AuthError{Provider: "groq", StatusCode: 401}}
	secondary := &stubCapability{name: "gemini", err: &RetryableError{StatusCode: 429}}
	_, err := WithFallback(primary, secondary).AnalyzePage(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("expected joined error to keep the primary cause, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("expected joined error to stay retryable")
	}
}

func TestWithFallback_NilSides(t *testing.T) {
	s := &stubCapability{name: "only"}
	if WithFallback(nil, s) != Capability(s) || WithFallback(s, nil) != Capability(s) {
		t.Error("expected the non-nil capability to be returned as-is")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Reason
	}{
		{nil, ""},
		{context.Canceled, ReasonCanceled},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), ReasonTimeout},
		{&AuthError{Provider: "x"}, ReasonAuth},
		{&RetryableError{StatusCode: 429}, ReasonRateLimited},
		{&RetryableError{StatusCode: 500}, ReasonUpstream},
		{fmt.Errorf("%w: bad", ErrMalformedResponse), ReasonMalformedResponse},
		{fmt.Errorf("dial: %w", timeoutErr{}), ReasonTimeout},
		{&Failure{Reason: ReasonUnavailable, Message: "x"}, ReasonUnavailable},
		{errors.New("boom"), ReasonUpstream},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("Classify(%v): expected %q, got %q", tc.err, tc.want, got)
		}
	}
}

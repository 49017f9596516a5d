// Package enhance runs the optional per-page AI analysis. Every page gets
// exactly one Result; a failed call never affects any other page.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Status is the outcome of enhancing one page.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Analysis is the AI-derived description of one page.
type Analysis struct {
	Route          string      `json:"suggested_route"`
	Purpose        string      `json:"page_purpose"`
	AppSummary     string      `json:"app_summary"`
	UserStories    []string    `json:"user_stories"`
	UserFlows      []string    `json:"user_flows"`
	Interactions   []string    `json:"user_interactions"`
	ConnectedPages []string    `json:"connected_pages"`
	KeyComponents  []string    `json:"key_components"`
	Priority       string      `json:"implementation_priority"`
	DeveloperNotes []string    `json:"developer_notes"`
	Feature        FeatureSpec `json:"feature_spec"`
	Stack          TechHints   `json:"tech_stack"`
}

// FeatureSpec describes the feature a page implements.
type FeatureSpec struct {
	Name               string   `json:"feature_name"`
	Description        string   `json:"description"`
	Requirements       []string `json:"technical_requirements"`
	APIEndpoints       []string `json:"api_endpoints_needed"`
	DataModels         []string `json:"database_models"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// TechHints are the technologies the analysis suggests for a page.
type TechHints struct {
	Frontend []string `json:"frontend"`
	Backend  []string `json:"backend"`
	Database []string `json:"database"`
	Tools    []string `json:"additional_tools"`
}

// Reason classifies why an enhancement call failed.
type Reason string

const (
	ReasonTimeout           Reason = "timeout"
	ReasonRateLimited       Reason = "rate_limited"
	ReasonMalformedResponse Reason = "malformed_response"
	ReasonAuth              Reason = "auth"
	ReasonUpstream          Reason = "upstream"
	ReasonCanceled          Reason = "canceled"
	ReasonUnavailable       Reason = "unavailable"
)

// Failure is recorded on a failed page result.
type Failure struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Reason, f.Message)
}

// Result is the enhancement outcome for one page. Analysis is set iff
// Status is StatusSucceeded; Failure is set iff Status is StatusFailed.
type Result struct {
	PageID   string        `json:"page_id"`
	Status   Status        `json:"status"`
	Analysis *Analysis     `json:"analysis,omitempty"`
	Failure  *Failure      `json:"failure,omitempty"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

// Results maps page id to that page's result.
type Results map[string]Result

// Succeeded returns the number of pages with an analysis.
func (rs Results) Succeeded() int {
	n := 0
	for _, r := range rs {
		if r.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the number of pages whose call failed.
func (rs Results) Failed() int {
	n := 0
	for _, r := range rs {
		if r.Status == StatusFailed {
			n++
		}
	}
	return n
}

// ErrMalformedResponse marks a provider reply that could not be decoded into
// an Analysis or did not pass validation.
var ErrMalformedResponse = errors.New("malformed analysis response")

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// AuthError means the provider rejected the credential.
type AuthError struct {
	Provider   string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s rejected credential (status %d)", e.Provider, e.StatusCode)
}

// Classify maps an enhancement error to a failure reason.
func Classify(err error) Reason {
	if err == nil {
		return ""
	}
	var (
		retryErr *RetryableError
		authErr  *AuthError
		failure  *Failure
		netErr   net.Error
	)
	switch {
	case errors.As(err, &failure):
		return failure.Reason
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &authErr):
		return ReasonAuth
	case errors.As(err, &retryErr):
		if retryErr.StatusCode == 429 {
			return ReasonRateLimited
		}
		return ReasonUpstream
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformedResponse
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	default:
		return ReasonUpstream
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return clip(s, n) + "..."
}

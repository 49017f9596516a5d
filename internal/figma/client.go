// Package figma fetches design files from the Figma REST API.
package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/figdoc/internal/designtree"
)

// DefaultBaseURL is the public Figma API.
const DefaultBaseURL = "https://api.figma.com"

// ErrInvalidLink is returned when a link carries no recognizable file key.
var ErrInvalidLink = errors.New("invalid figma link: expected https://www.figma.com/{file,design,make}/{key}/...")

// ErrEmptyToken is returned when GetFile is called without a token.
var ErrEmptyToken = errors.New("figma access token cannot be empty")

// ErrorKind classifies a non-200 API response.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindRateLimited  ErrorKind = "rate_limited"
	KindUpstream     ErrorKind = "upstream"
)

// APIError is a classified failure from the Figma API.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
	RetryAfter time.Duration // only for KindRateLimited
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("figma %s (status %d)", e.Kind, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	return msg
}

// ParseFileKey extracts the file key from a Figma URL. The first of the
// file, design and make path markers that is followed by a segment wins.
func ParseFileKey(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	parts := strings.Split(u.Path, "/")
	for _, marker := range []string{"file", "design", "make"} {
		for i, p := range parts {
			if p == marker && i+1 < len(parts) && parts[i+1] != "" {
				return parts[i+1], nil
			}
		}
	}
	return "", ErrInvalidLink
}

// Client communicates with the Figma HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetFile downloads the file document for key and converts it to a Source.
func (c *Client) GetFile(ctx context.Context, key, token string) (*designtree.Source, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	if !strings.HasPrefix(token, "figd_") {
		c.log.Warn("figma token format may be invalid", "expected_prefix", "figd_")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/files/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("X-Figma-Token", token)

	c.log.Info("fetching figma file", "file_key", key)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		apiErr := classify(resp, respBody)
		c.log.Warn("figma request failed", "file_key", key, "status", resp.StatusCode, "kind", apiErr.Kind)
		return nil, apiErr
	}

	var f designtree.File
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode file %s: %w", key, errors.Join(designtree.ErrMalformedInput, err))
	}
	return designtree.FromFile(&f)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func classify(resp *http.Response, body []byte) *APIError {
	e := &APIError{StatusCode: resp.StatusCode, Detail: errDetail(body)}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case http.StatusForbidden:
		e.Kind = KindForbidden
	case http.StatusNotFound:
		e.Kind = KindNotFound
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	default:
		e.Kind = KindUpstream
	}
	return e
}

// errDetail pulls the "err" field Figma puts in error bodies, falling back
// to the raw text.
func errDetail(body []byte) string {
	var payload struct {
		Err string `json:"err"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Err != "" {
		return payload.Err
	}
	return strings.TrimSpace(string(body))
}

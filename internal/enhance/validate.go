package enhance

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`forget\s+(everything|all)|new\s+instructions)`,
)

var validPriorities = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
}

const (
	maxListItems = 12
	maxItemLen   = 300
	maxProseLen  = 1200
)

// ParseAnalysis decodes a provider reply into an Analysis and validates it.
func ParseAnalysis(raw string) (*Analysis, error) {
	text := stripCodeBlock(raw)
	var a Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedResponse, err, truncate(text, 200))
	}
	if err := ValidateAnalysis(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ValidateAnalysis rejects analyses without a route or purpose, or with text
// that looks like prompt injection. List fields are trimmed and capped, and
// the priority is normalized to high, medium or low.
func ValidateAnalysis(a *Analysis) error {
	if a == nil {
		return fmt.Errorf("%w: empty analysis", ErrMalformedResponse)
	}

	a.Route = strings.TrimSpace(a.Route)
	if a.Route == "" {
		return fmt.Errorf("%w: missing suggested_route", ErrMalformedResponse)
	}
	if !strings.HasPrefix(a.Route, "/") {
		a.Route = "/" + a.Route
	}
	if strings.ContainsAny(a.Route, " \t\n") {
		return fmt.Errorf("%w: route %q contains whitespace", ErrMalformedResponse, a.Route)
	}

	a.Purpose = strings.TrimSpace(a.Purpose)
	if len(a.Purpose) < 3 || len(a.Purpose) > maxProseLen {
		return fmt.Errorf("%w: page_purpose length %d", ErrMalformedResponse, len(a.Purpose))
	}
	a.AppSummary = clip(strings.TrimSpace(a.AppSummary), maxProseLen)

	p := strings.ToLower(strings.TrimSpace(a.Priority))
	if !validPriorities[p] {
		p = "medium"
	}
	a.Priority = p

	lists := []*[]string{
		&a.UserStories, &a.UserFlows, &a.Interactions, &a.ConnectedPages,
		&a.KeyComponents, &a.DeveloperNotes,
		&a.Feature.Requirements, &a.Feature.APIEndpoints, &a.Feature.DataModels, &a.Feature.AcceptanceCriteria,
		&a.Stack.Frontend, &a.Stack.Backend, &a.Stack.Database, &a.Stack.Tools,
	}
	for _, l := range lists {
		*l = cleanList(*l)
	}
	a.Feature.Name = clip(strings.TrimSpace(a.Feature.Name), maxItemLen)
	a.Feature.Description = clip(strings.TrimSpace(a.Feature.Description), maxProseLen)

	for _, s := range a.prose() {
		if injectionPattern.MatchString(s) {
			return fmt.Errorf("%w: suspicious instruction text", ErrMalformedResponse)
		}
	}
	return nil
}

func (a *Analysis) prose() []string {
	out := []string{a.Purpose, a.AppSummary, a.Feature.Name, a.Feature.Description}
	out = append(out, a.UserStories...)
	out = append(out, a.UserFlows...)
	out = append(out, a.DeveloperNotes...)
	return out
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, clip(s, maxItemLen))
		if len(out) == maxListItems {
			break
		}
	}
	return out
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

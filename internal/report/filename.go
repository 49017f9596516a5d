package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9-]`)
	dashRunsRe = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = dashRunsRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}

// OutputFilename names the rendered report: <project-slug>_<unix seconds>.pdf.
func OutputFilename(project string, t time.Time) string {
	return OutputFilenameExt(project, t, "pdf")
}

// OutputFilenameExt is OutputFilename with a different extension.
func OutputFilenameExt(project string, t time.Time, ext string) string {
	slug := Slugify(project)
	if slug == "" {
		slug = "design"
	}
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s_%d.%s", slug, t.Unix(), ext)
}

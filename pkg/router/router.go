// pkg/router/router.go
package router

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	extensionPattern = regexp.MustCompile(`\.(gz|csv|zip)$`)
	yearMonthPattern = regexp.MustCompile(`-(\d{4})-(\d{2})$`)
	yearPattern      = regexp.MustCompile(`-(\d{4})$`)
	datePattern      = regexp.MustCompile(`^(\d{4})-(\d{2})-\d{2}`)
)

// Router derives destination partition (index) names. A file whose name
// encodes a period is assumed homogeneous for that granularity, so the
// filename always wins over per-record dates.
type Router struct {
	prefix string
	logger *zap.Logger
}

// NewRouter creates a router for the given index name prefix.
func NewRouter(prefix string, logger *zap.Logger) *Router {
	return &Router{
		prefix: prefix,
		logger: logger,
	}
}

// Prefix returns the configured index name prefix.
func (r *Router) Prefix() string {
	return r.prefix
}

// YearMonthFromFilename extracts the trailing year and month embedded in a
// data filename, after repeatedly stripping recognized extensions
// (multi-extension names like flights-2024-07.csv.gz are common). Either or
// both results may be empty.
func YearMonthFromFilename(path string) (year, month string) {
	basename := strings.ToLower(filepath.Base(path))

	for {
		stripped := extensionPattern.ReplaceAllString(basename, "")
		if stripped == basename {
			break
		}
		basename = stripped
	}

	if m := yearMonthPattern.FindStringSubmatch(basename); len(m) >= 3 {
		return m[1], m[2]
	}

	if m := yearPattern.FindStringSubmatch(basename); len(m) >= 2 {
		return m[1], ""
	}

	return "", ""
}

// IndexName resolves the destination index for one document. The filename
// period takes precedence; otherwise the document timestamp's year is used
// (never its month, to avoid accidental high cardinality when the filename
// gives no hint). An empty result means the row has no determinable year and
// must be skipped.
func (r *Router) IndexName(timestamp, fileYear, fileMonth string) string {
	if fileYear != "" && fileMonth != "" {
		return fmt.Sprintf("%s-%s-%s", r.prefix, fileYear, fileMonth)
	}

	if fileYear != "" {
		return fmt.Sprintf("%s-%s", r.prefix, fileYear)
	}

	if timestamp == "" {
		return ""
	}

	if m := datePattern.FindStringSubmatch(timestamp); len(m) >= 2 {
		return fmt.Sprintf("%s-%s", r.prefix, m[1])
	}

	r.logger.Debug("Unable to parse timestamp for routing", zap.String("timestamp", timestamp))
	return ""
}

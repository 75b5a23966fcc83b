package featureflags

import (
	"os"
	"strings"
)

const (
	// AIStories enables calls to the hosted model; off means the heuristic generator only
	AIStories = "AI_STORIES"
	// ReviewFeed exposes the websocket review feed
	ReviewFeed = "REVIEW_FEED"
	// PDFCache caches rendered story PDFs
	PDFCache = "PDF_CACHE"
)

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	return EnabledOr(name, false)
}

// EnabledOr is Enabled with a default for unset flags
func EnabledOr(name string, def bool) bool {
	v, ok := os.LookupEnv("FLAG_" + strings.ToUpper(name))
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

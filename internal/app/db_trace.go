package app

import (
	"regexp"
	"strings"
)

// Recompute and snapshot queries can carry long IN lists; the trace
// attribute keeps a readable prefix, not the whole statement.
const maxTracedQueryLength = 512

var collapseWhitespace = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return trimmed
	}

	flattened := collapseWhitespace.ReplaceAllString(trimmed, " ")
	if len(flattened) > maxTracedQueryLength {
		return flattened[:maxTracedQueryLength] + "..."
	}
	return flattened
}

package athlete

import (
	"strings"

	"github.com/courtside/ranking/internal/platform/textutil"
)

const (
	similarityExact      = 100
	similarityDiacritics = 95
	// SimilarityThreshold is the score at or above which two names are
	// treated as duplicate candidates.
	SimilarityThreshold = 60

	minMatchedTokens = 2
	minTokenLength   = 3
)

// Similarity scores how likely two athlete names refer to the same person,
// from 0 (unrelated) to 100 (identical). Exact match after trim/lowercase
// scores 100; match after additionally stripping diacritics scores 95.
// Otherwise both names are tokenized into words of at least three characters
// and scored by equal-or-prefix token overlap; scores below the threshold, or
// with fewer than two matched tokens, collapse to 0.
func Similarity(nameA, nameB string) int {
	foldedA := textutil.Fold(nameA)
	foldedB := textutil.Fold(nameB)
	if foldedA == "" || foldedB == "" {
		return 0
	}
	if foldedA == foldedB {
		return similarityExact
	}

	strippedA := textutil.FoldStripped(nameA)
	strippedB := textutil.FoldStripped(nameB)
	if strippedA == strippedB {
		return similarityDiacritics
	}

	tokensA := nameTokens(strippedA)
	tokensB := nameTokens(strippedB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	matched := 0
	for _, tokenA := range tokensA {
		if tokenMatches(tokenA, tokensB) {
			matched++
		}
	}

	longest := len(tokensA)
	if len(tokensB) > longest {
		longest = len(tokensB)
	}
	score := matched * 100 / longest

	if matched < minMatchedTokens || score < SimilarityThreshold {
		return 0
	}
	return score
}

func nameTokens(folded string) []string {
	fields := strings.Fields(folded)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) >= minTokenLength {
			out = append(out, field)
		}
	}
	return out
}

func tokenMatches(token string, candidates []string) bool {
	for _, candidate := range candidates {
		if token == candidate ||
			strings.HasPrefix(candidate, token) ||
			strings.HasPrefix(token, candidate) {
			return true
		}
	}
	return false
}

package core

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance is the largest edit distance still offered as a typo fix.
const maxSuggestDistance = 3

// Suggest returns the candidate closest to s, compared case-insensitively,
// if it is within a few edits.
func Suggest(s string, candidates []string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// Package suggest finds near matches for user provided names, used to attach
// a "did you mean" hint to unknown resource types and addresses.
package suggest

import "github.com/agext/levenshtein"

// String returns the candidate closest to want, or an empty string if no
// candidate is close enough.
//
// The allowed edit distance scales with the length of want, so short names
// only match near-exact candidates. The heuristic may change; callers should
// only use the result as a hint.
func String(want string, candidates []string) string {
	maxDist := len(want) / 5
	if maxDist == 0 {
		maxDist = 1
	}

	best := ""
	dist := maxDist + 1
	for _, cand := range candidates {
		if want == cand {
			return want
		}
		if d := levenshtein.Distance(want, cand, nil); d < dist {
			best = cand
			dist = d
		}
	}
	if dist > maxDist {
		return ""
	}
	return best
}

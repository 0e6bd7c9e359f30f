package ui

import (
	"sort"
	"strings"
)

// MaxSuggestionDistance is the largest edit distance offered as a
// suggestion.
const MaxSuggestionDistance = 3

// Suggest returns up to max candidates within MaxSuggestionDistance edits
// of target, closest first. Matching ignores case; ties keep candidate
// order.
//
// Example:
//
//	Suggest("Shop::Itme", []string{"Shop::Item", "Shop::Order"}, 3)
//	// Returns: ["Shop::Item"]
func Suggest(target string, candidates []string, max int) []string {
	type match struct {
		value    string
		distance int
	}

	target = strings.ToLower(target)
	var matches []match
	for _, c := range candidates {
		if d := EditDistance(target, strings.ToLower(c)); d <= MaxSuggestionDistance {
			matches = append(matches, match{c, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, max)
	for i := 0; i < len(matches) && i < max; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// EditDistance returns the Levenshtein distance between a and b, in
// bytes.
func EditDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(first int, rest ...int) int {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}
	return m
}

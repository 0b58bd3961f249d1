package errz

import (
	"sort"
	"strings"
)

// MaxSuggestions is the maximum number of suggestions to return.
const MaxSuggestions = 3

// SuggestSimilar returns up to MaxSuggestions candidates within a small
// edit distance of target, closest first.
func SuggestSimilar(target string, candidates []string) []string {
	if target == "" {
		return nil
	}
	threshold := 3
	if len(target) <= 3 {
		threshold = 1
	} else if len(target) <= 5 {
		threshold = 2
	}

	type scored struct {
		value    string
		distance int
	}
	var found []scored
	seen := map[string]bool{}
	for _, candidate := range candidates {
		if candidate == "" || candidate == target || seen[candidate] {
			continue
		}
		seen[candidate] = true
		if d := levenshtein(strings.ToLower(target), strings.ToLower(candidate)); d <= threshold {
			found = append(found, scored{candidate, d})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].value < found[j].value
	})
	if len(found) > MaxSuggestions {
		found = found[:MaxSuggestions]
	}
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.value
	}
	return out
}

// FormatSuggestions renders suggestions as a hint, e.g. "did you mean $count?".
// The prefix is prepended to each suggestion.
func FormatSuggestions(prefix string, suggestions []string) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "did you mean " + prefix + suggestions[0] + "?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = prefix + s
	}
	return "did you mean one of: " + strings.Join(quoted, ", ") + "?"
}

func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) > len(br) {
		ar, br = br, ar
	}
	prev := make([]int, len(ar)+1)
	curr := make([]int, len(ar)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(br); j++ {
		curr[0] = j
		for i := 1; i <= len(ar); i++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ar)]
}

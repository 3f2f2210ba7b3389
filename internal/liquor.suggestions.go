package internal

import (
	"sort"
	"strings"
)

// SuggestNames returns up to limit candidates close to target by edit
// distance, closest first. Ties keep candidate order.
func SuggestNames(target string, candidates []string, limit int) []string {
	if len(candidates) == 0 || limit <= 0 || target == "" {
		return nil
	}

	maxDistance := len([]rune(target)) / 2
	if maxDistance < 1 {
		maxDistance = 1
	}
	if maxDistance > SuggestionDistance {
		maxDistance = SuggestionDistance
	}

	type scored struct {
		name     string
		distance int
	}
	var similar []scored
	lower := strings.ToLower(target)
	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		if d := editDistance(lower, strings.ToLower(candidate)); d <= maxDistance {
			similar = append(similar, scored{name: candidate, distance: d})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].distance < similar[j].distance
	})

	out := make([]string, 0, limit)
	for i := 0; i < len(similar) && i < limit; i++ {
		out = append(out, similar[i].name)
	}
	return out
}

// FormatSuggestions renders suggestions as a message suffix, e.g.
// ". Did you mean 'upcase' or 'downcase'?"
func FormatSuggestions(suggestions []string) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return ". Did you mean '" + suggestions[0] + "'?"
	}

	var sb strings.Builder
	sb.WriteString(". Did you mean ")
	for i, s := range suggestions {
		if i > 0 {
			if i == len(suggestions)-1 {
				sb.WriteString(" or ")
			} else {
				sb.WriteString(", ")
			}
		}
		sb.WriteString("'" + s + "'")
	}
	sb.WriteString("?")
	return sb.String()
}

// editDistance is the Levenshtein distance between a and b, over runes
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

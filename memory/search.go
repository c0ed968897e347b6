package memory

import "strings"

// DefaultSearchLimit caps recall results when the caller gives no limit.
const DefaultSearchLimit = 5

func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// matchScore is the fraction of terms found in text. With no terms every
// text matches with score 1.
func matchScore(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 1
	}
	text = strings.ToLower(text)
	hits := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

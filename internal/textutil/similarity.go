package textutil

import "github.com/antzucaro/matchr"

// Similarity scores two comparison keys between 0 and 1 using Jaro-Winkler.
// Returns 0 when either key is empty.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(a, b, false)
}

// Candidate is one scored key considered by BestCandidate.
type Candidate struct {
	Index int
	Score float64
}

// BestCandidate returns the highest-scoring key in keys relative to target.
// Keys are scored in order and the earliest index wins ties. ok is false when
// no key reaches threshold.
func BestCandidate(target string, keys []string, threshold float64) (best Candidate, ok bool) {
	best.Index = -1
	for i, key := range keys {
		score := Similarity(target, key)
		if score > best.Score {
			best = Candidate{Index: i, Score: score}
		}
	}
	if best.Index < 0 || best.Score < threshold {
		return Candidate{Index: -1}, false
	}
	return best, true
}

// Package similarity implements the character-multiset distance used to
// reconcile catalog track titles with audio-source video titles.
package similarity

import "strings"

// Distance returns the bag-of-characters distance between a and b: all
// whitespace is stripped from both strings, then the distance is the sum over
// every character appearing in either string of the absolute difference of
// its occurrence counts.
//
// The distance is symmetric and ignores character order entirely, so anagrams
// score 0. Case, punctuation and diacritics are not normalized; differences
// there inflate the score. Runs in O(len(a)+len(b)).
func Distance(a, b string) int {
	countsA := charCounts(a)
	countsB := charCounts(b)

	distance := 0
	for r, n := range countsA {
		m := countsB[r]
		if n > m {
			distance += n - m
		} else {
			distance += m - n
		}
	}
	for r, m := range countsB {
		if _, ok := countsA[r]; !ok {
			distance += m
		}
	}

	return distance
}

func charCounts(s string) map[rune]int {
	counts := make(map[rune]int)
	for _, field := range strings.Fields(s) {
		for _, r := range field {
			counts[r]++
		}
	}
	return counts
}

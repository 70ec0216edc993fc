// Package levenshtein measures edit distance between domain names for
// typo detection.
package levenshtein

import "unicode/utf8"

// Distance returns the minimum number of single-character insertions,
// deletions and substitutions turning a into b. ASCII inputs, the
// common case for mail domains, are compared byte-wise; anything else
// falls back to rune comparison.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	if isASCII(a) && isASCII(b) {
		return distance([]byte(a), []byte(b))
	}
	return distance([]rune(a), []rune(b))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// distance runs the Wagner-Fischer recurrence over a single reused row,
// keeping memory at O(min(len(a), len(b))).
func distance[E byte | rune](a, b []E) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(a) == 0 {
		return len(b)
	}

	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(b); j++ {
		diag := row[0] // cost at (i-1, j-1) before this row overwrites it
		row[0] = j
		for i := 1; i <= len(a); i++ {
			sub := diag
			if a[i-1] != b[j-1] {
				sub++
			}
			diag = row[i]
			best := sub
			if ins := row[i-1] + 1; ins < best {
				best = ins
			}
			if del := row[i] + 1; del < best {
				best = del
			}
			row[i] = best
		}
	}
	return row[len(a)]
}

package textnorm

import "strings"

// Normalize trims leading/trailing whitespace and collapses internal runs of
// whitespace to a single space. Idempotent, and never lengthens its input.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Similarity returns a symmetric similarity ratio in [0,1] between two raw
// strings, based on the total length of their longest matching blocks
// (Ratcliff/Obershelp): 2*M/(len(a)+len(b)) where M counts aligned matching
// characters. Identical strings score 1.0; an empty side scores 0.0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	ra := []rune(a)
	rb := []rune(b)
	matched := matchingBlocks(ra, rb)
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingBlocks sums the lengths of the longest matching blocks found by
// recursively splitting around each longest common substring.
func matchingBlocks(a, b []rune) int {
	aLo, bLo, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlocks(a[:aLo], b[:bLo])
	total += matchingBlocks(a[aLo+size:], b[bLo+size:])
	return total
}

// longestMatch finds the longest common substring of a and b. Among equally
// long matches the earliest in a, then in b, wins.
func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] is the match length ending at a[i-1], b[j-1] for the current row.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestSize {
					bestSize = cur[j]
					bestA = i - cur[j]
					bestB = j - cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestA, bestB, bestSize
}

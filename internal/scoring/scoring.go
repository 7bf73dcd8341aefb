// Package scoring turns lexical data into a word complexity score.
package scoring

import (
	"math"
	"strconv"

	"word-complexity-api/internal/lexicon"
)

// Compute returns the average number of synonyms plus antonyms per
// definition entry, rounded to two decimals half away from zero. A word
// with no entries scores 0.
func Compute(entries []lexicon.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, e := range entries {
		total += len(e.Synonyms) + len(e.Antonyms)
	}
	return ratio2(int64(total), int64(len(entries)))
}

// ratio2 rounds n/d to two decimals using integer arithmetic so the
// half-way case is decided exactly. n and d must be non-negative, d > 0.
func ratio2(n, d int64) float64 {
	scaled := n * 100
	q, r := scaled/d, scaled%d
	if 2*r >= d {
		q++
	}
	return float64(q) / 100
}

// Round2 rounds x to two decimals half away from zero. The decision is made
// on the shortest decimal representation of x, so 2.675 rounds to 2.68 even
// though its binary value is slightly below the midpoint.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i+1:]
			break
		}
	}
	for len(frac) < 3 {
		frac += "0"
	}
	whole, err := strconv.ParseInt(intPart+frac[:2], 10, 64)
	if err != nil {
		// Too large to carry cents; already far beyond two-decimal precision.
		return x
	}
	if frac[2] >= '5' {
		whole++
	}
	out := float64(whole) / 100
	if neg {
		return -out
	}
	return out
}

// Package random scores byte strings by how likely they are to come from a
// uniform random source rather than natural or structured text. The approach
// follows the p_random probability model from ripsecrets: classify the
// candidate alphabet, then combine distinct-value, character-class and bigram
// probabilities into one score checked against fixed cutoffs.
package random

import (
	"math"
	"sync"
)

// Classifier decides whether a candidate string looks random enough to be a
// secret. It is safe for concurrent use; the only shared state is the
// append-only memoization cache for the combinatorial sub-computation.
type Classifier struct {
	minLength int
}

// NewClassifier returns a classifier rejecting anything shorter than
// minLength outright.
func NewClassifier(minLength int) *Classifier {
	return &Classifier{minLength: minLength}
}

// IsRandom reports whether data is likely a random token. Deterministic: the
// same bytes always produce the same answer.
func (c *Classifier) IsRandom(data []byte) bool {
	if len(data) < c.minLength {
		return false
	}

	// Alphabet and keyboard runs ("ABCDEF...", "12345...") slip through the
	// probability model: every byte is distinct and the class counts sit near
	// expectation. Catch them by their stepwise structure instead.
	if isSequentialRun(data) {
		return false
	}

	p := pRandom(data)
	if p < 1.0/1e5 {
		return false
	}

	// Pure-alphabetic strings are far more often natural words, so they get
	// a stricter cutoff.
	if !containsDigit(data) && p < 1.0/1e4 {
		return false
	}

	return true
}

func pRandom(data []byte) float64 {
	var base float64
	switch {
	case isHex(data):
		base = 16.0
	case isCapsAndDigits(data):
		base = 36.0
	default:
		base = 64.0
	}

	p := pRandomDistinctValues(data, base) * pRandomCharClass(data, base)

	// Bigram analysis only works reliably for the base64 alphabet.
	if base == 64.0 {
		p *= pRandomBigrams(data)
	}

	return p
}

// isSequentialRun reports whether at least two thirds of the adjacent byte
// pairs step by exactly one. A uniform random string over any of the three
// alphabets hits that ratio with negligible probability.
func isSequentialRun(data []byte) bool {
	if len(data) < 2 {
		return false
	}

	steps := 0
	for i := 0; i+1 < len(data); i++ {
		delta := int(data[i+1]) - int(data[i])
		if delta == 1 || delta == -1 {
			steps++
		}
	}
	return 3*steps >= 2*(len(data)-1)
}

func containsDigit(data []byte) bool {
	for _, b := range data {
		if b >= '0' && b <= '9' {
			return true
		}
	}
	return false
}

// isHex requires at least 16 bytes of pure hex digits; shorter strings carry
// too little signal to pin the alphabet down.
func isHex(data []byte) bool {
	if len(data) < 16 {
		return false
	}
	for _, b := range data {
		if !((b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')) {
			return false
		}
	}
	return true
}

func isCapsAndDigits(data []byte) bool {
	if len(data) < 16 {
		return false
	}
	for _, b := range data {
		if !((b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z')) {
			return false
		}
	}
	return true
}

// pRandomCharClass takes the binomial tail probability of the observed count
// per character sub-class and keeps the most surprising one.
func pRandomCharClass(data []byte, base float64) float64 {
	if base == 16.0 {
		return pRandomCharClassRange(data, '0', '9', base)
	}

	classes := [][2]byte{{'0', '9'}, {'A', 'Z'}}
	if base == 64.0 {
		classes = append(classes, [2]byte{'a', 'z'})
	}

	minP := math.Inf(1)
	for _, class := range classes {
		if p := pRandomCharClassRange(data, class[0], class[1], base); p < minP {
			minP = p
		}
	}
	return minP
}

func pRandomCharClassRange(data []byte, min byte, max byte, base float64) float64 {
	count := 0
	for _, b := range data {
		if b >= min && b <= max {
			count++
		}
	}

	classSize := float64(max-min) + 1
	return pBinomial(len(data), count, classSize/base)
}

// pBinomial sums the exact tail of the binomial distribution from the
// observed count outward. Terms are computed in log space via Lgamma so the
// sum stays finite for any n, where direct factorials would overflow float64
// past n = 170.
func pBinomial(n int, x int, p float64) float64 {
	lo, hi := x, n
	if float64(x) < float64(n)*p {
		lo, hi = 0, x
	}

	lnP := math.Log(p)
	lnQ := math.Log1p(-p)

	total := 0.0
	for i := lo; i <= hi; i++ {
		total += math.Exp(logChoose(n, i) + float64(i)*lnP + float64(n-i)*lnQ)
	}
	return total
}

func logChoose(n int, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

// commonBigrams holds adjacent byte pairs that show up in structured and
// natural strings (English fragments, paths, version numbers). A random
// base64 string hits these roughly at chance rate; natural text hits them
// far more often.
var commonBigrams = [...]string{
	"er", "te", "an", "en", "ma", "ke", "10", "at", "/m", "on",
	"09", "ti", "al", "io", ".h", "./", "..", "ra", "ht", "es",
	"or", "tm", "pe", "ml", "re", "in", "3/", "n3", "0F", "ok",
	"ey", "00", "80", "08", "ss", "07", "15", "81", "F3", "st",
}

var bigramSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(commonBigrams))
	for _, bg := range commonBigrams {
		set[bg] = struct{}{}
	}
	return set
}()

func pRandomBigrams(data []byte) float64 {
	hits := 0
	for i := 0; i+1 < len(data); i++ {
		if _, ok := bigramSet[string(data[i:i+2])]; ok {
			hits++
		}
	}

	return pBinomial(len(data)-1, hits, float64(len(bigramSet))/(64.0*64.0))
}

// pRandomDistinctValues is the probability that a uniform random string of
// this length over the given alphabet shows at most as many distinct byte
// values as observed. Heavy repetition drives this down.
func pRandomDistinctValues(data []byte, base float64) float64 {
	totalPossible := math.Pow(base, float64(len(data)))
	distinct := countDistinctValues(data)

	moreExtreme := 0.0
	for i := 1; i <= distinct; i++ {
		moreExtreme += numPossibleOutcomes(len(data), i, int(base))
	}

	return moreExtreme / totalPossible
}

func countDistinctValues(data []byte) int {
	var seen [256]bool
	count := 0
	for _, b := range data {
		if !seen[b] {
			seen[b] = true
			count++
		}
	}
	return count
}

// numPossibleOutcomes counts strings of numValues symbols using exactly
// numDistinct distinct values from an alphabet of size base.
func numPossibleOutcomes(numValues int, numDistinct int, base int) float64 {
	res := float64(base)
	for i := 1; i < numDistinct; i++ {
		res *= float64(base - i)
	}
	return res * numDistinctConfigurations(numValues, numDistinct)
}

func numDistinctConfigurations(numValues int, numDistinct int) float64 {
	if numDistinct == 1 || numDistinct == numValues {
		return 1.0
	}
	return numDistinctConfigurationsRec(numDistinct, 0, numValues-numDistinct)
}

type configKey struct {
	positions int
	position  int
	remaining int
}

// configCache memoizes the recursive configuration counts. Keys depend only
// on string lengths, never on buffer contents, so entries stay valid for the
// process lifetime and the cache is append-only.
var configCache sync.Map

func numDistinctConfigurationsRec(numPositions int, position int, remainingValues int) float64 {
	if remainingValues == 0 {
		return 1.0
	}

	key := configKey{numPositions, position, remainingValues}
	if cached, ok := configCache.Load(key); ok {
		return cached.(float64)
	}

	configs := 0.0
	if position+1 < numPositions {
		configs += numDistinctConfigurationsRec(numPositions, position+1, remainingValues)
	}
	configs += float64(position+1) * numDistinctConfigurationsRec(numPositions, position, remainingValues-1)

	configCache.Store(key, configs)
	return configs
}

// Package hashing normalises article text, derives the content hash used
// for exact-duplicate detection, and produces the MinHash signatures
// consumed by the near-duplicate index.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultShingleSize is k in the k-shingle scheme.
const DefaultShingleSize = 3

// NumPermutations is the number of MinHash permutations (num_perm).
const NumPermutations = 128

var (
	nonWordNonSpace = regexp.MustCompile(`[^\w\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// stopwords is a small fixed set excluded from normalised tokens.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "his": true, "how": true, "who": true, "its": true,
	"did": true, "yet": true, "too": true,
}

// Normalize lower-cases text, replaces non-word/non-space runs with a
// single space, collapses whitespace, and drops tokens of length <= 2 or
// in the stopword set.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	replaced := nonWordNonSpace.ReplaceAllString(lowered, " ")
	collapsed := whitespaceRun.ReplaceAllString(replaced, " ")
	collapsed = strings.TrimSpace(collapsed)

	tokens := strings.Split(collapsed, " ")
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) <= 2 || stopwords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// ContentHash returns the 256-bit hex digest of
// normalise(title) + " " + normalise(text).
func ContentHash(title, text string) string {
	combined := Normalize(title) + " " + Normalize(text)
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// Shingles produces k-token overlapping shingles of the normalised text.
// If the normalised text has fewer than k tokens, a single shingle equal
// to the whole normalised text is produced.
func Shingles(normalizedText string, k int) []string {
	if k <= 0 {
		k = DefaultShingleSize
	}
	tokens := strings.Fields(normalizedText)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) < k {
		return []string{strings.Join(tokens, " ")}
	}

	shingles := make([]string, 0, len(tokens)-k+1)
	for i := 0; i+k <= len(tokens); i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+k], " "))
	}
	return shingles
}

// Signature is a MinHash signature: NumPermutations minimum hash values
// over a shingle set.
type Signature [NumPermutations]uint64

// permSeeds are fixed per-permutation mixing constants, deterministic
// across runs so that signatures are comparable process to process.
var permSeeds = buildPermSeeds()

func buildPermSeeds() [NumPermutations]uint64 {
	var seeds [NumPermutations]uint64
	// Splitmix64-style deterministic stream; avoids any dependency on
	// math/rand seeding (which must not vary across runs here).
	state := uint64(0x9E3779B97F4A7C15)
	for i := range seeds {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		seeds[i] = z
	}
	return seeds
}

// MinHash computes the MinHash signature over a set of shingles.
func MinHash(shingles []string) Signature {
	var sig Signature
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	for _, s := range shingles {
		base := xxhash.Sum64String(s)
		for i, seed := range permSeeds {
			h := mix(base, seed)
			if h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

func mix(a, b uint64) uint64 {
	x := a ^ b
	x *= 0xFF51AFD7ED558CCD
	x ^= x >> 33
	x *= 0xC4CEB9FE1A85EC53
	x ^= x >> 33
	return x
}

// JaccardEstimate estimates the Jaccard similarity of two shingle sets
// from their MinHash signatures: the fraction of permutation slots where
// the two signatures agree.
func JaccardEstimate(a, b Signature) float64 {
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

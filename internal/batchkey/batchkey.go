// Package batchkey derives content-addressed job identifiers for word batches.
package batchkey

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Prefix namespaces batch keys when they are stored alongside other data.
const Prefix = "batch:"

// Length is the number of hex characters in a job id.
const Length = 16

var idPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// Derive fingerprints an already deduplicated and sorted word list. The
// result is the first Length hex characters of SHA-256 over the
// comma-joined words, so equal sets in canonical order always share a key.
func Derive(words []string) string {
	sum := sha256.Sum256([]byte(strings.Join(words, ",")))
	return hex.EncodeToString(sum[:])[:Length]
}

// Namespaced returns key under the batch: storage prefix.
func Namespaced(key string) string {
	return Prefix + ExtractID(key)
}

// ExtractID strips the batch: prefix. It does not validate the remainder.
func ExtractID(key string) string {
	return strings.TrimPrefix(key, Prefix)
}

// Valid reports whether id is exactly 16 lowercase hex characters.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// Normalize lower-cases id and reports whether the result is Valid.
func Normalize(id string) (string, bool) {
	lower := strings.ToLower(id)
	return lower, Valid(lower)
}

package batchkey

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sorted(words ...string) []string {
	out := append([]string(nil), words...)
	sort.Strings(out)
	return out
}

func TestDeriveFormat(t *testing.T) {
	key := Derive([]string{"happy", "sad"})
	require.Len(t, key, Length)
	assert.True(t, Valid(key), "key %q should be valid", key)

	sum := sha256.Sum256([]byte("happy,sad"))
	assert.Equal(t, hex.EncodeToString(sum[:])[:16], key)
}

func TestDeriveIsOrderIndependentAfterSorting(t *testing.T) {
	permutations := [][]string{
		{"apple", "banana", "cherry"},
		{"cherry", "apple", "banana"},
		{"banana", "cherry", "apple"},
	}
	want := Derive(sorted(permutations[0]...))
	for _, p := range permutations {
		assert.Equal(t, want, Derive(sorted(p...)), "permutation %v", p)
	}
}

func TestDeriveIsSensitiveToContent(t *testing.T) {
	sets := [][]string{
		{"happy"},
		{"happy", "sad"},
		{"Happy", "sad"},
		{"happy", "sad", "angry"},
		{"sad"},
		{"happy's"},
	}
	seen := map[string][]string{}
	for _, s := range sets {
		key := Derive(sorted(s...))
		prev, dup := seen[key]
		require.False(t, dup, "collision between %v and %v", prev, s)
		seen[key] = s
	}
}

func TestNamespacedAndExtractID(t *testing.T) {
	assert.Equal(t, "batch:0123456789abcdef", Namespaced("0123456789abcdef"))
	assert.Equal(t, "batch:0123456789abcdef", Namespaced("batch:0123456789abcdef"))
	assert.Equal(t, "0123456789abcdef", ExtractID("batch:0123456789abcdef"))
	assert.Equal(t, "0123456789abcdef", ExtractID("0123456789abcdef"))
	assert.Equal(t, "not-a-key", ExtractID("batch:not-a-key"))
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"0123456789abcdef":  true,
		"invalid":           false,
		"0123456789abcde":   false,
		"0123456789abcdef0": false,
		"0123456789abcdeg":  false,
		"0123456789ABCDEF":  false,
		"":                  false,
	}
	for id, want := range cases {
		assert.Equal(t, want, Valid(id), "Valid(%q)", id)
	}
}

func TestNormalizeAcceptsUpperCase(t *testing.T) {
	id, ok := Normalize("0123456789ABCDEF")
	assert.True(t, ok)
	assert.Equal(t, "0123456789abcdef", id)

	_, ok = Normalize("xyz")
	assert.False(t, ok)
}

package words

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"word-complexity-api/internal/apperr"
)

func TestParseJSONProcessesBatch(t *testing.T) {
	got, err := ParseJSON([]byte(`["happy","sad","happy"]`), Limits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"happy", "sad"}, got)
}

func TestParseJSONTrimsAndSorts(t *testing.T) {
	got, err := ParseJSON([]byte(`["  zebra ", "apple", "ice cream", "don't", "well-known", "Apple"]`), Limits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "apple", "don't", "ice cream", "well-known", "zebra"}, got)
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := ParseJSON([]byte(`["happy",`), Limits{})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestParseJSONValidationFailures(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"empty body":    {``, "Request body is required"},
		"blank body":    {"  \n", "Request body is required"},
		"object":        {`{"words":["a"]}`, "Request must be a JSON array of words"},
		"string":        {`"happy"`, "Request must be a JSON array of words"},
		"empty array":   {`[]`, "Array cannot be empty"},
		"number item":   {`["happy", 42]`, "Word at position 1 must be a string, got number"},
		"null item":     {`[null]`, "Word at position 0 must be a string, got null"},
		"invalid chars": {`["h@ppy"]`, "invalid format"},
		"digits":        {`["abc123"]`, "invalid format"},
		"blank word":    {`["   "]`, "empty word"},
		"too long":      {`["` + strings.Repeat("a", 51) + `"]`, "too long"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.body), Limits{})
			require.Error(t, err)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
			assert.Contains(t, strings.Join(apperr.DetailsOf(err), "\n"), tc.want)
		})
	}
}

func TestValidateLimits(t *testing.T) {
	tooMany := make([]string, 101)
	for i := range tooMany {
		tooMany[i] = "word"
	}
	_, err := Validate(tooMany, Limits{})
	require.Error(t, err)
	assert.Contains(t, apperr.DetailsOf(err)[0], "Maximum 100 allowed, got 101")

	exactly := tooMany[:100]
	got, err := Validate(exactly, Limits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"word"}, got)

	_, err = Validate([]string{"abc", "abcd"}, Limits{MaxWords: 5, MaxWordLength: 3})
	require.Error(t, err)
	details := apperr.DetailsOf(err)
	require.Len(t, details, 2)
	assert.Equal(t, "Contains invalid words", details[0])
	assert.Contains(t, details[1], "position 1")
}

func TestValidateMaxLengthBoundary(t *testing.T) {
	got, err := Validate([]string{strings.Repeat("a", 50)}, Limits{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestProcessIsOrderIndependent(t *testing.T) {
	assert.Equal(t, Process([]string{"b", "a", "c"}), Process([]string{"c", "b", "a", "b"}))
	assert.Equal(t, []string{}, Process(nil))
}

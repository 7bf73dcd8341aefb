package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultipleMeaningsAndDefinitions(t *testing.T) {
	body := []byte(`[
		{"word": "run", "meanings": [
			{"partOfSpeech": "verb",
			 "synonyms": ["sprint"],
			 "antonyms": [],
			 "definitions": [
				{"definition": "move fast", "synonyms": ["dash", "sprint"], "antonyms": ["walk"]},
				{"definition": "operate", "synonyms": [], "antonyms": []}
			 ]},
			{"partOfSpeech": "noun",
			 "synonyms": [1, "", "jog", null],
			 "definitions": [
				{"definition": "an act of running", "synonyms": "not-a-list"}
			 ]},
			{"partOfSpeech": "noun", "synonyms": ["ignored"]}
		]},
		{"word": "run", "meanings": [
			{"definitions": [{"synonyms": ["second-entry"]}]}
		]}
	]`)

	entries, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{"dash", "sprint"}, entries[0].Synonyms)
	assert.Equal(t, []string{"walk"}, entries[0].Antonyms)
	assert.Equal(t, []string{"sprint"}, entries[1].Synonyms)
	assert.Empty(t, entries[1].Antonyms)
	assert.Equal(t, []string{"jog"}, entries[2].Synonyms)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`[{"word":`))
	assert.Error(t, err)
}

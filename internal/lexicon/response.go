package lexicon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type apiEntry struct {
	Word     string       `json:"word"`
	Meanings []apiMeaning `json:"meanings"`
}

type apiMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []apiDefinition `json:"definitions"`
	Synonyms     json.RawMessage `json:"synonyms"`
	Antonyms     json.RawMessage `json:"antonyms"`
}

type apiDefinition struct {
	Definition string          `json:"definition"`
	Synonyms   json.RawMessage `json:"synonyms"`
	Antonyms   json.RawMessage `json:"antonyms"`
}

// Parse turns a raw API payload into definition entries. Only the first
// top-level entry is used. Each definition's own synonyms and antonyms are
// merged with its meaning's lists and deduplicated. Empty or non-array
// payloads yield no entries.
func Parse(body []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []Entry{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if len(raw) == 0 {
		return []Entry{}, nil
	}

	var first apiEntry
	if err := json.Unmarshal(raw[0], &first); err != nil {
		// A first element that is not an object has no meanings.
		return []Entry{}, nil
	}

	entries := []Entry{}
	for _, meaning := range first.Meanings {
		meaningSyn := stringItems(meaning.Synonyms)
		meaningAnt := stringItems(meaning.Antonyms)
		for _, def := range meaning.Definitions {
			entries = append(entries, Entry{
				Synonyms: unique(stringItems(def.Synonyms), meaningSyn),
				Antonyms: unique(stringItems(def.Antonyms), meaningAnt),
			})
		}
	}
	return entries, nil
}

// stringItems keeps the non-blank strings of a JSON array and ignores
// everything else, including a value that is not an array at all.
func stringItems(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func unique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

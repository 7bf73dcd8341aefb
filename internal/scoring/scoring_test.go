package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"word-complexity-api/internal/lexicon"
)

func entry(syn, ant int) lexicon.Entry {
	e := lexicon.Entry{Synonyms: []string{}, Antonyms: []string{}}
	for i := 0; i < syn; i++ {
		e.Synonyms = append(e.Synonyms, string(rune('a'+i)))
	}
	for i := 0; i < ant; i++ {
		e.Antonyms = append(e.Antonyms, string(rune('A'+i)))
	}
	return e
}

func TestComputeAveragesAcrossEntries(t *testing.T) {
	entries := []lexicon.Entry{
		{Synonyms: []string{"a", "b"}, Antonyms: []string{"c"}},
		{Synonyms: []string{"d"}, Antonyms: []string{"e", "f"}},
	}
	assert.Equal(t, 3.0, Compute(entries))
}

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Compute(nil))
	assert.Equal(t, 0.0, Compute([]lexicon.Entry{}))
}

func TestComputeEntriesWithoutWords(t *testing.T) {
	assert.Equal(t, 0.0, Compute([]lexicon.Entry{entry(0, 0), entry(0, 0)}))
}

func TestComputeRounding(t *testing.T) {
	cases := []struct {
		name    string
		entries []lexicon.Entry
		want    float64
	}{
		{"one third", []lexicon.Entry{entry(1, 0), entry(0, 0), entry(0, 0)}, 0.33},
		{"two thirds", []lexicon.Entry{entry(2, 0), entry(0, 0), entry(0, 0)}, 0.67},
		// 1/8 = 0.125 exactly: half rounds away from zero.
		{"exact half", []lexicon.Entry{entry(1, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0)}, 0.13},
		// 3/8 = 0.375 exactly.
		{"exact half upper", []lexicon.Entry{entry(3, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0), entry(0, 0)}, 0.38},
		{"whole", []lexicon.Entry{entry(3, 2)}, 5.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compute(tc.entries))
		})
	}
}

func TestRound2Boundaries(t *testing.T) {
	cases := map[float64]float64{
		0:       0,
		1.005:   1.01,
		2.675:   2.68,
		0.125:   0.13,
		0.124:   0.12,
		0.1249:  0.12,
		3.14159: 3.14,
		10:      10,
		-1.005:  -1.01,
		0.995:   1,
	}
	for in, want := range cases {
		assert.Equal(t, want, Round2(in), "Round2(%v)", in)
	}
}

package lexicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"word-complexity-api/internal/apperr"
)

const happyBody = `[{
	"word": "happy",
	"meanings": [{
		"partOfSpeech": "adjective",
		"definitions": [{
			"definition": "feeling or showing pleasure or contentment",
			"synonyms": ["joyful", "cheerful"],
			"antonyms": ["sad", "unhappy"]
		}],
		"synonyms": ["joyful", "cheerful", "glad"],
		"antonyms": ["sad", "unhappy", "miserable"]
	}]
}]`

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetchMergesMeaningAndDefinitionLists(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(happyBody))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL}, zap.NewNop())
	entries, err := c.Fetch(context.Background(), "happy")
	require.NoError(t, err)

	assert.Equal(t, "/happy", gotPath)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"joyful", "cheerful", "glad"}, entries[0].Synonyms)
	assert.Equal(t, []string{"sad", "unhappy", "miserable"}, entries[0].Antonyms)
}

func TestClientFetchEscapesWord(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/"}, zap.NewNop())
	_, err := c.Fetch(context.Background(), "ice cream")
	require.NoError(t, err)
	assert.Equal(t, "/ice cream", gotPath)
}

func TestClientFetchEmptyResponses(t *testing.T) {
	for name, body := range map[string]string{
		"empty array":  `[]`,
		"empty body":   ``,
		"object":       `{"title":"No Definitions Found"}`,
		"no meanings":  `[{"word":"x"}]`,
		"null element": `[null]`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, body)
			c := NewClient(Options{BaseURL: srv.URL}, zap.NewNop())

			entries, err := c.Fetch(context.Background(), "x")
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestClientFetchNonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		srv := newServer(t, status, `{"title":"nope"}`)
		c := NewClient(Options{BaseURL: srv.URL}, zap.NewNop())

		_, err := c.Fetch(context.Background(), "x")
		require.Error(t, err)
		assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "dictionary api error")
	}
}

func TestClientFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())
	_, err := c.Fetch(context.Background(), "slow")
	require.Error(t, err)
	assert.Equal(t, apperr.Timeout, apperr.KindOf(err))
	assert.True(t, apperr.IsTimeout(err))
}

func TestClientFetchRejectsOversizedBody(t *testing.T) {
	srv := newServer(t, http.StatusOK, happyBody)
	c := NewClient(Options{BaseURL: srv.URL, MaxBody: 16}, zap.NewNop())

	_, err := c.Fetch(context.Background(), "happy")
	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
}

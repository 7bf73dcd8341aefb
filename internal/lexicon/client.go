// Package lexicon fetches synonym and antonym data for single words from
// the Free Dictionary API.
package lexicon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"word-complexity-api/internal/apperr"
)

const (
	defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	defaultTimeout = 10 * time.Second
	defaultMaxBody = 2 * 1024 * 1024
)

// Entry is one definition of a word with its merged synonym and antonym lists.
type Entry struct {
	Synonyms []string `json:"synonyms"`
	Antonyms []string `json:"antonyms"`
}

// Source resolves a word to its definition entries.
type Source interface {
	Fetch(ctx context.Context, word string) ([]Entry, error)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	MaxBody int64
}

// Client talks to the dictionary HTTP API.
type Client struct {
	baseURL    string
	maxBody    int64
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient builds a Client with a bounded per-request timeout.
func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBody == 0 {
		opts.MaxBody = defaultMaxBody
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		maxBody:    opts.MaxBody,
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        log.Named("lexicon"),
	}
}

// Fetch returns the definition entries for word. Any non-2xx status is an
// error, including 404 for unknown words.
func (c *Client) Fetch(ctx context.Context, word string) ([]Entry, error) {
	const op = "lexicon.Fetch"

	reqURL := c.baseURL + "/" + url.PathEscape(word)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.E(apperr.Internal, op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("network error fetching word", zap.String("word", word), zap.Error(err))
		kind := apperr.Upstream
		if apperr.IsTimeout(err) {
			kind = apperr.Timeout
		}
		return nil, apperr.E(kind, op, fmt.Errorf("network error: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperr.Errorf(apperr.Upstream, op, "dictionary api error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, apperr.E(apperr.Upstream, op, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > c.maxBody {
		return nil, apperr.Errorf(apperr.Upstream, op, "response too large (>%d bytes)", c.maxBody)
	}

	entries, err := Parse(body)
	if err != nil {
		return nil, apperr.E(apperr.Upstream, op, err)
	}
	c.log.Debug("fetched word", zap.String("word", word), zap.Int("definitions", len(entries)))
	return entries, nil
}

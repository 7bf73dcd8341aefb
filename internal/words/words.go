// Package words validates and normalizes submitted word batches.
package words

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"word-complexity-api/internal/apperr"
)

// Defaults mirror the public API contract.
const (
	DefaultMaxWords      = 100
	DefaultMaxWordLength = 50
)

// Failure reasons reported per word.
const (
	ReasonEmpty         = "empty_word"
	ReasonTooLong       = "too_long"
	ReasonInvalidFormat = "invalid_format"
)

var wordPattern = regexp.MustCompile(`^[A-Za-z'\-\s]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("word", func(fl validator.FieldLevel) bool {
		return wordPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Limits bounds a batch.
type Limits struct {
	MaxWords      int
	MaxWordLength int
}

func (l Limits) withDefaults() Limits {
	if l.MaxWords <= 0 {
		l.MaxWords = DefaultMaxWords
	}
	if l.MaxWordLength <= 0 {
		l.MaxWordLength = DefaultMaxWordLength
	}
	return l
}

// Invalid describes one rejected word.
type Invalid struct {
	Position int    `json:"position"`
	Word     string `json:"word"`
	Reason   string `json:"reason"`
}

func (i Invalid) String() string {
	return fmt.Sprintf("word at position %d (%q) is %s", i.Position, i.Word, strings.ReplaceAll(i.Reason, "_", " "))
}

// ParseJSON decodes a JSON array body and returns the processed batch.
// Malformed JSON is InvalidInput; every other rule violation is Validation
// with a summary in the error details.
func ParseJSON(body []byte, limits Limits) ([]string, error) {
	const op = "words.ParseJSON"

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, apperr.Invalid(op, "Validation failed", "Request body is required")
	}

	var parsed any
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return nil, &apperr.Error{Kind: apperr.InvalidInput, Op: op, Message: "Invalid JSON format", Err: err}
	}
	items, ok := parsed.([]any)
	if !ok {
		return nil, apperr.Invalid(op, "Validation failed", "Request must be a JSON array of words")
	}

	var summary []string
	raw := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			summary = append(summary, fmt.Sprintf("Word at position %d must be a string, got %s", i, jsonType(item)))
			continue
		}
		raw = append(raw, s)
	}
	if len(summary) > 0 {
		return nil, apperr.Invalid(op, "Validation failed", summary...)
	}
	return Validate(raw, limits)
}

// Validate checks raw words against limits and returns the processed batch:
// trimmed, deduplicated, and sorted.
func Validate(raw []string, limits Limits) ([]string, error) {
	const op = "words.Validate"
	limits = limits.withDefaults()

	if err := validate.Var(raw, fmt.Sprintf("min=1,max=%d", limits.MaxWords)); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			return nil, apperr.Invalid(op, "Validation failed",
				fmt.Sprintf("Too many words. Maximum %d allowed, got %d", limits.MaxWords, len(raw)))
		}
		return nil, apperr.Invalid(op, "Validation failed", "Array cannot be empty")
	}

	trimmed := make([]string, len(raw))
	var invalid []Invalid
	tag := fmt.Sprintf("required,max=%d,word", limits.MaxWordLength)
	for i, w := range raw {
		trimmed[i] = strings.TrimSpace(w)
		if reason := check(trimmed[i], tag); reason != "" {
			invalid = append(invalid, Invalid{Position: i, Word: w, Reason: reason})
		}
	}
	if len(invalid) > 0 {
		details := make([]string, 0, len(invalid)+1)
		details = append(details, "Contains invalid words")
		for _, iv := range invalid {
			details = append(details, iv.String())
		}
		return nil, apperr.Invalid(op, "Validation failed", details...)
	}
	return Process(trimmed), nil
}

func check(word, tag string) string {
	err := validate.Var(word, tag)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ReasonInvalidFormat
	}
	switch verrs[0].Tag() {
	case "required":
		return ReasonEmpty
	case "max":
		return ReasonTooLong
	default:
		return ReasonInvalidFormat
	}
}

// Process deduplicates and sorts words. Deduplication is exact, so words
// differing only in case are kept apart.
func Process(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

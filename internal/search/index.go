// Package search finds near-duplicate flashcards. It builds an immutable,
// in-memory index over short texts (card fronts) and ranks them against a
// query by token Jaccard similarity: |Q ∩ D| / |Q ∪ D|.
//
// Tokenization is Unicode-aware and case-insensitive; stop words can be
// removed with WithStopwords. Indexes are read-only after construction and
// safe for concurrent use. Ties are broken deterministically.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Result is a ranked text with its similarity score in (0, 1].
type Result struct {
	Text  string
	Score float64
}

// Index ranks stored texts against a query.
type Index interface {
	TopK(query string, k int) []Result
}

type Option func(*config)

type config struct {
	minRunes  int
	stopwords map[string]struct{}
	maxDocs   int
}

// WithMinRunes skips texts shorter than n runes.
func WithMinRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minRunes = n
		}
	}
}

// WithStopwords drops the given words from every token set.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps the number of indexed texts; the first n are kept.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

type doc struct {
	text   string
	tokens map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index over texts. Blank texts and texts without any
// word token are skipped.
func NewIndex(texts []string, opts ...Option) Index {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	docs := make([]doc, 0, len(texts))
	for _, raw := range texts {
		t := strings.Join(strings.Fields(raw), " ")
		if t == "" || utf8.RuneCountInString(t) < cfg.minRunes {
			continue
		}
		toks := tokenize(t, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{text: t, tokens: toks})
		if cfg.maxDocs > 0 && len(docs) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: docs}
}

// TopK returns up to k texts with a positive score, best first. k <= 0
// means 1.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 {
		return nil
	}
	if k <= 0 {
		k = 1
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	out := make([]Result, 0, k)
	for _, d := range i.docs {
		if s := jaccard(qTokens, d.tokens); s > 0 {
			out = append(out, Result{Text: d.text, Score: s})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		la, lb := utf8.RuneCountInString(out[a].Text), utf8.RuneCountInString(out[b].Text)
		if la != lb {
			return la < lb
		}
		return out[a].Text < out[b].Text
	})
	if len(out) > k {
		out = out[:k]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Similarity is the token Jaccard similarity of a and b. Two texts without
// word tokens score 0.
func Similarity(a, b string) float64 {
	return jaccard(tokenize(a, nil), tokenize(b, nil))
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	over := overlap(a, b)
	return float64(over) / float64(len(a)+len(b)-over)
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

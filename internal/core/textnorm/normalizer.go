// Package textnorm provides the lexical normalization used for duplicate
// matching. Bullets are lowercased, tokenized, stopword-filtered, and
// lemmatized; headers are only lowercased and trimmed so that short
// content-bearing words survive.
//
// Normalization only feeds match decisions. The text emitted in merged
// documents and provenance reports is always the source text.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"golang.org/x/text/unicode/norm"
)

// wordPattern extracts alphanumeric token runs, the Go analogue of \b\w+\b.
var wordPattern = regexp.MustCompile(`\w+`)

// Result is the normalized form of a bullet plus the average character
// length of its kept tokens. AvgWordLen is 0 when no tokens survive.
type Result struct {
	Text       string
	AvgWordLen float64
}

// Normalizer lowercases, tokenizes, stopword-filters, and lemmatizes
// bullets. It caches results per input string for the duration of a run and
// is not safe for concurrent use; a merge run owns exactly one instance.
type Normalizer struct {
	lemmatizer *golem.Lemmatizer
	cache      map[string]Result
}

// New creates a Normalizer backed by the English lemmatizer dictionary.
func New() (*Normalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmatizer: %w", err)
	}

	return &Normalizer{
		lemmatizer: lemmatizer,
		cache:      make(map[string]Result),
	}, nil
}

// Bullet normalizes a bullet sentence. Tokens found in the stopword set are
// dropped before lemmatization; the average word length is computed over the
// kept tokens as written, so an inflected form counts longer than its lemma.
func (n *Normalizer) Bullet(sentence string) Result {
	if cached, ok := n.cache[sentence]; ok {
		return cached
	}

	lowered := strings.ToLower(norm.NFC.String(sentence))
	words := wordPattern.FindAllString(lowered, -1)

	lemmas := make([]string, 0, len(words))
	totalLen := 0

	for _, word := range words {
		if stopWords[word] {
			continue
		}

		lemmas = append(lemmas, n.lemmatizer.Lemma(word))
		totalLen += utf8.RuneCountInString(word)
	}

	result := Result{Text: strings.Join(lemmas, " ")}
	if len(lemmas) > 0 {
		result.AvgWordLen = float64(totalLen) / float64(len(lemmas))
	}

	n.cache[sentence] = result

	return result
}

// Header normalizes a header name: lowercase and outer-whitespace trim only.
func (n *Normalizer) Header(name string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(name)))
}

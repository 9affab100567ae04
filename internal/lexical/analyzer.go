// Package lexical provides token analysis and a BM25 inverted index over
// source-file chunks.
package lexical

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	uni "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// minTermLen drops very short tokens; identifiers shorter than this carry
// almost no signal for localization.
const minTermLen = 3

var (
	imageLinkRe  = regexp.MustCompile(`!\[.*?\]\(https?://\S+?\)`)
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	camelLowerRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	camelUpperRe = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

// Analyzer turns raw text into index terms. The same analyzer is used for
// chunks and queries so both sides tokenize identically.
type Analyzer struct {
	tokenizer analysis.Tokenizer
	filters   []analysis.TokenFilter
}

// NewAnalyzer builds the analysis chain: identifier splitting, unicode
// tokenization, lowercasing, English stop-word removal.
func NewAnalyzer() (*Analyzer, error) {
	stopMap := analysis.NewTokenMap()
	if err := stopMap.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, fmt.Errorf("load stop words: %w", err)
	}
	return &Analyzer{
		tokenizer: uni.NewUnicodeTokenizer(),
		filters: []analysis.TokenFilter{
			lowercase.NewLowerCaseFilter(),
			stop.NewStopTokensFilter(stopMap),
		},
	}, nil
}

// Analyze returns the terms of text. Deterministic: the same text always
// produces the same term sequence.
func (a *Analyzer) Analyze(text string) []string {
	text = imageLinkRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = splitIdentifiers(text)

	stream := a.tokenizer.Tokenize([]byte(text))
	for _, f := range a.filters {
		stream = f.Filter(stream)
	}

	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		term := string(tok.Term)
		if len([]rune(term)) < minTermLen || isNumeric(term) {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// splitIdentifiers breaks camelCase and snake_case identifiers into words,
// keeping acronym runs intact ("parseHTTPResponse" -> "parse HTTP Response").
func splitIdentifiers(text string) string {
	text = camelLowerRe.ReplaceAllString(text, "$1 $2")
	text = camelUpperRe.ReplaceAllString(text, "$1 $2")
	return strings.ReplaceAll(text, "_", " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

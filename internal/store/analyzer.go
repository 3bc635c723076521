package store

import (
	"fmt"
	goregexp "regexp"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	regexptokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	// WordTokenizerName is the name of the memex word tokenizer.
	WordTokenizerName = "memex_word"

	// AnalyzerName is the name of the memex text analyzer.
	AnalyzerName = "memex_text"
)

// wordPattern matches runs of two or more word characters.
var wordPattern = goregexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func init() {
	_ = registry.RegisterTokenizer(WordTokenizerName, wordTokenizerConstructor)
}

func wordTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return regexptokenizer.NewRegexpTokenizer(wordPattern), nil
}

// Analyzer turns text into the terms the vectorizer counts.
// Text is split into words of at least two characters, lower-cased and
// stripped of English stop words.
type Analyzer struct {
	inner analysis.Analyzer
}

// NewAnalyzer builds the analyzer from the bleve registry.
func NewAnalyzer() (*Analyzer, error) {
	cache := registry.NewCache()
	a, err := cache.DefineAnalyzer(AnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": WordTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			en.StopName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("define analyzer %s: %w", AnalyzerName, err)
	}
	return &Analyzer{inner: a}, nil
}

// Tokens returns the analyzed word tokens of text in order.
func (a *Analyzer) Tokens(text string) []string {
	stream := a.inner.Analyze([]byte(text))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, string(tok.Term))
	}
	return tokens
}

// Terms returns the word n-grams of text for n in [1, maxN].
func (a *Analyzer) Terms(text string, maxN int) []string {
	return NGrams(a.Tokens(text), 1, maxN)
}

// NGrams joins consecutive tokens with a single space. All n-grams of length
// minN come first, then minN+1, and so on up to maxN.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN > len(tokens) {
		maxN = len(tokens)
	}
	if maxN < minN {
		return nil
	}

	total := 0
	for n := minN; n <= maxN; n++ {
		total += len(tokens) - n + 1
	}
	grams := make([]string, 0, total)
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				grams = append(grams, tokens[i])
				continue
			}
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

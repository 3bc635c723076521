package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyVocabulary is returned by Fit when document-frequency pruning removes every term.
var ErrEmptyVocabulary = errors.New("no terms remain after pruning; corpus too small or too uniform")

// VectorizerConfig holds the TF-IDF hyperparameters.
type VectorizerConfig struct {
	// MaxFeatures caps the vocabulary at the most frequent terms across the corpus.
	MaxFeatures int
	// MinDF is the minimum number of documents a term must appear in.
	MinDF int
	// MaxDFRatio drops terms appearing in more than this fraction of documents.
	MaxDFRatio float64
	// NgramMax is the longest word n-gram counted (1 = unigrams only).
	NgramMax int
}

// DefaultVectorizerConfig returns the hyperparameters every memex index is built with.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: 5000,
		MinDF:       1,
		MaxDFRatio:  0.95,
		NgramMax:    2,
	}
}

// Model is a fitted TF-IDF vocabulary. Term indices follow alphabetical term order.
type Model struct {
	Config VectorizerConfig
	Terms  []string
	IDF    []float64

	vocab map[string]int
}

// Vocabulary returns the term → column mapping, building it on first use.
func (m *Model) Vocabulary() map[string]int {
	if m.vocab == nil {
		m.vocab = make(map[string]int, len(m.Terms))
		for i, t := range m.Terms {
			m.vocab[t] = i
		}
	}
	return m.vocab
}

// Size returns the number of terms in the vocabulary.
func (m *Model) Size() int {
	return len(m.Terms)
}

// SparseVector is an L2-normalized TF-IDF row. Indices are strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero components.
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// Dot returns the inner product of two sparse vectors.
// For normalized vectors this is their cosine similarity.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Matrix is a document-term matrix; row i belongs to document i.
type Matrix struct {
	Rows []SparseVector
	Cols int
}

// Similarities returns the cosine similarity of q against every row, clamped to [0, 1].
func (mx *Matrix) Similarities(q SparseVector) []float64 {
	scores := make([]float64, len(mx.Rows))
	if q.IsZero() {
		return scores
	}
	for i, row := range mx.Rows {
		s := row.Dot(q)
		if s > 1 {
			s = 1
		} else if s < 0 {
			s = 0
		}
		scores[i] = s
	}
	return scores
}

// Vectorizer fits and applies TF-IDF models over analyzed text.
type Vectorizer struct {
	analyzer *Analyzer
	config   VectorizerConfig
}

// NewVectorizer creates a vectorizer.
func NewVectorizer(analyzer *Analyzer, config VectorizerConfig) *Vectorizer {
	return &Vectorizer{analyzer: analyzer, config: config}
}

// Config returns the hyperparameters new models are fitted with.
func (v *Vectorizer) Config() VectorizerConfig {
	return v.config
}

// Fit learns a vocabulary and idf weights from docs and returns the model
// together with the document-term matrix of docs.
//
// Terms with document frequency above MaxDFRatio·len(docs) or below MinDF are
// pruned, then the MaxFeatures terms with the highest total count are kept
// (ties broken alphabetically). idf = ln((1+n)/(1+df)) + 1. Rows carry raw
// term counts times idf, L2-normalized.
func (v *Vectorizer) Fit(docs []string) (*Model, *Matrix, error) {
	if len(docs) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range docs {
		c := make(map[string]int)
		for _, term := range v.analyzer.Terms(doc, v.config.NgramMax) {
			c[term]++
		}
		for term, n := range c {
			df[term]++
			total[term] += n
		}
		counts[i] = c
	}

	n := len(docs)
	maxDocs := v.config.MaxDFRatio * float64(n)
	kept := make([]string, 0, len(df))
	for term, d := range df {
		if float64(d) > maxDocs || d < v.config.MinDF {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	if v.config.MaxFeatures > 0 && len(kept) > v.config.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if total[kept[i]] != total[kept[j]] {
				return total[kept[i]] > total[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:v.config.MaxFeatures]
	}
	sort.Strings(kept)

	model := &Model{
		Config: v.config,
		Terms:  kept,
		IDF:    make([]float64, len(kept)),
	}
	for i, term := range kept {
		model.IDF[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	matrix := &Matrix{Rows: make([]SparseVector, n), Cols: len(kept)}
	for i, c := range counts {
		matrix.Rows[i] = model.weigh(c)
	}
	return model, matrix, nil
}

// Transform vectorizes text in the model's space. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(m *Model, text string) SparseVector {
	c := make(map[string]int)
	for _, term := range v.analyzer.Terms(text, m.Config.NgramMax) {
		c[term]++
	}
	return m.weigh(c)
}

// weigh turns term counts into a normalized TF-IDF row.
func (m *Model) weigh(counts map[string]int) SparseVector {
	vocab := m.Vocabulary()
	idx := make([]int, 0, len(counts))
	for term := range counts {
		if col, ok := vocab[term]; ok {
			idx = append(idx, col)
		}
	}
	if len(idx) == 0 {
		return SparseVector{}
	}
	sort.Ints(idx)

	vals := make([]float64, len(idx))
	var norm float64
	for k, col := range idx {
		w := float64(counts[m.Terms[col]]) * m.IDF[col]
		vals[k] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for k := range vals {
		vals[k] /= norm
	}
	return SparseVector{Indices: idx, Values: vals}
}

// String summarizes the model for logs.
func (m *Model) String() string {
	return fmt.Sprintf("tfidf(terms=%d, ngram<=%d, max_df=%.2f)", len(m.Terms), m.Config.NgramMax, m.Config.MaxDFRatio)
}

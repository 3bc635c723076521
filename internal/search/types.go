package search

import (
	"github.com/Aman-CERP/memex/internal/memory"
)

// Result is a ranked entry as returned to callers.
type Result struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Metadata  Metadata `json:"metadata"`
	Relevance float64  `json:"relevance"`
}

// Metadata carries an entry's descriptive fields. Absent values are empty strings.
type Metadata struct {
	Source    string       `json:"source"`
	Layer     memory.Layer `json:"layer"`
	Timestamp string       `json:"timestamp"`
	Entity    string       `json:"entity"`
	Category  string       `json:"category"`
}

// NewResult wraps an entry with its relevance.
func NewResult(e *memory.Entry, relevance float64) *Result {
	return &Result{
		ID:      e.ID,
		Content: e.Content,
		Metadata: Metadata{
			Source:    e.Source,
			Layer:     e.Layer,
			Timestamp: e.Timestamp,
			Entity:    e.Entity,
			Category:  e.Category,
		},
		Relevance: relevance,
	}
}

// DisplayID returns the id in citation form, e.g. "mem-1a2b3c4d5e6f".
func (r *Result) DisplayID() string {
	return memory.DisplayPrefix + r.ID
}

// Stats describes the loaded index.
type Stats struct {
	Entries      int                  `json:"entries"`
	Layers       map[memory.Layer]int `json:"layers"`
	Vocabulary   int                  `json:"vocabulary"`
	IndexedAt    string               `json:"indexed_at"`
	ArtifactPath string               `json:"artifact_path"`
}

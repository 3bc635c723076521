// Package store holds the vector space memex searches in: text analysis, the
// TF-IDF vectorizer and the persisted index artifact.
package store

import "github.com/Aman-CERP/memex/internal/memory"

// Corpus returns the content of each entry, in order, as the documents to fit.
func Corpus(entries []*memory.Entry) []string {
	docs := make([]string, len(entries))
	for i, e := range entries {
		docs[i] = e.Content
	}
	return docs
}

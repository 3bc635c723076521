// Package memory defines the Entry, the atomic retrievable unit of the memex index.
package memory

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Layer is the provenance category of an entry.
type Layer string

const (
	LayerDaily          Layer = "daily"
	LayerTacit          Layer = "tacit"
	LayerKnowledgeGraph Layer = "knowledge_graph"
	LayerTools          Layer = "tools"
)

// Layers lists every layer in collection order.
var Layers = []Layer{LayerDaily, LayerTacit, LayerKnowledgeGraph, LayerTools}

// IDLength is the number of hex characters kept from the content hash.
const IDLength = 12

// idPrefixRunes bounds how much content participates in the hash.
const idPrefixRunes = 200

// DisplayPrefix is the citation prefix shown in front of entry IDs ("mem-abc123").
const DisplayPrefix = "mem-"

// String returns the layer name.
func (l Layer) String() string {
	return string(l)
}

// IsValid reports whether l is one of the four known layers.
func (l Layer) IsValid() bool {
	switch l {
	case LayerDaily, LayerTacit, LayerKnowledgeGraph, LayerTools:
		return true
	default:
		return false
	}
}

// ParseLayer converts a string into a Layer.
// An empty string yields an empty Layer (no filter) and no error.
func ParseLayer(s string) (Layer, error) {
	if s == "" {
		return "", nil
	}
	l := Layer(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", fmt.Errorf("unknown layer %q (valid: daily, tacit, knowledge_graph, tools)", s)
	}
	return l, nil
}

// Entry is one indexed unit of content with stable identity.
type Entry struct {
	ID        string // MD5(source + ":" + content[:200])[:12], or an external fact ID
	Content   string // Full text of the unit
	Source    string // Path of the originating document
	Layer     Layer
	Timestamp string // YYYY-MM-DD, empty when not derivable
	Entity    string // knowledge_graph only
	Category  string // Section headline, "fact", "summary:<area>", "skill"
}

// GenerateID derives a stable ID from the source and the first 200 characters of content.
// Entries sharing a source and a 200-character prefix get the same ID.
func GenerateID(content, source string) string {
	sum := md5.Sum([]byte(source + ":" + runePrefix(content, idPrefixRunes)))
	return hex.EncodeToString(sum[:])[:IDLength]
}

// runePrefix returns the first n characters of s without splitting a rune.
func runePrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// StripDisplayPrefix removes the "mem-" citation prefix from an ID, if present.
func StripDisplayPrefix(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), DisplayPrefix)
}

// HasTimestamp reports whether the entry carries a date.
func (e *Entry) HasTimestamp() bool {
	return e.Timestamp != ""
}

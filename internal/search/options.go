package search

import (
	"fmt"

	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/memory"
)

// DefaultLimit is the number of results returned when Options.Limit is not positive.
const DefaultLimit = 10

// Options narrows a search. Zero values mean "no constraint".
type Options struct {
	// Limit caps the number of results.
	Limit int

	// Layer keeps only entries of this layer.
	Layer memory.Layer

	// Since drops entries whose timestamp sorts before it. Entries without a
	// timestamp are kept.
	Since string

	// Entity keeps only entries about this entity.
	Entity string
}

// withDefaults returns a copy with defaults applied.
func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Layer != "" && !o.Layer.IsValid() {
		return mxerrors.New(mxerrors.ErrCodeInvalidInput, fmt.Sprintf("unknown layer %q", o.Layer), nil).
			WithSuggestion(fmt.Sprintf("Use one of %v", memory.Layers))
	}
	return nil
}

// FilterFunc checks if an entry matches filter criteria.
type FilterFunc func(e *memory.Entry) bool

// buildFilters creates filter functions based on options.
func buildFilters(o Options) []FilterFunc {
	var filters []FilterFunc
	if o.Layer != "" {
		filters = append(filters, layerFilter(o.Layer))
	}
	if o.Since != "" {
		filters = append(filters, sinceFilter(o.Since))
	}
	if o.Entity != "" {
		filters = append(filters, entityFilter(o.Entity))
	}
	return filters
}

// matchesAllFilters checks if an entry passes all filters (AND logic).
func matchesAllFilters(e *memory.Entry, filters []FilterFunc) bool {
	for _, f := range filters {
		if !f(e) {
			return false
		}
	}
	return true
}

func layerFilter(layer memory.Layer) FilterFunc {
	return func(e *memory.Entry) bool {
		return e.Layer == layer
	}
}

// sinceFilter compares day strings lexically, which orders YYYY-MM-DD correctly.
func sinceFilter(since string) FilterFunc {
	return func(e *memory.Entry) bool {
		return !e.HasTimestamp() || e.Timestamp >= since
	}
}

func entityFilter(entity string) FilterFunc {
	return func(e *memory.Entry) bool {
		return e.Entity == entity
	}
}

package symbol

import (
	"svgsprite/common"
)

// Option is a value which is either the same for every document or is
// computed from document identifier. Zero Option resolves to zero value.
type Option[V any] struct {
	static V
	perDoc func(docID string) V
}

// Static returns Option resolving to v for every document.
func Static[V any](v V) Option[V] {
	return Option[V]{static: v}
}

// PerDocument returns Option resolving to fn(docID).
func PerDocument[V any](fn func(docID string) V) Option[V] {
	return Option[V]{perDoc: fn}
}

// Resolve returns option value for the document.
func (o Option[V]) Resolve(docID string) V {
	if o.perDoc != nil {
		return o.perDoc(docID)
	}
	return o.static
}

// Options controls symbol compilation.
type Options struct {
	// CleanSymbols lists attribute names to be removed from symbol markup.
	CleanSymbols Option[[]string]
	// SymbolAttrs are additional attributes for <symbol> opening tag.
	SymbolAttrs Option[map[string]string]
	// Dimensions selects root attributes copied to <symbol>.
	Dimensions common.Dimensions
}

package hash

import "github.com/cespare/xxhash/v2"

// Span computes the xxHash64 key of a text span.
//
// Used to remember structure spans that already failed typed extraction, so
// that the aggregator's buffer rescan never re-attempts the same bytes.
func Span(span string) uint64 {
	return xxhash.Sum64String(span)
}

// SpanBytes is Span for a raw byte slice.
func SpanBytes(span []byte) uint64 {
	return xxhash.Sum64(span)
}

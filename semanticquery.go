// Package semanticquery extracts typed JSON structures from unstructured
// model output, as a complete response or incrementally from a stream.
//
// The heavy lifting lives in the subpackages; this package re-exports the
// common entry points so simple uses need a single import:
//
//   - scan finds balanced JSON object and array spans in text, chunk by
//     chunk, without parsing.
//   - extract deserializes spans into caller types, preferring the
//     outermost span that fits and descending into children otherwise.
//   - stream reconciles a raw reply into an ordered, lossless sequence
//     of prose and typed data.
//   - sse aggregates token events from an SSE response body and flushes
//     structures and paragraphs as they complete.
//   - query is the boundary to a model client, with typed helpers and a
//     mock for tests.
//   - transcript records raw streams to replayable files.
package semanticquery

import (
	"context"
	"io"
	"iter"

	"github.com/JuggernautLabs/semantic-query/extract"
	"github.com/JuggernautLabs/semantic-query/scan"
	"github.com/JuggernautLabs/semantic-query/sse"
	"github.com/JuggernautLabs/semantic-query/stream"
)

// Structures returns every balanced top-level JSON object and array span in
// text.
func Structures(text string) []scan.Node {
	return scan.Structures(text)
}

// First returns the first structure in text that deserializes as T, or
// errs.ErrNoMatch.
func First[T any](text string) (T, error) {
	return extract.First[T](text)
}

// All returns every instance of T found in text, unwrapping arrays of T.
func All[T any](text string) []T {
	return extract.All[T](text)
}

// Items reconciles a complete reply into its ordered text and data items.
func Items[T any](raw string) []stream.Item[T] {
	return stream.Build[T](raw)
}

// StreamItems reads r incrementally and yields text and data items as
// structures complete.
func StreamItems[T any](ctx context.Context, r io.Reader, opts ...stream.Option) iter.Seq2[stream.Item[T], error] {
	return stream.Items[T](ctx, r, opts...)
}

// EventStream builds an aggregator over an SSE event protocol. Use
// sse.OpenAI() or sse.Anthropic() for the common wire shapes.
func EventStream[T any](cfg sse.Config, opts ...sse.Option) (*sse.Aggregator[T], error) {
	return sse.New[T](cfg, opts...)
}

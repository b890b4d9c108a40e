// Package stream reconciles scanner and extractor output against the
// original text, producing an ordered item sequence that losslessly covers
// the input: free text stays free text, structures that decode as the target
// type become data items, and everything else is preserved verbatim.
//
// Build handles complete text in one call. Items consumes an io.Reader
// incrementally and yields items as structures close, which is the entry
// point for live model output arriving over the network.
package stream

// ItemKind tags the variants of Item.
type ItemKind uint8

const (
	// KindToken is a raw, not-yet-aggregated text fragment. Only the sse
	// package emits tokens; they exist for live display and are not part of
	// the reconciled text.
	KindToken ItemKind = iota + 1
	// KindText is a finalized free-text span.
	KindText
	// KindData is a successfully typed structure.
	KindData
)

// String returns a human-readable name for the kind.
func (k ItemKind) String() string {
	switch k {
	case KindToken:
		return "token"
	case KindText:
		return "text"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// Item is one element of the reconciled output sequence.
//
// Text is set for KindToken and KindText; Data is set for KindData.
type Item[T any] struct {
	Kind ItemKind
	Text string
	Data T
}

// TokenItem wraps a raw token fragment.
func TokenItem[T any](text string) Item[T] {
	return Item[T]{Kind: KindToken, Text: text}
}

// TextItem wraps a finalized text span.
func TextItem[T any](text string) Item[T] {
	return Item[T]{Kind: KindText, Text: text}
}

// DataItem wraps a typed value.
func DataItem[T any](value T) Item[T] {
	return Item[T]{Kind: KindData, Data: value}
}

// Package extract attempts typed deserialization of the structures the scan
// package finds, classifying each as a parsed value or an unknown span.
//
// Extraction is parent-first: the outermost span is tried before any of its
// children, so a nested sub-object that happens to match the target shape is
// never reported alongside its parent. A structure that matches nothing, at
// any depth, is still reported as Unknown: no structure silently disappears.
package extract

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/JuggernautLabs/semantic-query/errs"
	"github.com/JuggernautLabs/semantic-query/scan"
)

// json decodes strictly: unknown object fields are a mismatch. Go decoders
// ignore unknown fields by default, which would make every object-shaped span
// "match" every struct target and break the Unknown classification.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// Validator lets a target type veto a structurally valid decode. When the
// decoded value (or its pointer) implements Validator, a span only counts as
// a match if Validate returns nil; otherwise the span is classified Unknown.
type Validator interface {
	Validate() error
}

// Item is the outcome of typed extraction on one structure.
//
// When Parsed is true, Value holds the decoded target value. Otherwise the
// structure (and every descendant) failed to decode and Node identifies the
// span to preserve as text.
type Item[T any] struct {
	Value  T
	Node   scan.Node
	Parsed bool
}

// As attempts to decode a single span as T. Unknown object fields fail the
// decode, and a T implementing Validator must also accept the value.
func As[T any](span string) (T, bool) {
	var v T
	if err := json.UnmarshalFromString(span, &v); err != nil {
		var zero T
		return zero, false
	}
	if validator, ok := any(&v).(Validator); ok {
		if err := validator.Validate(); err != nil {
			var zero T
			return zero, false
		}
	}

	return v, true
}

// Node applies parent-first extraction to one structure.
//
// The node's full span is tried as T first; on success exactly one parsed
// item is returned and children are not examined. On failure each child is
// recursed in order; if no descendant at any depth parses, the node itself
// is returned as a single unknown item covering its whole span.
func Node[T any](text string, node scan.Node) []Item[T] {
	if v, ok := As[T](node.Slice(text)); ok {
		return []Item[T]{{Value: v, Node: node, Parsed: true}}
	}

	var items []Item[T]
	anyParsed := false
	for _, child := range node.Children {
		childItems := Node[T](text, child)
		for _, item := range childItems {
			if item.Parsed {
				anyParsed = true
			}
		}
		items = append(items, childItems...)
	}
	// When nothing underneath matched either, the child unknowns are
	// replaced by one unknown covering the whole span, so the parent's
	// bytes around its children are not lost.
	if !anyParsed {
		return []Item[T]{{Node: node}}
	}

	return items
}

// FromText scans the complete text and applies parent-first extraction to
// every root structure, concatenating the results in discovery order.
func FromText[T any](text string) []Item[T] {
	var items []Item[T]
	for _, root := range scan.Structures(text) {
		items = append(items, Node[T](text, root)...)
	}

	return items
}

// First returns the first value in the text that decodes as T.
//
// Returns errs.ErrNoMatch when no structure at any depth matches.
func First[T any](text string) (T, error) {
	for _, item := range FromText[T](text) {
		if item.Parsed {
			return item.Value, nil
		}
	}

	var zero T

	return zero, fmt.Errorf("%w: target type %T", errs.ErrNoMatch, zero)
}

// All extracts every instance of T scattered through the text.
//
// The whole text is first tried directly as a JSON array of T, letting a
// clean top-level array short-circuit without per-element scanning. Failing
// that, each structure is tried as []T, then as T, and only then are its
// children descended. Prose between structures is ignored.
func All[T any](text string) []T {
	if seq, ok := As[[]T](strings.TrimSpace(text)); ok {
		return seq
	}

	var values []T
	for _, root := range scan.Structures(text) {
		values = append(values, allFromNode[T](text, root)...)
	}

	return values
}

func allFromNode[T any](text string, node scan.Node) []T {
	span := node.Slice(text)
	if seq, ok := As[[]T](span); ok {
		return seq
	}
	if v, ok := As[T](span); ok {
		return []T{v}
	}

	var values []T
	for _, child := range node.Children {
		values = append(values, allFromNode[T](text, child)...)
	}

	return values
}

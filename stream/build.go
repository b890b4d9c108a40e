package stream

import (
	"strings"

	"github.com/JuggernautLabs/semantic-query/extract"
	"github.com/JuggernautLabs/semantic-query/scan"
)

// Build reconciles a complete text into an ordered item sequence.
//
// For each root structure in discovery order it emits the text gap since the
// previous structure (skipped when the gap is pure whitespace), then the
// parent-first extraction result: parsed values as data items, unknown spans
// verbatim as text items. Trailing text after the last structure is emitted
// last. Reading the items back in order reproduces the input, minus
// whitespace-only gaps.
func Build[T any](raw string) []Item[T] {
	var items []Item[T]
	cursor := 0

	for _, root := range scan.Structures(raw) {
		if root.Start > cursor {
			gap := raw[cursor:root.Start]
			if strings.TrimSpace(gap) != "" {
				items = append(items, TextItem[T](gap))
			}
		}

		items = append(items, nodeItems[T](raw, root)...)
		cursor = root.End + 1
	}

	if cursor < len(raw) {
		tail := raw[cursor:]
		if strings.TrimSpace(tail) != "" {
			items = append(items, TextItem[T](tail))
		}
	}

	return items
}

// nodeItems maps one root's extraction outcome to stream items. Unknown
// spans keep their own coordinates so non-matching JSON survives verbatim.
func nodeItems[T any](text string, root scan.Node) []Item[T] {
	var items []Item[T]
	for _, item := range extract.Node[T](text, root) {
		if item.Parsed {
			items = append(items, DataItem(item.Value))
		} else {
			items = append(items, TextItem[T](item.Node.Slice(text)))
		}
	}

	return items
}

package scan

// Kind identifies which bracket pair opened a structure.
type Kind uint8

const (
	// KindObject is a {...} span.
	KindObject Kind = iota + 1
	// KindArray is a [...] span.
	KindArray
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Node is one matched bracketed span.
//
// Start is the byte offset of the opening bracket and End the offset of the
// matching closing bracket, both inclusive, relative to the logical text the
// scanner has seen. Children holds the structures nested directly one level
// inside this node, in the order their opening brackets appear.
//
// Nodes are immutable once produced: the scanner only emits a node after its
// closing bracket has been observed.
type Node struct {
	Start    int
	End      int
	Kind     Kind
	Children []Node
}

// Len returns the span length in bytes, brackets included.
func (n Node) Len() int {
	return n.End - n.Start + 1
}

// Slice returns the node's span of text. The text must be the same logical
// text the coordinates were produced against.
func (n Node) Slice(text string) string {
	if n.Start < 0 || n.End+1 > len(text) || n.Start > n.End {
		return ""
	}

	return text[n.Start : n.End+1]
}

// SliceBytes is Slice for a byte buffer.
func (n Node) SliceBytes(text []byte) []byte {
	if n.Start < 0 || n.End+1 > len(text) || n.Start > n.End {
		return nil
	}

	return text[n.Start : n.End+1]
}

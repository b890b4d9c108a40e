package scan

// frame is an open, not-yet-closed structure on the scanner's stack. It is
// promoted to an immutable Node the moment its closing bracket is seen.
type frame struct {
	start    int
	kind     Kind
	children []Node
}

// Scanner finds root structures incrementally across arbitrarily split
// chunks of one logical text stream.
//
// The bracket stack, string-literal state, escape state, and global byte
// offset persist across Feed calls; a structure opened in one chunk and
// closed many chunks later is returned, with absolute coordinates, by the
// call that sees its closing bracket.
//
// A Scanner owns the state of exactly one stream. It is not safe for
// concurrent use and must not be shared between streams; create one per
// stream and discard it when the stream ends.
type Scanner struct {
	stack    []frame
	offset   int
	inString bool
	escape   bool
}

// NewScanner creates a scanner for a new logical text stream.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Feed consumes the next chunk and returns, in discovery order, every root
// structure whose closing bracket appeared in this chunk. Roots are spans
// not nested inside any still-open structure; each carries its full child
// tree. Structures still open after the chunk are retained and may complete
// on a later call.
//
// Feed never fails: bracket-kind mismatches close whatever frame is on top,
// and a structure that never closes is simply never returned.
func (s *Scanner) Feed(chunk string) []Node {
	var roots []Node

	for i := 0; i < len(chunk); i++ {
		if s.escape {
			s.escape = false
			continue
		}

		switch chunk[i] {
		case '\\':
			if s.inString {
				s.escape = true
			}
		case '"':
			s.inString = !s.inString
		case '{', '[':
			if s.inString {
				continue
			}
			kind := KindObject
			if chunk[i] == '[' {
				kind = KindArray
			}
			s.stack = append(s.stack, frame{start: s.offset + i, kind: kind})
		case '}', ']':
			if s.inString || len(s.stack) == 0 {
				continue
			}
			top := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			node := Node{
				Start:    top.start,
				End:      s.offset + i,
				Kind:     top.kind,
				Children: top.children,
			}
			if len(s.stack) > 0 {
				parent := &s.stack[len(s.stack)-1]
				parent.children = append(parent.children, node)
			} else {
				roots = append(roots, node)
			}
		}
	}

	s.offset += len(chunk)

	return roots
}

// Offset returns the global byte position of the next unseen byte.
func (s *Scanner) Offset() int {
	return s.offset
}

// Depth returns the number of currently open structures. A non-zero depth at
// end-of-input means the stream was truncated inside a structure; its bytes
// remain plain text to downstream consumers.
func (s *Scanner) Depth() int {
	return len(s.stack)
}

// InString reports whether the scanner is currently inside a string literal.
func (s *Scanner) InString() bool {
	return s.inString
}

// Structures scans a complete text in one shot and returns every root
// structure in discovery order.
func Structures(text string) []Node {
	return NewScanner().Feed(text)
}

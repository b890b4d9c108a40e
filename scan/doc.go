// Package scan locates JSON-shaped structures inside free-form text.
//
// The scanner is a single-pass byte automaton: it tracks string-literal and
// escape state so that brackets inside quoted strings never affect nesting,
// and it builds a tree of matched {...} / [...] spans bottom-up as closing
// brackets are observed. It performs no validation beyond bracket matching;
// deciding whether a span is meaningful JSON is the extract package's job.
//
// Two entry points:
//
//   - Structures scans a complete text in one shot.
//   - Scanner consumes text chunk by chunk, carrying its bracket stack,
//     string state, and global offset across calls, so a structure split
//     over any number of network reads is still found with correct
//     coordinates.
//
// Coordinates returned by either entry point are byte offsets into the
// logical, fully accumulated text. The scanner keeps no reference to the
// text itself; callers that need to slice by coordinates must retain what
// they fed in.
package scan

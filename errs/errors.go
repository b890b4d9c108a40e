// Package errs defines the sentinel errors shared across the semantic-query
// packages.
//
// Callers should match these with errors.Is; the packages wrap them with
// additional context using fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	// ErrInvalidUTF8 indicates a stream chunk could not be decoded as UTF-8.
	// This is a terminal stream error: no recovery is attempted mid-chunk.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 in stream")

	// ErrSourceFailed indicates the upstream byte or event source failed.
	// Items emitted before the failure remain valid.
	ErrSourceFailed = errors.New("stream source failed")

	// ErrNoMatch indicates no structure in the text deserialized into the
	// requested target type.
	ErrNoMatch = errors.New("no matching structure found")

	// ErrInvalidConfig indicates an event-protocol configuration is not usable.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrRecorderClosed indicates a write to a transcript recorder after Close.
	ErrRecorderClosed = errors.New("transcript recorder is closed")

	// ErrBadTranscript indicates a transcript file is corrupted or was written
	// by an incompatible version.
	ErrBadTranscript = errors.New("malformed transcript")
)

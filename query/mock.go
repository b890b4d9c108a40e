package query

import (
	"context"
	"io"
)

// Mock is an in-memory Client for tests. It returns Response verbatim, or
// Err when set. When ChunkSize is positive the mock also streams, serving
// Response in reads of at most ChunkSize bytes.
type Mock struct {
	Response  string
	Err       error
	ChunkSize int

	// Prompts records every prompt the mock was asked, in order.
	Prompts []string
}

func (m *Mock) AskRaw(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}

	return m.Response, nil
}

func (m *Mock) StreamRaw(_ context.Context, prompt string) (io.ReadCloser, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return nil, m.Err
	}

	return io.NopCloser(&chunkedReader{s: m.Response, size: m.ChunkSize}), nil
}

type chunkedReader struct {
	s    string
	size int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.s) == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if r.size > 0 && r.size < n {
		n = r.size
	}
	if n > len(r.s) {
		n = len(r.s)
	}
	n = copy(p, r.s[:n])
	r.s = r.s[n:]

	return n, nil
}

var _ interface {
	Client
	Streamer
} = (*Mock)(nil)

// Package transcript records raw stream bytes while they are being consumed
// and replays them later.
//
// A recorded transcript is the exact byte sequence the pipeline saw, so a
// replayed transcript exercises the scanner, extractor, and aggregator the
// same way the live stream did. Typical uses are capturing a provider
// session for a regression test and debugging extraction against production
// traffic.
//
// The file format is a fixed header (magic, format version, codec type)
// followed by one compressed payload block. Open also accepts a bare gzip
// file, for streams captured by external tooling.
package transcript

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/JuggernautLabs/semantic-query/compress"
	"github.com/JuggernautLabs/semantic-query/errs"
	"github.com/JuggernautLabs/semantic-query/internal/pool"
)

var magic = []byte("SQTR")

const formatVersion = 1

// headerSize is magic + version byte + codec byte.
const headerSize = 6

// Recorder accumulates raw stream bytes and writes a compressed transcript
// on Close.
//
// A Recorder belongs to one stream and is not safe for concurrent use. The
// payload is compressed as a single block at Close; until then everything
// stays in memory, which is fine for model output (transcripts are text and
// rarely exceed a few hundred kilobytes).
type Recorder struct {
	dst    io.Writer
	buf    *pool.Buffer
	ctype  compress.Type
	codec  compress.Codec
	closer io.Closer
	closed bool
}

// NewRecorder creates a recorder writing a transcript of the given
// compression type to dst on Close.
func NewRecorder(dst io.Writer, ctype compress.Type) (*Recorder, error) {
	codec, err := compress.New(ctype)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		dst:   dst,
		buf:   pool.GetBuffer(),
		ctype: ctype,
		codec: codec,
	}, nil
}

// CreateIn creates a recorder writing to a timestamped file in dir, creating
// dir if needed. The file is closed by Close.
func CreateIn(dir string, ctype compress.Type) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("stream_%s.sqt", time.Now().UTC().Format("20060102_150405.000"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}

	r, err := NewRecorder(f, ctype)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f

	return r, nil
}

// Write buffers raw stream bytes. It never fails until the recorder is
// closed, so it is safe to place on the hot read path.
func (r *Recorder) Write(p []byte) (int, error) {
	if r.closed {
		return 0, errs.ErrRecorderClosed
	}
	r.buf.Append(p)

	return len(p), nil
}

// Tee returns a reader that records everything read through it. The usual
// pattern is to wrap the provider stream before handing it to the pipeline:
//
//	items := stream.Items[T](ctx, recorder.Tee(resp.Body))
func (r *Recorder) Tee(src io.Reader) io.Reader {
	return io.TeeReader(src, r)
}

// Len returns the number of raw bytes recorded so far.
func (r *Recorder) Len() int {
	if r.buf == nil {
		return 0
	}

	return r.buf.Len()
}

// Close compresses the recorded bytes, writes the transcript, and releases
// the buffer. A second Close returns errs.ErrRecorderClosed and writes
// nothing.
func (r *Recorder) Close() error {
	if r.closed {
		return errs.ErrRecorderClosed
	}
	r.closed = true
	defer func() {
		pool.PutBuffer(r.buf)
		r.buf = nil
	}()

	payload, err := r.codec.Compress(r.buf.Bytes())
	if err != nil {
		return fmt.Errorf("compress transcript: %w", err)
	}

	header := make([]byte, 0, headerSize)
	header = append(header, magic...)
	header = append(header, formatVersion, byte(r.ctype))
	if _, err := r.dst.Write(header); err != nil {
		return fmt.Errorf("write transcript header: %w", err)
	}
	if _, err := r.dst.Write(payload); err != nil {
		return fmt.Errorf("write transcript payload: %w", err)
	}

	if r.closer != nil {
		return r.closer.Close()
	}

	return nil
}

// Open reads a transcript and returns a reader over the original raw
// stream bytes. Bare gzip input (external captures) is accepted alongside
// the native format.
func Open(src io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrBadTranscript, err)
		}

		return gz, nil
	}

	if len(raw) < headerSize || !bytes.Equal(raw[:len(magic)], magic) {
		return nil, fmt.Errorf("%w: missing header", errs.ErrBadTranscript)
	}
	if raw[len(magic)] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrBadTranscript, raw[len(magic)])
	}

	codec, err := compress.New(compress.Type(raw[len(magic)+1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrBadTranscript, err)
	}

	payload, err := codec.Decompress(raw[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrBadTranscript, err)
	}

	return bytes.NewReader(payload), nil
}

// OpenFile opens a transcript file for replay.
func OpenFile(path string) (io.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Open(f)
}

package stream

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/JuggernautLabs/semantic-query/errs"
	"github.com/JuggernautLabs/semantic-query/internal/options"
	"github.com/JuggernautLabs/semantic-query/internal/pool"
	"github.com/JuggernautLabs/semantic-query/scan"
)

const defaultReadSize = 4096

type readerSettings struct {
	readSize int
}

// Option configures the incremental reader.
type Option = options.Option[*readerSettings]

// WithReadSize sets the size of the read buffer handed to the source on each
// read. Values below 1 fall back to the default.
func WithReadSize(n int) Option {
	return options.NoError(func(s *readerSettings) {
		if n > 0 {
			s.readSize = n
		}
	})
}

// Items incrementally reconciles raw model output from r into stream items.
//
// The returned sequence is lazy, finite, and one-pass: items are yielded in
// strictly increasing offset order as their underlying bytes arrive, and a
// data item appears as soon as the chunk closing its structure is read. The
// read loop stops promptly when the consumer stops iterating or ctx is
// cancelled.
//
// Error semantics follow the stream taxonomy: a chunk that is not valid
// UTF-8 yields errs.ErrInvalidUTF8 and terminates; a source read failure
// yields errs.ErrSourceFailed and terminates; in both cases items already
// yielded remain valid. A multi-byte rune split across chunk boundaries is
// not an error: the incomplete tail is held back and completed by the next
// chunk. Text that ends inside an unterminated structure is yielded as
// trailing text.
func Items[T any](ctx context.Context, r io.Reader, opts ...Option) iter.Seq2[Item[T], error] {
	settings := &readerSettings{readSize: defaultReadSize}
	_ = options.Apply(settings, opts...)

	return func(yield func(Item[T], error) bool) {
		var zero Item[T]

		scanner := scan.NewScanner()
		accum := pool.GetBuffer()
		defer pool.PutBuffer(accum)

		var pending []byte // held-back bytes of a rune split across chunks
		last := 0
		buf := make([]byte, settings.readSize)

		for {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			n, readErr := r.Read(buf)
			if n > 0 {
				chunk := buf[:n]
				if len(pending) > 0 {
					chunk = append(pending, chunk...)
					pending = nil
				}

				valid, rest, err := splitCompleteRunes(chunk)
				if err != nil {
					yield(zero, fmt.Errorf("%w at offset %d", errs.ErrInvalidUTF8, scanner.Offset()))
					return
				}
				// rest aliases the read buffer, which the next Read overwrites.
				pending = append([]byte(nil), rest...)

				if len(valid) > 0 {
					accum.Append(valid)
					text := accum.String()
					for _, root := range scanner.Feed(string(valid)) {
						if root.Start > last {
							gap := text[last:root.Start]
							if strings.TrimSpace(gap) != "" {
								if !yield(TextItem[T](gap), nil) {
									return
								}
							}
						}
						for _, item := range nodeItems[T](text, root) {
							if !yield(item, nil) {
								return
							}
						}
						last = root.End + 1
					}
				}
			}

			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				yield(zero, fmt.Errorf("%w: %w", errs.ErrSourceFailed, readErr))
				return
			}
		}

		if len(pending) > 0 {
			yield(zero, fmt.Errorf("%w: stream ended inside a multi-byte sequence", errs.ErrInvalidUTF8))
			return
		}

		if last < accum.Len() {
			tail := accum.String()[last:]
			if strings.TrimSpace(tail) != "" {
				yield(TextItem[T](tail), nil)
			}
		}
	}
}

// Collect drains the sequence into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[Item[T], error]) ([]Item[T], error) {
	var items []Item[T]
	for item, err := range seq {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}

	return items, nil
}

// splitCompleteRunes returns the longest prefix of b made of complete UTF-8
// sequences and any trailing bytes of a rune cut off mid-encoding. Bytes
// that cannot begin a valid rune are an error.
//
// Validation runs against the chunk being appended, never per network read
// in isolation, so a boundary that splits a rune is recoverable: the tail is
// carried into the next chunk.
func splitCompleteRunes(b []byte) (valid, rest []byte, err error) {
	i := 0
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(b[i:]) {
				// Incomplete trailing rune, complete it on the next chunk.
				return b[:i], b[i:], nil
			}

			return nil, nil, errs.ErrInvalidUTF8
		}
		i += size
	}

	return b, nil, nil
}

// Package sse aggregates line-delimited event-protocol streams back into the
// ordered Token / Text / Data item sequence.
//
// The wire format is the common server-sent-events shape: events separated
// by a blank line, payload lines marked by a fixed prefix, each payload a
// JSON envelope carrying an incremental delta token at a provider-specific
// field path. The aggregator forwards every token immediately for live
// display, accumulates the token text, and runs the structural scanner and
// typed extractor over the accumulation to surface completed structures as
// data items.
package sse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/JuggernautLabs/semantic-query/errs"
	"github.com/JuggernautLabs/semantic-query/extract"
	"github.com/JuggernautLabs/semantic-query/internal/options"
	"github.com/JuggernautLabs/semantic-query/scan"
	"github.com/JuggernautLabs/semantic-query/stream"
)

const defaultMaxLineSize = 1024 * 1024

type settings struct {
	logger      *slog.Logger
	maxLineSize int
}

// Option configures an Aggregator.
type Option = options.Option[*settings]

// WithLogger sets the logger used for debug-level flush and extraction
// decisions. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(s *settings) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", errs.ErrInvalidConfig)
		}
		s.logger = logger

		return nil
	})
}

// WithMaxLineSize sets the maximum accepted protocol line length in bytes.
func WithMaxLineSize(n int) Option {
	return options.NoError(func(s *settings) {
		if n > 0 {
			s.maxLineSize = n
		}
	})
}

// Aggregator decodes one event-protocol stream into items of type T.
//
// An Aggregator owns the accumulation state of exactly one stream: create
// one per stream, call Events once, and discard it. It is not safe for
// concurrent use.
type Aggregator[T any] struct {
	cfg      Config
	logger   *slog.Logger
	maxLine  int
	buf      string
	cache    *extract.MissCache
	consumed bool
}

// New creates an aggregator for a single stream.
func New[T any](cfg Config, opts ...Option) (*Aggregator[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{
		logger:      slog.New(slog.DiscardHandler),
		maxLineSize: defaultMaxLineSize,
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return &Aggregator[T]{
		cfg:     cfg,
		logger:  s.logger,
		maxLine: s.maxLineSize,
		cache:   extract.NewMissCache(),
	}, nil
}

// Events consumes protocol lines from r and yields the item sequence.
//
// Every decoded token is yielded immediately as a token item, then folded
// into the accumulation buffer. Buffered text is flushed as a text item by
// any of three triggers: a completed structure deserializing as T (the text
// before it flushes, then the data item, then the buffer drains through the
// structure), a paragraph break in the buffer, or a completion marker in the
// event envelope. The terminal sentinel, or EOF for sentinel-less protocols,
// flushes whatever remains.
//
// The sequence is lazy and one-pass; Events may be called only once.
func (a *Aggregator[T]) Events(ctx context.Context, r io.Reader) iter.Seq2[stream.Item[T], error] {
	return func(yield func(stream.Item[T], error) bool) {
		var zero stream.Item[T]

		if a.consumed {
			yield(zero, fmt.Errorf("%w: aggregator already consumed", errs.ErrInvalidConfig))
			return
		}
		a.consumed = true

		lines := bufio.NewScanner(r)
		lines.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), a.maxLine)

		var event []string

		for lines.Scan() {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			line := lines.Text()
			if line != "" {
				event = append(event, line)
				continue
			}

			// Blank line: the buffered event is complete. Non-payload lines
			// (event names, comments) are ignored.
			payload, ok := payloadLine(event, a.cfg.DataPrefix)
			event = event[:0]
			if !ok {
				continue
			}

			if !a.processPayload(payload, yield) {
				return
			}
		}

		if err := lines.Err(); err != nil {
			yield(zero, fmt.Errorf("%w: %w", errs.ErrSourceFailed, err))
			return
		}

		// A truncated stream can end with a payload line and no blank-line
		// separator; the event still counts.
		if payload, ok := payloadLine(event, a.cfg.DataPrefix); ok {
			if !a.processPayload(payload, yield) {
				return
			}
		}

		// EOF without a sentinel still flushes the remainder.
		a.flushTail(yield)
	}
}

// processPayload decodes one payload line and yields its items. A false
// return stops iteration, either because the consumer broke or because the
// terminal sentinel arrived (which flushes the tail itself).
func (a *Aggregator[T]) processPayload(payload string, yield func(stream.Item[T], error) bool) bool {
	if a.cfg.DoneSentinel != "" && strings.TrimSpace(payload) == a.cfg.DoneSentinel {
		a.logger.Debug("terminal sentinel received", "buffered", len(a.buf))
		a.flushTail(yield)
		return false
	}

	token, hasToken, finished := a.decodeEnvelope(payload)

	if hasToken {
		if !yield(stream.TokenItem[T](token), nil) {
			return false
		}
		a.buf += token

		if !a.drainStructures(yield) {
			return false
		}
		if !a.drainParagraph(yield) {
			return false
		}
	}

	if finished {
		a.logger.Debug("completion marker received", "buffered", len(a.buf))
		if !a.flushTail(yield) {
			return false
		}
	}

	return true
}

// payloadLine finds the first line of an event carrying the payload prefix.
func payloadLine(event []string, prefix string) (string, bool) {
	for _, line := range event {
		if payload, ok := strings.CutPrefix(line, prefix); ok {
			return payload, true
		}
	}

	return "", false
}

// decodeEnvelope extracts the token string and completion marker from one
// payload envelope. An envelope that is not valid JSON, or that has no
// string at the token path, simply carries no token.
func (a *Aggregator[T]) decodeEnvelope(payload string) (token string, hasToken, finished bool) {
	envelope := []byte(payload)

	value := jsoniter.Get(envelope, a.cfg.TokenPath...)
	if value.ValueType() == jsoniter.StringValue {
		token = value.ToString()
		hasToken = true
	}

	if len(a.cfg.FinishPath) > 0 {
		finish := jsoniter.Get(envelope, a.cfg.FinishPath...)
		finished = finish.ValueType() == jsoniter.StringValue
	}

	return token, hasToken, finished
}

// drainStructures scans the accumulation buffer for completed structures
// that deserialize as T, flushing preceding text and draining through each
// consumed structure. Spans that already failed are skipped via the miss
// cache, so the per-token rescan does not re-attempt identical bytes.
func (a *Aggregator[T]) drainStructures(yield func(stream.Item[T], error) bool) bool {
	consumed := 0
	for _, root := range scan.Structures(a.buf) {
		span := root.Slice(a.buf)
		if a.cache.Seen(span) {
			continue
		}
		value, ok := extract.As[T](span)
		if !ok {
			a.cache.Add(span)
			continue
		}

		if root.Start > consumed {
			chunk := strings.TrimSpace(a.buf[consumed:root.Start])
			if chunk != "" {
				if !yield(stream.TextItem[T](chunk), nil) {
					return false
				}
			}
		}
		a.logger.Debug("structure extracted", "span_len", len(span), "kind", root.Kind.String())
		if !yield(stream.DataItem(value), nil) {
			return false
		}
		consumed = root.End + 1
	}
	if consumed > 0 {
		a.buf = a.buf[consumed:]
	}

	return true
}

// drainParagraph flushes buffered text through a paragraph break, if any.
func (a *Aggregator[T]) drainParagraph(yield func(stream.Item[T], error) bool) bool {
	idx := strings.Index(a.buf, "\n\n")
	if idx < 0 {
		return true
	}

	chunk := strings.TrimSpace(a.buf[:idx])
	a.buf = a.buf[idx+2:]
	if chunk == "" {
		return true
	}
	a.logger.Debug("paragraph flush", "len", len(chunk))

	return yield(stream.TextItem[T](chunk), nil)
}

// flushTail flushes whatever text remains in the buffer.
func (a *Aggregator[T]) flushTail(yield func(stream.Item[T], error) bool) bool {
	tail := strings.TrimSpace(a.buf)
	a.buf = ""
	if tail == "" {
		return true
	}

	return yield(stream.TextItem[T](tail), nil)
}

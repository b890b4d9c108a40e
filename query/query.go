// Package query is the boundary to the model-client layer.
//
// Network transport, authentication, retry policy, and prompt construction
// live outside this module; anything able to return model text for a prompt
// can implement Client (and optionally Streamer) and get typed extraction
// over its responses. Mock is the in-memory implementation used in tests.
package query

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"regexp"
	"strings"

	"github.com/JuggernautLabs/semantic-query/extract"
	"github.com/JuggernautLabs/semantic-query/internal/options"
	"github.com/JuggernautLabs/semantic-query/stream"
)

// Client executes a prompt and returns the raw model text.
type Client interface {
	AskRaw(ctx context.Context, prompt string) (string, error)
}

// Streamer is the optional streaming capability of a Client. Implementations
// return a reader over the raw model output as it is produced; the caller
// owns closing it.
type Streamer interface {
	StreamRaw(ctx context.Context, prompt string) (io.ReadCloser, error)
}

type settings struct {
	logger *slog.Logger
}

// Option configures the query helpers.
type Option = options.Option[*settings]

// WithLogger sets the logger for extraction decisions. The default discards
// everything.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	})
}

func applySettings(opts []Option) *settings {
	s := &settings{logger: slog.New(slog.DiscardHandler)}
	_ = options.Apply(s, opts...)

	return s
}

// Typed asks the client and returns the first structure in the response that
// deserializes as T. A response wrapped in a markdown code fence is
// unwrapped first. Returns errs.ErrNoMatch when nothing in the response
// fits.
func Typed[T any](ctx context.Context, c Client, prompt string, opts ...Option) (T, error) {
	s := applySettings(opts)

	raw, err := c.AskRaw(ctx, prompt)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("ask: %w", err)
	}
	s.logger.Debug("response received", "prompt_len", len(prompt), "response_len", len(raw))

	return extract.First[T](StripFence(raw))
}

// AllOf asks the client and returns every instance of T in the response,
// including elements of JSON arrays of T.
func AllOf[T any](ctx context.Context, c Client, prompt string, opts ...Option) ([]T, error) {
	s := applySettings(opts)

	raw, err := c.AskRaw(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	values := extract.All[T](StripFence(raw))
	s.logger.Debug("collection extracted", "count", len(values))

	return values, nil
}

// ItemsOf asks the client and reconciles the full response into the ordered
// text/data item sequence.
func ItemsOf[T any](ctx context.Context, c Client, prompt string, opts ...Option) ([]stream.Item[T], error) {
	s := applySettings(opts)

	raw, err := c.AskRaw(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	items := stream.Build[T](raw)
	s.logger.Debug("response reconciled", "items", len(items))

	return items, nil
}

// Stream asks the client and yields items live as the response arrives.
// Clients without the Streamer capability fall back to one whole-response
// read reconciled after the fact; the item sequence is the same, only the
// timing differs.
func Stream[T any](ctx context.Context, c Client, prompt string, opts ...Option) iter.Seq2[stream.Item[T], error] {
	s := applySettings(opts)

	if streamer, ok := c.(Streamer); ok {
		return func(yield func(stream.Item[T], error) bool) {
			rc, err := streamer.StreamRaw(ctx, prompt)
			if err != nil {
				var zero stream.Item[T]
				yield(zero, fmt.Errorf("stream: %w", err))
				return
			}
			defer rc.Close()

			for item, err := range stream.Items[T](ctx, rc) {
				if !yield(item, err) {
					return
				}
			}
		}
	}

	s.logger.Debug("client has no streaming capability, falling back to one-shot")

	return func(yield func(stream.Item[T], error) bool) {
		items, err := ItemsOf[T](ctx, c, prompt)
		if err != nil {
			var zero stream.Item[T]
			yield(zero, err)
			return
		}
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// fenceRe matches a response that is one fenced code block, optionally
// tagged json.
var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*\n?(.*?)\n?\\s*```$")

// StripFence unwraps a response wrapped in a markdown code fence. Responses
// that are not a single fenced block are returned unchanged.
func StripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(trimmed); len(m) > 1 {
		return m[1]
	}

	return s
}

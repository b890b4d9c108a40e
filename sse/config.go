package sse

import (
	"fmt"

	"github.com/JuggernautLabs/semantic-query/errs"
)

// Config describes the provider-specific shape of the event protocol: how
// payload lines are marked, which payload ends the stream, and where inside
// the JSON envelope the token and completion fields live.
//
// Field paths are sequences of object keys and array indices, e.g. the
// OpenAI-compatible token path is {"choices", 0, "delta", "content"}. Paths
// are configuration, not structure: the aggregator core never hardcodes a
// provider's field names.
type Config struct {
	// DataPrefix marks an event's payload line, e.g. "data: ".
	DataPrefix string

	// DoneSentinel is the terminal payload value, e.g. "[DONE]". Empty means
	// the protocol has no sentinel and the stream ends at EOF.
	DoneSentinel string

	// TokenPath locates the incremental token string in a payload envelope.
	// Elements are string keys or int indices. Absence of the field on an
	// event is not an error; the event simply carries no token.
	TokenPath []any

	// FinishPath locates the natural-completion marker. An event whose
	// envelope holds a string at this path flushes the buffered text,
	// whatever the string's value is.
	FinishPath []any
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.DataPrefix == "" {
		return fmt.Errorf("%w: DataPrefix cannot be empty", errs.ErrInvalidConfig)
	}
	if len(c.TokenPath) == 0 {
		return fmt.Errorf("%w: TokenPath cannot be empty", errs.ErrInvalidConfig)
	}
	for _, path := range [][]any{c.TokenPath, c.FinishPath} {
		for _, seg := range path {
			switch seg.(type) {
			case string, int:
			default:
				return fmt.Errorf("%w: path segment %v must be a string key or int index", errs.ErrInvalidConfig, seg)
			}
		}
	}

	return nil
}

// OpenAI returns the configuration for OpenAI-compatible chat-completion
// streams (OpenAI, DeepSeek, and most aggregators): "data: " payload lines,
// a "[DONE]" sentinel, token text at choices[0].delta.content, and
// choices[0].finish_reason as the completion marker.
func OpenAI() Config {
	return Config{
		DataPrefix:   "data: ",
		DoneSentinel: "[DONE]",
		TokenPath:    []any{"choices", 0, "delta", "content"},
		FinishPath:   []any{"choices", 0, "finish_reason"},
	}
}

// Anthropic returns the configuration for Anthropic messages streams: token
// text at delta.text on content_block_delta events, delta.stop_reason as the
// completion marker, and no terminal sentinel (the stream ends at EOF).
func Anthropic() Config {
	return Config{
		DataPrefix: "data: ",
		TokenPath:  []any{"delta", "text"},
		FinishPath: []any{"delta", "stop_reason"},
	}
}

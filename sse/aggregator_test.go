package sse

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JuggernautLabs/semantic-query/errs"
	"github.com/JuggernautLabs/semantic-query/stream"
)

type toolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// payload builds an OpenAI-style delta event line for a single token.
func payload(t *testing.T, token string) string {
	t.Helper()
	envelope := map[string]any{
		"choices": []any{
			map[string]any{"delta": map[string]any{"content": token}},
		},
	}
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	return "data: " + string(raw)
}

// wire assembles protocol text: every line followed by the blank separator.
func wire(lines ...string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	return b.String()
}

func collect[T any](t *testing.T, a *Aggregator[T], input string) []stream.Item[T] {
	t.Helper()
	var items []stream.Item[T]
	for item, err := range a.Events(context.Background(), strings.NewReader(input)) {
		require.NoError(t, err)
		items = append(items, item)
	}

	return items
}

// nonTokens filters out the live-display token passthrough.
func nonTokens[T any](items []stream.Item[T]) []stream.Item[T] {
	var out []stream.Item[T]
	for _, item := range items {
		if item.Kind != stream.KindToken {
			out = append(out, item)
		}
	}

	return out
}

func TestAggregator_DetectsToolCallAcrossTokens(t *testing.T) {
	tokens := []string{`{`, `"name":"web_search",`, `"args":{"q":"tokio"}`, `}`}
	var lines []string
	for _, token := range tokens {
		lines = append(lines, payload(t, token))
	}
	lines = append(lines, "data: [DONE]")

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	items := collect(t, a, wire(lines...))

	// Every token is passed through in arrival order.
	var passthrough []string
	for _, item := range items {
		if item.Kind == stream.KindToken {
			passthrough = append(passthrough, item.Text)
		}
	}
	require.Equal(t, tokens, passthrough)

	rest := nonTokens(items)
	require.Len(t, rest, 1)
	require.Equal(t, stream.KindData, rest[0].Kind)
	require.Equal(t, "web_search", rest[0].Data.Name)
	require.Equal(t, "tokio", rest[0].Data.Args["q"])
}

func TestAggregator_TextAndCallsInterleaved(t *testing.T) {
	var lines []string
	push := func(tokens ...string) {
		for _, token := range tokens {
			lines = append(lines, payload(t, token))
		}
	}

	push("Intro paragraph about tokio.", "\n\n")
	push(`{`, `"name":"fetch_docs"`, `,`, `"args":{"q":"tokio runtime"}`, `}`)
	push(" Checking crates.io stats.", "\n\n")
	push(`{`, `"name":"fetch_repo"`, `,`, `"args":{"owner":"tokio-rs","filters":["open_issues","stars"]}`, `}`)
	push(` Note: "text with { braces } inside" should be fine.`, "\n\n")
	lines = append(lines, "data: [DONE]")

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, wire(lines...)))

	require.Len(t, rest, 5)

	require.Equal(t, stream.KindText, rest[0].Kind)
	require.Equal(t, "Intro paragraph about tokio.", rest[0].Text)

	require.Equal(t, stream.KindData, rest[1].Kind)
	require.Equal(t, "fetch_docs", rest[1].Data.Name)

	require.Equal(t, stream.KindText, rest[2].Kind)
	require.Equal(t, "Checking crates.io stats.", rest[2].Text)

	require.Equal(t, stream.KindData, rest[3].Kind)
	require.Equal(t, "fetch_repo", rest[3].Data.Name)
	require.Equal(t, []any{"open_issues", "stars"}, rest[3].Data.Args["filters"])

	require.Equal(t, stream.KindText, rest[4].Kind)
	require.Contains(t, rest[4].Text, "{ braces } inside")
}

func TestAggregator_TextBeforeStructureFlushesFirst(t *testing.T) {
	lines := []string{
		payload(t, "lead-in "),
		payload(t, `{"name":"x","args":{}}`),
		"data: [DONE]",
	}

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, wire(lines...)))

	require.Len(t, rest, 2)
	require.Equal(t, stream.KindText, rest[0].Kind)
	require.Equal(t, "lead-in", rest[0].Text)
	require.Equal(t, stream.KindData, rest[1].Kind)
}

func TestAggregator_FinishReasonFlushes(t *testing.T) {
	finishEvent := `data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`
	lines := []string{
		payload(t, "buffered tail text"),
		finishEvent,
		"data: [DONE]",
	}

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, wire(lines...)))

	require.Len(t, rest, 1)
	require.Equal(t, stream.KindText, rest[0].Kind)
	require.Equal(t, "buffered tail text", rest[0].Text)
}

func TestAggregator_DoneFlushesRemainder(t *testing.T) {
	lines := []string{
		payload(t, "never finished paragraph"),
		"data: [DONE]",
	}

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, wire(lines...)))

	require.Len(t, rest, 1)
	require.Equal(t, "never finished paragraph", rest[0].Text)
}

func TestAggregator_EOFWithoutSentinelFlushes(t *testing.T) {
	lines := []string{payload(t, "tail without done")}

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, wire(lines...)))

	require.Len(t, rest, 1)
	require.Equal(t, "tail without done", rest[0].Text)
}

func TestAggregator_TruncatedFinalEventStillCounts(t *testing.T) {
	// The stream cuts off right after the last payload line, before its
	// blank-line separator.
	input := wire(payload(t, "lead "), payload(t, `{"name":"x",`)) +
		payload(t, `"args":{}}`)

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, input))

	require.Len(t, rest, 2)
	require.Equal(t, stream.KindText, rest[0].Kind)
	require.Equal(t, "lead", rest[0].Text)
	require.Equal(t, stream.KindData, rest[1].Kind)
	require.Equal(t, "x", rest[1].Data.Name)
}

func TestAggregator_EventsWithoutTokensIgnored(t *testing.T) {
	lines := []string{
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		payload(t, "hello"),
		"data: [DONE]",
	}

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	items := collect(t, a, wire(lines...))

	var tokens int
	for _, item := range items {
		if item.Kind == stream.KindToken {
			tokens++
		}
	}
	require.Equal(t, 1, tokens)
}

func TestAggregator_MalformedEnvelopeSkipped(t *testing.T) {
	lines := []string{
		"data: {not json at all",
		payload(t, "ok"),
		"data: [DONE]",
	}

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, wire(lines...)))
	require.Len(t, rest, 1)
	require.Equal(t, "ok", rest[0].Text)
}

func TestAggregator_AnthropicShape(t *testing.T) {
	lines := []string{
		`event: message_start` + "\n" + `data: {"type":"message_start"}`,
		`event: content_block_delta` + "\n" + `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello "}}`,
		`event: content_block_delta` + "\n" + `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"world"}}`,
		`event: message_delta` + "\n" + `data: {"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
	}

	a, err := New[toolCall](Anthropic())
	require.NoError(t, err)
	rest := nonTokens(collect(t, a, wire(lines...)))

	require.Len(t, rest, 1)
	require.Equal(t, stream.KindText, rest[0].Kind)
	require.Equal(t, "Hello world", rest[0].Text)
}

func TestAggregator_SingleCharacterTokens(t *testing.T) {
	full := `pre {"name":"c","args":{}} post`
	var lines []string
	for _, r := range full {
		lines = append(lines, payload(t, string(r)))
	}
	lines = append(lines, "data: [DONE]")

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	items := collect(t, a, wire(lines...))

	var passthrough strings.Builder
	for _, item := range items {
		if item.Kind == stream.KindToken {
			passthrough.WriteString(item.Text)
		}
	}
	require.Equal(t, full, passthrough.String(), "tokens echo the full raw text")

	rest := nonTokens(items)
	require.Len(t, rest, 3)
	require.Equal(t, "pre", rest[0].Text)
	require.Equal(t, stream.KindData, rest[1].Kind)
	require.Equal(t, "c", rest[1].Data.Name)
	require.Equal(t, "post", rest[2].Text)
}

func TestAggregator_ConfigValidation(t *testing.T) {
	_, err := New[toolCall](Config{})
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New[toolCall](Config{DataPrefix: "data: "})
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New[toolCall](Config{
		DataPrefix: "data: ",
		TokenPath:  []any{"a", 1.5},
	})
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New[toolCall](OpenAI(), WithLogger(nil))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestAggregator_SecondEventsCallFails(t *testing.T) {
	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)

	collect(t, a, wire("data: [DONE]"))

	for _, err := range a.Events(context.Background(), strings.NewReader("")) {
		require.Error(t, err)
		return
	}
	t.Fatal("expected an error from the second Events call")
}

func TestAggregator_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := New[toolCall](OpenAI())
	require.NoError(t, err)
	for _, err := range a.Events(ctx, strings.NewReader(wire(payload(t, "x")))) {
		require.ErrorIs(t, err, context.Canceled)
		return
	}
	t.Fatal("expected a context error")
}

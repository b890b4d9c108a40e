package semanticquery

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JuggernautLabs/semantic-query/sse"
	"github.com/JuggernautLabs/semantic-query/stream"
)

type task struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestStructures(t *testing.T) {
	nodes := Structures(`a {"x": 1} b [2, 3]`)
	require.Len(t, nodes, 2)
	require.Equal(t, `{"x": 1}`, nodes[0].Slice(`a {"x": 1} b [2, 3]`))
}

func TestFirstAndAll(t *testing.T) {
	reply := `Plan: [{"id": 1, "title": "dig"}, {"id": 2, "title": "fill"}]`

	first, err := First[task](reply)
	require.NoError(t, err)
	require.Equal(t, 1, first.ID)

	all := All[task](reply)
	require.Len(t, all, 2)
	require.Equal(t, "fill", all[1].Title)
}

func TestItems(t *testing.T) {
	items := Items[task](`before {"id": 7, "title": "ship"} after`)
	require.Len(t, items, 3)
	require.Equal(t, stream.KindData, items[1].Kind)
	require.Equal(t, "ship", items[1].Data.Title)
}

func TestStreamItems(t *testing.T) {
	r := strings.NewReader(`note {"id": 9, "title": "go"}`)

	var items []stream.Item[task]
	for item, err := range StreamItems[task](context.Background(), r) {
		require.NoError(t, err)
		items = append(items, item)
	}
	require.Len(t, items, 2)
	require.Equal(t, 9, items[1].Data.ID)
}

func TestEventStream(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"{\"id\": 3, "}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"\"title\": \"end\"}"}}]}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	agg, err := EventStream[task](sse.OpenAI())
	require.NoError(t, err)

	var data []task
	for item, err := range agg.Events(context.Background(), strings.NewReader(body)) {
		require.NoError(t, err)
		if item.Kind == stream.KindData {
			data = append(data, item.Data)
		}
	}
	require.Len(t, data, 1)
	require.Equal(t, "end", data[0].Title)
}

package decision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelia/pkg/graph"
	"aurelia/pkg/llm"
	"aurelia/pkg/memory"
	"aurelia/pkg/message"
)

type fakeStore struct{}

func (fakeStore) LoadLatestMemorySnapshot(_ context.Context) (string, bool) { return "", false }
func (fakeStore) RecentConversations(_ context.Context, _ int, _ memory.Order) ([]memory.Conversation, error) {
	return nil, nil
}
func (fakeStore) AppendConversationMessage(_ context.Context, _ string, _ memory.Sender, _ string, _ map[string]any) error {
	return nil
}

type fakeAdapter struct {
	response string
	err      error
}

func (f *fakeAdapter) Chat(_ context.Context, _ llm.ChatRequest) (string, error) {
	return f.response, f.err
}

func newNode(adapter llm.ProviderAdapter) *Node {
	return &Node{
		Client:   llm.NewClient(""),
		Provider: adapter,
		Model:    "test-model",
		Store:    fakeStore{},
	}
}

func withHello(ctx context.Context) context.Context {
	return WithTurnInputs(ctx, TurnInputs{Text: "hello"})
}

func TestHandle_SimpleReply(t *testing.T) {
	adapter := &fakeAdapter{response: `{
		"input_processing": {"file_content_description": "", "combined_understanding": "greeting"},
		"planning": {"requires_tool": false, "tool_name": null, "reasoning": "no tool needed"},
		"response": "hi!",
		"inactivity_timeout": 60
	}`}
	n := newNode(adapter)

	out, err := n.Handle(withHello(context.Background()), graph.State{})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "hi!", out.Response)
	assert.Equal(t, graph.Terminator, out.NextNode)
	assert.Equal(t, 60, out.InactivityTimeout)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, message.KindHuman, out.Messages[0].Kind)
	assert.Equal(t, message.KindAssistant, out.Messages[1].Kind)
}

func TestHandle_RoutesToKnownTool(t *testing.T) {
	adapter := &fakeAdapter{response: `{
		"input_processing": {"file_content_description": "", "combined_understanding": "wants weather"},
		"planning": {"requires_tool": true, "tool_name": "weather_search", "reasoning": "needs live data"},
		"response": "",
		"inactivity_timeout": 30
	}`}
	n := newNode(adapter)

	state := graph.State{AvailableNodes: map[string]graph.NodeInfo{
		"weather_search": {Name: "weather_search"},
	}}
	out, err := n.Handle(withHello(context.Background()), state)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "weather_search", out.NextNode)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, message.KindSystem, out.Messages[1].Kind)
}

func TestHandle_UnknownToolFallsBack(t *testing.T) {
	adapter := &fakeAdapter{response: `{
		"input_processing": {"file_content_description": "", "combined_understanding": "wants x"},
		"planning": {"requires_tool": true, "tool_name": "nonexistent", "reasoning": "r"},
		"response": "",
		"inactivity_timeout": 30
	}`}
	n := newNode(adapter)

	out, err := n.Handle(withHello(context.Background()), graph.State{})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, graph.Terminator, out.NextNode)
	assert.NotEmpty(t, out.Response)
}

func TestHandle_EmptyResponseIsFailure(t *testing.T) {
	adapter := &fakeAdapter{response: `{
		"input_processing": {"file_content_description": "", "combined_understanding": "u"},
		"planning": {"requires_tool": false, "tool_name": null, "reasoning": "r"},
		"response": "",
		"inactivity_timeout": 60
	}`}
	n := newNode(adapter)

	out, err := n.Handle(withHello(context.Background()), graph.State{})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "empty response", out.Error)
}

func TestHandle_SchemaViolationProducesApology(t *testing.T) {
	adapter := &fakeAdapter{response: `"hello!"`}
	n := newNode(adapter)

	out, err := n.Handle(withHello(context.Background()), graph.State{})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Response)
	assert.Equal(t, graph.Terminator, out.NextNode)
}

func TestHandle_EntrySideSkipsHumanAfterTool(t *testing.T) {
	adapter := &fakeAdapter{response: `{
		"input_processing": {"file_content_description": "", "combined_understanding": "u"},
		"planning": {"requires_tool": false, "tool_name": null, "reasoning": "r"},
		"response": "done",
		"inactivity_timeout": 60
	}`}
	n := newNode(adapter)

	toolMsg := message.NewTool("weather_search", "weather_search", "sunny")
	state := graph.State{Messages: []message.Message{toolMsg}}

	out, err := n.Handle(withHello(context.Background()), state)
	require.NoError(t, err)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, message.KindTool, out.Messages[0].Kind)
	assert.Equal(t, message.KindAssistant, out.Messages[1].Kind)
}

func TestHandle_LoopPreventionExcludesLastTool(t *testing.T) {
	adapter := &capturingAdapter{response: `{
		"input_processing": {"file_content_description": "", "combined_understanding": "u"},
		"planning": {"requires_tool": false, "tool_name": null, "reasoning": "r"},
		"response": "done",
		"inactivity_timeout": 60
	}`}
	n := newNode(adapter)

	toolMsg := message.NewTool("weather_search", "weather_search", "sunny")
	state := graph.State{
		Messages:       []message.Message{toolMsg},
		AvailableNodes: map[string]graph.NodeInfo{"weather_search": {Name: "weather_search"}, "memory_search": {Name: "memory_search"}},
	}

	out, err := n.Handle(withHello(context.Background()), state)
	require.NoError(t, err)
	_, stillThere := out.AvailableNodes["weather_search"]
	assert.False(t, stillThere)
	_, memoryThere := out.AvailableNodes["memory_search"]
	assert.True(t, memoryThere)
	assert.NotEmpty(t, adapter.lastReq.Messages)
}

type capturingAdapter struct {
	response string
	lastReq  llm.ChatRequest
}

func (c *capturingAdapter) Chat(_ context.Context, req llm.ChatRequest) (string, error) {
	c.lastReq = req
	return c.response, nil
}

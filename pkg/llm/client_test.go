package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelia/pkg/message"
)

type fakeAdapter struct {
	response string
	err      error
	lastReq  ChatRequest
}

func (f *fakeAdapter) Chat(_ context.Context, req ChatRequest) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

func TestInvoke_Success(t *testing.T) {
	adapter := &fakeAdapter{response: "```json\n{\"response\": \"hi\", \"inactivity_timeout\": 60}\n```"}
	c := NewClient(t.TempDir())

	out, err := c.Invoke(context.Background(), InvokeOptions{
		Messages: []message.Message{message.NewHuman("unified_response", "hello")},
		Provider: adapter,
		APIName:  "decision",
	})

	require.NoError(t, err)
	assert.Equal(t, "hi", out["response"])
}

func TestInvoke_ProviderError(t *testing.T) {
	adapter := &fakeAdapter{err: errors.New("503 upstream")}
	c := NewClient(t.TempDir())

	_, err := c.Invoke(context.Background(), InvokeOptions{
		Messages: []message.Message{message.NewHuman("unified_response", "hello")},
		Provider: adapter,
		APIName:  "decision",
	})

	require.Error(t, err)
}

func TestInvoke_SchemaViolation(t *testing.T) {
	adapter := &fakeAdapter{response: `{"response": "hi"}`}
	c := NewClient(t.TempDir())

	_, err := c.Invoke(context.Background(), InvokeOptions{
		Messages: []message.Message{message.NewHuman("unified_response", "hello")},
		Provider: adapter,
		APIName:  "decision",
		Schema:   []byte(`{"type":"object","required":["inactivity_timeout"]}`),
	})

	require.Error(t, err)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
}

func TestInvoke_DownconvertsToolMessages(t *testing.T) {
	adapter := &fakeAdapter{response: `{"ok": true}`}
	c := NewClient(t.TempDir())

	msgs := []message.Message{
		message.NewHuman("unified_response", "weather in tokyo?"),
		message.NewTool("weather_search", "weather_search", "sunny, 20C"),
	}

	_, err := c.Invoke(context.Background(), InvokeOptions{
		Messages: msgs,
		Provider: adapter,
		APIName:  "decision",
	})
	require.NoError(t, err)

	var sawToolAsSystem bool
	for _, m := range adapter.lastReq.Messages {
		if m.Role == "system" && m.Text == "Tool \"weather_search\" result:\nsunny, 20C" {
			sawToolAsSystem = true
		}
	}
	assert.True(t, sawToolAsSystem)
}

func TestInvoke_AttachesImagesOnlyToLatestHuman(t *testing.T) {
	adapter := &fakeAdapter{response: `{"ok": true}`}
	c := NewClient(t.TempDir())

	msgs := []message.Message{
		message.NewHuman("unified_response", "first"),
		message.NewAssistant("unified_response", "reply"),
		message.NewHuman("unified_response", "second"),
	}
	files := []message.FileDescriptor{
		{Filename: "a.png", Kind: message.FileKindImage, Mime: "image/png", Bytes: []byte("fake")},
	}

	_, err := c.Invoke(context.Background(), InvokeOptions{
		Messages: msgs,
		Files:    files,
		Provider: adapter,
		APIName:  "decision",
	})
	require.NoError(t, err)

	imagesSeen := 0
	for i, m := range adapter.lastReq.Messages {
		if len(m.Images) > 0 {
			imagesSeen++
			assert.Equal(t, "second", adapter.lastReq.Messages[i].Text)
		}
	}
	assert.Equal(t, 1, imagesSeen)
}

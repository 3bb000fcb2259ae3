// Package ollama is a reference ProviderAdapter over the official
// Ollama API client, simplified to a single non-streaming call.
package ollama

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ollama/ollama/api"

	"aurelia/pkg/llm"
)

// Adapter wraps api.Client as a llm.ProviderAdapter.
type Adapter struct {
	client *api.Client
}

// New builds an Adapter against baseURL (a local or remote Ollama
// server).
func New(baseURL string) (*Adapter, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid base URL: %w", err)
	}
	return &Adapter{client: api.NewClient(u, nil)}, nil
}

// Chat implements llm.ProviderAdapter.
func (a *Adapter) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	stream := false
	apiReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
		Stream:   &stream,
	}

	var out string
	err := a.client.Chat(ctx, apiReq, func(resp api.ChatResponse) error {
		out = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: chat failed: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("ollama: empty response")
	}
	return out, nil
}

func convertMessages(msgs []llm.ProviderMessage) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		role := m.Role
		if role == "" {
			role = "user"
		}
		am := api.Message{Role: role, Content: m.Text}
		for _, img := range m.Images {
			am.Images = append(am.Images, img.Data)
		}
		out = append(out, am)
	}
	return out
}

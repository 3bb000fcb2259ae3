// Package gemini is a reference ProviderAdapter over Google's genai
// SDK, simplified to a single non-streaming call.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"aurelia/pkg/llm"
)

// Adapter wraps genai.Client as a llm.ProviderAdapter.
type Adapter struct {
	client *genai.Client
}

// New builds an Adapter against the public Gemini API.
func New(ctx context.Context, apiKey string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &Adapter{client: client}, nil
}

// Chat implements llm.ProviderAdapter.
func (a *Adapter) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	contents, systemInstruction := convertMessages(req.Messages)

	resp, err := a.client.Models.GenerateContent(ctx, req.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

func convertMessages(msgs []llm.ProviderMessage) ([]*genai.Content, *genai.Content) {
	var systemParts []*genai.Part
	var contents []*genai.Content

	for _, m := range msgs {
		switch m.Role {
		case "system":
			systemParts = append(systemParts, genai.NewPartFromText(m.Text))
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleModel))
		default: // "user"
			parts := []*genai.Part{genai.NewPartFromText(m.Text)}
			for _, img := range m.Images {
				parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
		}
	}

	var systemInstruction *genai.Content
	if len(systemParts) > 0 {
		systemInstruction = genai.NewContentFromParts(systemParts, genai.RoleUser)
	}
	return contents, systemInstruction
}

// Package openai is a reference ProviderAdapter over the official
// OpenAI Go SDK, simplified to a single non-streaming call — the
// core's llm.Client is non-streaming end to end.
package openai

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"aurelia/pkg/llm"
)

// Adapter wraps the OpenAI chat-completions endpoint as a
// llm.ProviderAdapter.
type Adapter struct {
	client *openai.Client
}

// New builds an Adapter. baseURL overrides the default endpoint for
// OpenAI-compatible providers (e.g. a local gateway); empty uses the
// SDK default.
func New(apiKey, baseURL string) *Adapter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &Adapter{client: &client}
}

// Chat implements llm.ProviderAdapter.
func (a *Adapter) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: convertMessages(req.Messages),
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(msgs []llm.ProviderMessage) []openai.ChatCompletionMessageParamUnion {
	items := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			items = append(items, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{OfString: openai.String(m.Text)},
				},
			})
		case "assistant":
			items = append(items, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(m.Text)},
				},
			})
		default: // "user"
			if len(m.Images) == 0 {
				items = append(items, openai.ChatCompletionMessageParamUnion{
					OfUser: &openai.ChatCompletionUserMessageParam{
						Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(m.Text)},
					},
				})
				continue
			}
			parts := []openai.ChatCompletionContentPartUnionParam{
				{OfText: &openai.ChatCompletionContentPartTextParam{Text: m.Text}},
			}
			for _, img := range m.Images {
				parts = append(parts, openai.ChatCompletionContentPartUnionParam{
					OfImageURL: &openai.ChatCompletionContentPartImageParam{
						ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: llm.DataURI(img)},
					},
				})
			}
			items = append(items, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts},
				},
			})
		}
	}
	return items
}

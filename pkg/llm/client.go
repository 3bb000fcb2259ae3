package llm

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"aurelia/pkg/message"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// InvokeOptions bundles one structured LLM call's inputs.
type InvokeOptions struct {
	Messages      []message.Message
	SystemPrompts []string
	Files         []message.FileDescriptor
	Provider      ProviderAdapter
	Model         string
	Params        map[string]any
	Schema        []byte // JSON Schema document; nil skips validation
	APIName       string // tag for the request/response log
}

// Client is the provider-agnostic invocation entry point. It never
// imports a concrete provider SDK — that's the
// adapters' job — and it always persists a request/response log,
// success or failure, with credentials redacted.
type Client struct {
	logger *RequestLog
}

// NewClient builds a Client that writes request/response logs under
// logDir. A nil/empty logDir disables logging writes (logger still
// reports failures via slog).
func NewClient(logDir string) *Client {
	return &Client{logger: NewRequestLog(logDir)}
}

// Invoke converts state into the provider's chat shape, calls it, and
// extracts + (optionally) schema-validates a JSON object from the raw
// reply.
func (c *Client) Invoke(ctx context.Context, opts InvokeOptions) (map[string]any, error) {
	req := ChatRequest{
		Messages: convertMessages(opts.SystemPrompts, opts.Messages, opts.Files),
		Model:    opts.Model,
		Params:   opts.Params,
	}

	raw, callErr := opts.Provider.Chat(ctx, req)
	c.logger.Record(opts.APIName, req, raw, callErr)
	if callErr != nil {
		return nil, fmt.Errorf("llm: provider call failed: %w", callErr)
	}

	jsonBody, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("llm: no JSON found in response: %w", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(jsonBody), &parsed); err != nil {
		return nil, fmt.Errorf("llm: response is not a JSON object: %w", err)
	}

	if len(opts.Schema) > 0 {
		if err := ValidateSchema(parsed, opts.Schema); err != nil {
			return nil, err
		}
	}

	slog.Debug("llm: invocation succeeded", "api", opts.APIName, "model", opts.Model)
	return parsed, nil
}

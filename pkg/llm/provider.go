// Package llm implements the provider-agnostic invocation contract the
// unified decision node (and, incidentally, any future LLM-backed node)
// calls through: convert the running transcript to a provider's chat
// shape, invoke it, extract and schema-validate a JSON object from the
// raw reply. Concrete provider wiring lives in pkg/llm/adapters/*; this
// package never imports a provider SDK directly.
package llm

import "context"

// ImageAttachment is one inline image to send alongside a chat turn.
type ImageAttachment struct {
	MimeType string
	Data     []byte
}

// ProviderMessage is the provider-facing chat turn shape every
// ProviderAdapter consumes. Only the most recent user turn ever
// carries Images — see Client.Invoke.
type ProviderMessage struct {
	Role   string // "system", "user", "assistant"
	Text   string
	Images []ImageAttachment
}

// ChatRequest is what Client hands to a ProviderAdapter.
type ChatRequest struct {
	Messages []ProviderMessage
	Model    string
	Params   map[string]any
}

// ProviderAdapter is the external collaborator boundary: a concrete
// LLM provider SDK wrapped down to a single non-streaming call. Chat
// returns the raw response body; parsing and schema validation are the
// Client's job, not the adapter's.
type ProviderAdapter interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

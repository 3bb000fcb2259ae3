// Package message defines the turn's wire-level vocabulary: the four
// message variants the graph executor and the unified decision node
// pass between each other, and the structural validator the executor
// runs after every node call.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the four message variants the core understands.
type Kind string

const (
	KindHuman     Kind = "human"
	KindAssistant Kind = "assistant"
	KindSystem    Kind = "system"
	KindTool      Kind = "tool"
)

// NodeKind classifies the node that produced a message, carried in its
// Provenance so downstream prompts and logs can tell user-facing
// replies apart from internal bookkeeping and service calls.
type NodeKind string

const (
	NodeKindUserFacing NodeKind = "user_facing"
	NodeKindInternal   NodeKind = "internal"
	NodeKindService    NodeKind = "service"
)

// Provenance is required on every message: which node produced it, what
// kind of node that was, and when.
type Provenance struct {
	NodeName  string    `json:"node_name"`
	NodeKind  NodeKind  `json:"node_kind"`
	Timestamp time.Time `json:"timestamp"`
}

// PartType discriminates the pieces of a human message's content.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// ContentPart is one element of a human message's content list. Only
// human messages are multipart; every other kind carries plain text.
type ContentPart struct {
	Type PartType `json:"type"`
	Text string   `json:"text,omitempty"`
	// ImageData is the raw attachment payload when Type is PartImage.
	// It is never persisted — see FileDescriptor.Bytes for the same rule.
	ImageData []byte `json:"-"`
	MimeType  string `json:"mime_type,omitempty"`
}

// Message is the append-only unit of the turn transcript.
type Message struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Text       string         `json:"text,omitempty"`
	Parts      []ContentPart  `json:"parts,omitempty"`
	Provenance Provenance     `json:"provenance"`
	Extra      map[string]any `json:"extra,omitempty"`

	// ToolName and ToolCallID are only meaningful on a Kind == KindTool message.
	ToolName   string `json:"tool_name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// New constructs a message with a fresh ID and the given provenance
// fields stamped at the current time.
func New(kind Kind, nodeName string, nodeKind NodeKind) Message {
	return Message{
		ID:   uuid.NewString(),
		Kind: kind,
		Provenance: Provenance{
			NodeName:  nodeName,
			NodeKind:  nodeKind,
			Timestamp: time.Now(),
		},
		Extra: make(map[string]any),
	}
}

// NewHuman builds a human message from plain text plus optional parts.
func NewHuman(nodeName string, text string, parts ...ContentPart) Message {
	m := New(KindHuman, nodeName, NodeKindUserFacing)
	if text != "" {
		parts = append([]ContentPart{{Type: PartText, Text: text}}, parts...)
	}
	m.Parts = parts
	return m
}

// NewAssistant builds a user-facing assistant reply.
func NewAssistant(nodeName string, text string) Message {
	m := New(KindAssistant, nodeName, NodeKindUserFacing)
	m.Text = text
	return m
}

// NewSystem builds an internal bookkeeping message (e.g. a routing
// decision annotation).
func NewSystem(nodeName string, text string) Message {
	m := New(KindSystem, nodeName, NodeKindInternal)
	m.Text = text
	return m
}

// NewTool builds a tool-result message with a fresh tool_call_id.
func NewTool(nodeName, toolName, text string) Message {
	m := New(KindTool, nodeName, NodeKindService)
	m.Text = text
	m.ToolName = toolName
	m.ToolCallID = uuid.NewString()
	return m
}

// GetText returns Text for non-human messages, or the concatenation of
// the text parts for human messages.
func (m Message) GetText() string {
	if m.Kind != KindHuman {
		return m.Text
	}
	var out string
	for _, p := range m.Parts {
		if p.Type == PartText {
			out += p.Text
		}
	}
	return out
}

// HasImages reports whether a human message carries any image parts.
func (m Message) HasImages() bool {
	for _, p := range m.Parts {
		if p.Type == PartImage {
			return true
		}
	}
	return false
}

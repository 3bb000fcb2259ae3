// Package graph implements the node-graph executor: the state machine
// that drives a turn's state through named node handlers, validating,
// snapshotting, retrying, and rolling back on failure.
package graph

import (
	"context"

	"aurelia/pkg/message"
)

// Terminator is the sentinel next-node value that ends a turn.
const Terminator = "end"

// UnifiedDecisionNode is the name every tool node routes back to, and
// the node the executor always starts a turn at regardless of what
// the caller seeded NextNode with.
const UnifiedDecisionNode = "unified_response"

// NodeInfo is the catalog entry for one node: its identity, its
// capability/IO metadata, and the handler that runs it. Handler is
// stripped by registry.ListPublic before the catalog is shown to the
// decision node.
type NodeInfo struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Capabilities       []string `json:"capabilities"`
	InputRequirements  []string `json:"input_requirements"`
	OutputFields       []string `json:"output_fields"`
	Handler            Handler  `json:"-"`
}

// Handler is a node's processing function: it takes the current turn
// state and returns the next one. A non-nil error or a State.Success
// left false is a transient failure the executor will retry.
type Handler func(ctx context.Context, state State) (State, error)

// State is the unit the executor moves between nodes: everything a
// turn carries from the moment it enters the graph to the moment it
// terminates.
type State struct {
	InputText          string
	Files              []message.FileDescriptor
	ProcessedInput     string
	Messages           []message.Message
	AvailableNodes     map[string]NodeInfo
	NextNode           string
	Response           string
	InactivityTimeout  int
	IsAutoResponse     bool
	IsInactivityRemind bool

	Success bool
	Error   string
}

// Clone makes a deep-enough copy of State for pre-call snapshotting and
// rollback: message and file slices are copied so a failed handler's
// in-place mutations can never leak into the restored state.
func (s State) Clone() State {
	cp := s
	cp.Files = append([]message.FileDescriptor(nil), s.Files...)
	cp.Messages = append([]message.Message(nil), s.Messages...)
	if s.AvailableNodes != nil {
		cp.AvailableNodes = make(map[string]NodeInfo, len(s.AvailableNodes))
		for k, v := range s.AvailableNodes {
			cp.AvailableNodes[k] = v
		}
	}
	return cp
}

// LastToolName returns the name of the most recent tool message in the
// transcript, or "" if none. Used by the decision node for the
// loop-prevention rule: a tool never gets routed straight back to
// itself.
func (s State) LastToolName() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Kind == message.KindTool {
			return s.Messages[i].ToolName
		}
	}
	return ""
}

// LastMessageKind returns the Kind of the most recent message, or ""
// if the transcript is empty.
func (s State) LastMessageKind() message.Kind {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Kind
}

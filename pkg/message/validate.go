package message

import "fmt"

// ShapeError reports a structural defect in a message or message list.
// It is purely structural — it never inspects message content, only
// the presence of each message's required fields.
type ShapeError struct {
	Index  int
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("message shape error: %s", e.Reason)
	}
	return fmt.Sprintf("message shape error at index %d: %s", e.Index, e.Reason)
}

// Validate checks a single message's shape: a known Kind, and a
// Provenance with all three fields present. It performs no semantic
// checks on Text, Parts, or Extra.
func Validate(m Message) error {
	switch m.Kind {
	case KindHuman, KindAssistant, KindSystem, KindTool:
	default:
		return &ShapeError{Index: -1, Reason: fmt.Sprintf("unknown message kind %q", m.Kind)}
	}

	if m.Provenance.NodeName == "" {
		return &ShapeError{Index: -1, Reason: "provenance.node_name is missing"}
	}
	switch m.Provenance.NodeKind {
	case NodeKindUserFacing, NodeKindInternal, NodeKindService:
	default:
		return &ShapeError{Index: -1, Reason: fmt.Sprintf("provenance.node_kind %q is missing or invalid", m.Provenance.NodeKind)}
	}
	if m.Provenance.Timestamp.IsZero() {
		return &ShapeError{Index: -1, Reason: "provenance.timestamp is missing"}
	}

	if m.Kind == KindTool {
		if m.ToolName == "" {
			return &ShapeError{Index: -1, Reason: "tool message missing tool_name"}
		}
		if m.ToolCallID == "" {
			return &ShapeError{Index: -1, Reason: "tool message missing tool_call_id"}
		}
	}

	return nil
}

// ValidateAll validates every message in sequence, attaching the
// offending index to the first failure so the caller (the graph
// executor) can report exactly which message broke shape.
func ValidateAll(msgs []Message) error {
	for i, m := range msgs {
		if err := Validate(m); err != nil {
			var se *ShapeError
			if asShapeError(err, &se) {
				se.Index = i
				return se
			}
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

func asShapeError(err error, target **ShapeError) bool {
	se, ok := err.(*ShapeError)
	if !ok {
		return false
	}
	*target = se
	return true
}

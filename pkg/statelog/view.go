package statelog

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"aurelia/pkg/graph"
	"aurelia/pkg/message"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// nodeInfoView is the serializable projection of graph.NodeInfo: the
// Handler func is dropped because neither gob nor JSON can (or should)
// carry a function value into a diagnostic snapshot.
type nodeInfoView struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Capabilities      []string `json:"capabilities"`
	InputRequirements []string `json:"input_requirements"`
	OutputFields      []string `json:"output_fields"`
}

// view is the serializable projection of graph.State used by both the
// binary and structured snapshot artifacts. Building it once keeps
// "no raw file bytes in snapshots" and "no handler funcs in snapshots"
// enforced in a single place regardless of which artifact is being
// written.
type view struct {
	InputText          string                    `json:"input_text"`
	Files              []message.FileDescriptor  `json:"files"`
	ProcessedInput     string                    `json:"processed_input"`
	Messages           []message.Message         `json:"messages"`
	AvailableNodes     map[string]nodeInfoView   `json:"available_nodes"`
	NextNode           string                    `json:"next_node"`
	Response           string                    `json:"response"`
	InactivityTimeout  int                       `json:"inactivity_timeout"`
	IsAutoResponse     bool                      `json:"is_auto_response"`
	IsInactivityRemind bool                      `json:"is_inactivity_reminder"`
	Success            bool                      `json:"success"`
	Error              string                    `json:"error,omitempty"`
}

func newView(s graph.State) view {
	files := make([]message.FileDescriptor, len(s.Files))
	for i, f := range s.Files {
		f.Bytes = nil
		files[i] = f
	}

	msgs := make([]message.Message, len(s.Messages))
	for i, m := range s.Messages {
		if len(m.Parts) > 0 {
			parts := make([]message.ContentPart, len(m.Parts))
			for j, p := range m.Parts {
				p.ImageData = nil
				parts[j] = p
			}
			m.Parts = parts
		}
		msgs[i] = m
	}

	nodes := make(map[string]nodeInfoView, len(s.AvailableNodes))
	for name, info := range s.AvailableNodes {
		nodes[name] = nodeInfoView{
			Name:              info.Name,
			Description:       info.Description,
			Capabilities:      info.Capabilities,
			InputRequirements: info.InputRequirements,
			OutputFields:      info.OutputFields,
		}
	}

	return view{
		InputText:          s.InputText,
		Files:               files,
		ProcessedInput:      s.ProcessedInput,
		Messages:            msgs,
		AvailableNodes:      nodes,
		NextNode:            s.NextNode,
		Response:            s.Response,
		InactivityTimeout:   s.InactivityTimeout,
		IsAutoResponse:      s.IsAutoResponse,
		IsInactivityRemind:  s.IsInactivityRemind,
		Success:             s.Success,
		Error:               s.Error,
	}
}

// structuredJSON marshals the view for human inspection. Extra map
// values on messages that fail to marshal cleanly (e.g. a value the
// jsoniter encoder can't reflect into JSON) are replaced with their Go
// type name rather than aborting the whole snapshot.
func (v view) structuredJSON() ([]byte, error) {
	safe := v
	safe.Messages = make([]message.Message, len(v.Messages))
	for i, m := range v.Messages {
		safe.Messages[i] = sanitizeExtra(m)
	}
	return json.MarshalIndent(safe, "", "  ")
}

func sanitizeExtra(m message.Message) message.Message {
	if len(m.Extra) == 0 {
		return m
	}
	clean := make(map[string]any, len(m.Extra))
	for k, v := range m.Extra {
		if _, err := json.Marshal(v); err != nil {
			clean[k] = fmt.Sprintf("<%T>", v)
			continue
		}
		clean[k] = v
	}
	m.Extra = clean
	return m
}

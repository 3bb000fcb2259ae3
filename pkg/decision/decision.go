// Package decision implements the unified decision node: the single
// LLM-backed node that interprets input, decides whether a tool is
// needed, produces a reply, and picks the next inactivity timeout, all
// from one structured call.
package decision

import (
	"context"
	"fmt"
	"time"

	"aurelia/pkg/graph"
	"aurelia/pkg/llm"
	"aurelia/pkg/memory"
	"aurelia/pkg/message"
)

const placeholderInput = "(no response)"

// TurnInputs carries the per-turn text/files kept off the serialized
// state, rather than re-serialized at every step. Go has no
// thread-local storage, so the turn coordinator attaches TurnInputs to
// the per-call context instead via WithTurnInputs — the idiomatic
// per-request scratch space, and safe across concurrent turns.
type TurnInputs struct {
	Text  string
	Files []message.FileDescriptor
}

type turnInputsKey struct{}

// WithTurnInputs attaches this turn's text/files to ctx.
func WithTurnInputs(ctx context.Context, in TurnInputs) context.Context {
	return context.WithValue(ctx, turnInputsKey{}, in)
}

func turnInputsFromContext(ctx context.Context) TurnInputs {
	in, _ := ctx.Value(turnInputsKey{}).(TurnInputs)
	return in
}

// Node wires the decision node's dependencies. Build one per process
// and register its Handle method under graph.UnifiedDecisionNode.
type Node struct {
	Client   *llm.Client
	Provider llm.ProviderAdapter
	Model    string
	Store    memory.Store

	// Persona overrides the default assistant personality when set,
	// sourced from config.json's system_prompt field.
	Persona                  string
	RecentConversationsLimit int
}

// Handle implements graph.Handler.
func (n *Node) Handle(ctx context.Context, s graph.State) (graph.State, error) {
	inputs := turnInputsFromContext(ctx)
	text := inputs.Text
	files := inputs.Files

	if s.IsInactivityRemind && text == "" {
		text = placeholderInput
	}

	s = appendEntryHumanMessage(s, text, files)

	available := filterLoopPrevention(s)
	s.AvailableNodes = available

	snapshot, haveSnapshot := n.Store.LoadLatestMemorySnapshot(ctx)
	limit := n.RecentConversationsLimit
	if limit <= 0 {
		limit = 5
	}
	recent, _ := n.Store.RecentConversations(ctx, limit, memory.OrderOldestFirst)

	systemPrompts := buildSystemPrompts(n.Persona, s.IsInactivityRemind, time.Now(), snapshot, haveSnapshot, recent, outputFormatBlock())

	parsed, err := n.Client.Invoke(ctx, llm.InvokeOptions{
		Messages:      s.Messages,
		SystemPrompts: systemPrompts,
		Files:         files,
		Provider:      n.Provider,
		Model:         n.Model,
		Schema:        []byte(outputSchema),
		APIName:       "unified_decision",
	})
	if err != nil {
		return fallbackApology(s, err), nil
	}

	return applyOutput(s, parsed, files)
}

// appendEntryHumanMessage implements the entry-side invariant: a human
// message is appended on entry except when the transcript's last
// message is a tool message (the turn is continuing a tool round-trip).
func appendEntryHumanMessage(s graph.State, text string, files []message.FileDescriptor) graph.State {
	if s.LastMessageKind() == message.KindTool {
		return s
	}
	parts := make([]message.ContentPart, 0, len(files))
	for _, f := range files {
		if f.Kind == message.FileKindImage {
			parts = append(parts, message.ContentPart{Type: message.PartImage, ImageData: f.Bytes, MimeType: f.Mime})
		}
	}
	s.Messages = append(s.Messages, message.NewHuman(graph.UnifiedDecisionNode, text, parts...))
	return s
}

// filterLoopPrevention excludes the tool that produced the most recent
// tool message from the available-tools set, so the decision node
// never routes a tool straight back to itself.
func filterLoopPrevention(s graph.State) map[string]graph.NodeInfo {
	last := s.LastToolName()
	if last == "" {
		return s.AvailableNodes
	}
	out := make(map[string]graph.NodeInfo, len(s.AvailableNodes))
	for name, info := range s.AvailableNodes {
		if name == last {
			continue
		}
		out[name] = info
	}
	return out
}

func fallbackApology(s graph.State, cause error) graph.State {
	s.Messages = append(s.Messages, message.NewAssistant(graph.UnifiedDecisionNode, "I'm sorry, I had trouble understanding that. Could you try again?"))
	s.Response = "I'm sorry, I had trouble understanding that. Could you try again?"
	s.NextNode = graph.Terminator
	s.Success = false
	s.Error = fmt.Sprintf("decision: %v", cause)
	return s
}

func applyOutput(s graph.State, parsed map[string]any, files []message.FileDescriptor) (graph.State, error) {
	inputProcessing, _ := parsed["input_processing"].(map[string]any)
	understanding, _ := inputProcessing["combined_understanding"].(string)
	fileDesc, _ := inputProcessing["file_content_description"].(string)

	planning, _ := parsed["planning"].(map[string]any)
	requiresTool, _ := planning["requires_tool"].(bool)
	reasoning, _ := planning["reasoning"].(string)
	toolName, _ := planning["tool_name"].(string)

	response, _ := parsed["response"].(string)
	timeoutF, _ := parsed["inactivity_timeout"].(float64)

	s.ProcessedInput = understanding
	s.Files = message.StripBytes(files)
	attachUnderstanding(&s, understanding, fileDesc)
	s.InactivityTimeout = int(timeoutF)

	if requiresTool {
		if info, ok := s.AvailableNodes[toolName]; ok && info.Name != "" {
			sysMsg := message.New(message.KindSystem, graph.UnifiedDecisionNode, message.NodeKindInternal)
			sysMsg.Text = reasoning
			sysMsg.Extra["action"] = toolName
			sysMsg.Extra["reasoning"] = reasoning
			s.Messages = append(s.Messages, sysMsg)
			s.NextNode = toolName
			s.Success = true
			return s, nil
		}
		s.Messages = append(s.Messages, message.NewAssistant(graph.UnifiedDecisionNode, "That tool isn't available right now, so I can't do that just yet."))
		s.Response = "That tool isn't available right now, so I can't do that just yet."
		s.NextNode = graph.Terminator
		s.Success = true
		return s, nil
	}

	if response == "" {
		s.Success = false
		s.Error = "empty response"
		return s, nil
	}

	s.Messages = append(s.Messages, message.NewAssistant(graph.UnifiedDecisionNode, response))
	s.Response = response
	s.NextNode = graph.Terminator
	s.Success = true
	return s, nil
}

func attachUnderstanding(s *graph.State, understanding, fileDesc string) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Kind == message.KindHuman {
			if s.Messages[i].Extra == nil {
				s.Messages[i].Extra = make(map[string]any)
			}
			s.Messages[i].Extra["understanding"] = understanding
			s.Messages[i].Extra["file_content"] = fileDesc
			return
		}
	}
}

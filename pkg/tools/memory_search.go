package tools

import (
	"context"
	"fmt"
	"strings"

	"aurelia/pkg/graph"
	"aurelia/pkg/memory"
	"aurelia/pkg/message"
)

const memorySearchTranscriptDepth = 10

// MemorySearchNode implements the memory_search tool node.
type MemorySearchNode struct {
	Searcher memory.Searcher
}

// searchQuery concatenates the last up-to-10 human/assistant contents,
// oldest first, plus processed_input, as the memory_search query.
func searchQuery(s graph.State) string {
	var recent []string
	for i := len(s.Messages) - 1; i >= 0 && len(recent) < memorySearchTranscriptDepth; i-- {
		m := s.Messages[i]
		if m.Kind != message.KindHuman && m.Kind != message.KindAssistant {
			continue
		}
		recent = append(recent, m.GetText())
	}
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	if s.ProcessedInput != "" {
		recent = append(recent, s.ProcessedInput)
	}
	return strings.Join(recent, "\n")
}

// Handle implements graph.Handler.
func (n *MemorySearchNode) Handle(ctx context.Context, s graph.State) (graph.State, error) {
	query := searchQuery(s)
	if query == "" {
		s.Messages = append(s.Messages, message.NewTool("memory_search", "memory_search", "nothing in the transcript to search on"))
		s.Success = false
		s.NextNode = graph.UnifiedDecisionNode
		return s, nil
	}

	result, err := n.Searcher.Search(ctx, query)
	if err != nil {
		s.Messages = append(s.Messages, message.NewTool("memory_search", "memory_search", fmt.Sprintf("memory search failed: %v", err)))
		s.Success = false
		s.NextNode = graph.UnifiedDecisionNode
		return s, nil
	}

	formatted := fmt.Sprintf("Memory search results:\n%s", result)
	s.Messages = append(s.Messages, message.NewTool("memory_search", "memory_search", formatted))
	s.Response = formatted
	s.NextNode = graph.UnifiedDecisionNode
	s.Success = true
	return s, nil
}

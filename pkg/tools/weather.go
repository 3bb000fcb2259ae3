package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"aurelia/pkg/graph"
	"aurelia/pkg/message"
)

// WeatherLookup is the weather_search node's external collaborator.
// The actual provider (HTTP call to a weather API) is out of scope
// here; this is the interface the node calls against.
type WeatherLookup interface {
	Lookup(ctx context.Context, city string) (string, error)
}

// WeatherNode implements the weather_search tool node.
type WeatherNode struct {
	Lookup WeatherLookup
}

var cityPattern = regexp.MustCompile(`(?i)\bin\s+([A-Za-z][A-Za-z\s]{1,40}?)[\?\.\!]?$`)

// extractCity pulls a city name out of free text using an "in <City>"
// heuristic, falling back to the whole trimmed text when the pattern
// doesn't match.
func extractCity(text string) string {
	text = strings.TrimSpace(text)
	if m := cityPattern.FindStringSubmatch(text); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return text
}

// cityQuery builds the weather node's city guess from the latest human
// message text, falling back to processed_input when the transcript is
// empty.
func cityQuery(s graph.State) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Kind == message.KindHuman {
			return extractCity(s.Messages[i].GetText())
		}
	}
	return extractCity(s.ProcessedInput)
}

// Handle implements graph.Handler.
func (n *WeatherNode) Handle(ctx context.Context, s graph.State) (graph.State, error) {
	city := cityQuery(s)
	if city == "" {
		s.Messages = append(s.Messages, message.NewTool("weather_search", "weather_search", "no city could be determined from the conversation"))
		s.Success = false
		s.NextNode = graph.UnifiedDecisionNode
		return s, nil
	}

	result, err := n.Lookup.Lookup(ctx, city)
	if err != nil {
		s.Messages = append(s.Messages, message.NewTool("weather_search", "weather_search", fmt.Sprintf("weather lookup for %s failed: %v", city, err)))
		s.Success = false
		s.NextNode = graph.UnifiedDecisionNode
		return s, nil
	}

	formatted := fmt.Sprintf("%s weather: %s", city, result)
	s.Messages = append(s.Messages, message.NewTool("weather_search", "weather_search", formatted))
	s.Response = formatted
	s.NextNode = graph.UnifiedDecisionNode
	s.Success = true
	return s, nil
}

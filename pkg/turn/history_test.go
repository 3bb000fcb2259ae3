package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aurelia/pkg/graph"
	"aurelia/pkg/message"
)

func TestEffectiveMaxChars(t *testing.T) {
	assert.Equal(t, 0, effectiveMaxChars(0, 0))
	assert.Equal(t, 100, effectiveMaxChars(100, 0))
	assert.Equal(t, 40, effectiveMaxChars(0, 10))
	assert.Equal(t, 40, effectiveMaxChars(100, 10))
	assert.Equal(t, 100, effectiveMaxChars(100, 1000))
}

func TestCapMessagesByChars(t *testing.T) {
	msgs := []message.Message{
		message.NewHuman(graph.UnifiedDecisionNode, "aaaa"),
		message.NewAssistant(graph.UnifiedDecisionNode, "bbbb"),
		message.NewHuman(graph.UnifiedDecisionNode, "cc"),
	}

	got := capMessagesByChars(msgs, 4)
	assert.Len(t, got, 1)
	assert.Equal(t, "cc", got[0].GetText())
}

func TestCapMessagesByChars_KeepsAllWhenUnderLimit(t *testing.T) {
	msgs := []message.Message{
		message.NewHuman(graph.UnifiedDecisionNode, "a"),
		message.NewAssistant(graph.UnifiedDecisionNode, "b"),
	}

	got := capMessagesByChars(msgs, 1000)
	assert.Len(t, got, 2)
}

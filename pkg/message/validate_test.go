package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	m := NewAssistant("unified_response", "hi!")
	require.NoError(t, Validate(m))
}

func TestValidate_MissingNodeName(t *testing.T) {
	m := NewAssistant("unified_response", "hi!")
	m.Provenance.NodeName = ""

	err := Validate(m)
	require.Error(t, err)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Reason, "node_name")
}

func TestValidate_MissingNodeKind(t *testing.T) {
	m := NewAssistant("unified_response", "hi!")
	m.Provenance.NodeKind = ""

	require.Error(t, Validate(m))
}

func TestValidate_MissingTimestamp(t *testing.T) {
	m := NewAssistant("unified_response", "hi!")
	m.Provenance.Timestamp = time.Time{}

	require.Error(t, Validate(m))
}

func TestValidate_UnknownKind(t *testing.T) {
	m := NewAssistant("unified_response", "hi!")
	m.Kind = "bogus"

	require.Error(t, Validate(m))
}

func TestValidate_ToolMessageRequiresNameAndID(t *testing.T) {
	m := NewTool("weather_search", "weather_search", "Tokyo weather: sunny")
	require.NoError(t, Validate(m))

	m.ToolCallID = ""
	require.Error(t, Validate(m))
}

func TestValidateAll_ReportsIndex(t *testing.T) {
	good := NewAssistant("unified_response", "hi!")
	bad := NewHuman("unified_response", "hello")
	bad.Provenance.NodeName = ""

	err := ValidateAll([]Message{good, bad})
	require.Error(t, err)

	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Index)
}

func TestValidateAll_AllValid(t *testing.T) {
	msgs := []Message{
		NewHuman("unified_response", "hello"),
		NewAssistant("unified_response", "hi!"),
	}
	require.NoError(t, ValidateAll(msgs))
}

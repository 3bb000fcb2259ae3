package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const decisionSchema = `{
  "type": "object",
  "required": ["response", "inactivity_timeout", "planning"],
  "properties": {
    "response": {"type": "string"},
    "inactivity_timeout": {"type": "integer"},
    "planning": {
      "type": "object",
      "required": ["requires_tool"],
      "properties": {
        "requires_tool": {"type": "boolean"},
        "tool_name": {"type": ["string", "null"]}
      }
    }
  }
}`

func TestValidateSchema_Valid(t *testing.T) {
	parsed := map[string]any{
		"response":            "hi!",
		"inactivity_timeout":  60,
		"planning": map[string]any{
			"requires_tool": false,
			"tool_name":     nil,
		},
	}
	err := ValidateSchema(parsed, []byte(decisionSchema))
	require.NoError(t, err)
}

func TestValidateSchema_MissingRequired(t *testing.T) {
	parsed := map[string]any{
		"response": "hi!",
	}
	err := ValidateSchema(parsed, []byte(decisionSchema))
	require.Error(t, err)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
}

func TestValidateSchema_WrongType(t *testing.T) {
	parsed := map[string]any{
		"response":           "hi!",
		"inactivity_timeout": "sixty",
		"planning": map[string]any{
			"requires_tool": false,
		},
	}
	err := ValidateSchema(parsed, []byte(decisionSchema))
	require.Error(t, err)
}

func TestValidateSchema_NullableToolName(t *testing.T) {
	parsed := map[string]any{
		"response":           "",
		"inactivity_timeout": 10,
		"planning": map[string]any{
			"requires_tool": true,
			"tool_name":     "weather_search",
		},
	}
	assert.NoError(t, ValidateSchema(parsed, []byte(decisionSchema)))
}

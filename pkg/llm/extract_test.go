package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	raw := "here you go:\n```json\n{\"a\": 1}\n```\nthanks"
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, got)
}

func TestExtractJSON_BalancedSpan(t *testing.T) {
	raw := `sure, the object is {"a": {"b": 2}} and that's it`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": 2}}`, got)
}

func TestExtractJSON_BracesInsideString(t *testing.T) {
	raw := `{"text": "contains a } brace"}`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, raw, got)
}

func TestExtractJSON_WholeBodyFallback(t *testing.T) {
	raw := `{"a": 1}`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, raw, got)
}

func TestExtractJSON_EmptyIsError(t *testing.T) {
	_, err := ExtractJSON("   ")
	assert.Error(t, err)
}

func TestExtractJSON_PrefersFencedOverSpan(t *testing.T) {
	raw := "{\"wrong\": true}\n```json\n{\"right\": true}\n```"
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"right": true}`, got)
}

func TestExtractJSON_UnparseableFencedBlockFallsBackToSpan(t *testing.T) {
	raw := "```json\nnot actually json\n```\nhere's the real one: {\"b\": 2}"
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b": 2}`, got)
}

func TestExtractJSON_AllStrategiesUnparseableIsError(t *testing.T) {
	raw := "```json\n{not valid\n```"
	_, err := ExtractJSON(raw)
	assert.Error(t, err)
}

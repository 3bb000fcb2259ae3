package llm

import (
	"fmt"
	"strings"
)

// ExtractJSON pulls a JSON object out of a raw LLM response body,
// trying three strategies in order: a fenced ```json``` block, the
// first balanced {...} span, then the entire body. Each candidate is
// actually parsed; a candidate that fails to parse falls through to
// the next strategy instead of being returned as-is, so a malformed
// fenced block doesn't hide a perfectly good span later in the body.
func ExtractJSON(raw string) (string, error) {
	if block, ok := fencedJSONBlock(raw); ok {
		if err := checkParses(block); err == nil {
			return block, nil
		}
	}

	if span, ok := balancedBraceSpan(raw); ok {
		if err := checkParses(span); err == nil {
			return span, nil
		}
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("llm: response body is empty")
	}
	if err := checkParses(trimmed); err != nil {
		return "", fmt.Errorf("llm: no extraction strategy produced parseable JSON: %w", err)
	}
	return trimmed, nil
}

// checkParses reports whether candidate unmarshals as a JSON object,
// without handing the decoded value back — callers only need the
// pass/fail signal to decide whether to fall through to the next
// strategy.
func checkParses(candidate string) error {
	var parsed map[string]any
	return json.Unmarshal([]byte(candidate), &parsed)
}

func fencedJSONBlock(raw string) (string, bool) {
	const openTag = "```json"
	start := strings.Index(raw, openTag)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(openTag):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// balancedBraceSpan returns the first top-level balanced {...} span,
// respecting string literals and escapes so braces inside quoted JSON
// strings don't throw off the depth count.
func balancedBraceSpan(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

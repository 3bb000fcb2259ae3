package llm

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaError reports that a decision node's structured output failed
// schema validation: a required key was missing, a type tag didn't
// match, or a nested properties check failed. Grounded on the schema
// compilation/validation shape haasonsaas-nexus uses for its websocket
// frames (internal/gateway/ws_schema.go), applied here to LLM output
// instead of inbound wire frames.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("llm: schema violation at %s: %s", e.Path, e.Reason)
}

// ValidateSchema compiles schemaJSON (a JSON Schema document) and
// validates parsed against it, translating the library's verbose
// validation error into a single SchemaError naming the first
// violation's path.
func ValidateSchema(parsed any, schemaJSON []byte) error {
	compiled, err := jsonschema.CompileString("decision_output", string(schemaJSON))
	if err != nil {
		return fmt.Errorf("llm: invalid schema: %w", err)
	}

	// jsonschema validates against plain JSON values (map[string]any,
	// []any, etc). Round-trip through the package's json codec to normalize
	// whatever concrete type parsed was decoded into.
	data, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("llm: cannot re-marshal parsed output: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("llm: cannot normalize parsed output: %w", err)
	}

	if err := compiled.Validate(normalized); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok && len(verr.Causes) > 0 {
			first := verr.Causes[0]
			return &SchemaError{Path: first.InstanceLocation, Reason: first.Message}
		}
		return &SchemaError{Path: "", Reason: err.Error()}
	}
	return nil
}

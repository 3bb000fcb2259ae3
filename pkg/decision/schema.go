package decision

// outputSchema pins the unified decision node's structured reply to
// its required shape. tool_name is typed
// ["string","null"] rather than conditionally required — whether it
// must be non-null when requires_tool is true is a semantic rule the
// output-handling code checks itself, not a structural schema
// constraint.
const outputSchema = `{
  "type": "object",
  "required": ["input_processing", "planning", "response", "inactivity_timeout"],
  "properties": {
    "input_processing": {
      "type": "object",
      "required": ["file_content_description", "combined_understanding"],
      "properties": {
        "file_content_description": {"type": "string"},
        "combined_understanding": {"type": "string"}
      }
    },
    "planning": {
      "type": "object",
      "required": ["requires_tool", "reasoning"],
      "properties": {
        "requires_tool": {"type": "boolean"},
        "tool_name": {"type": ["string", "null"]},
        "reasoning": {"type": "string"}
      }
    },
    "response": {"type": "string"},
    "inactivity_timeout": {"type": "integer"}
  }
}`

package parser

// StrictJSONInstructions is sent as system instructions when a request asks
// for JSON output.
const StrictJSONInstructions = `
OUTPUT FORMAT REQUIREMENTS:

1. Respond with valid JSON only: no markdown, no explanations, no prose.
2. Do not wrap the JSON in code fences.
3. Do not write anything before or after the JSON value.
4. The response starts with { or [ and ends with } or ].
5. Escape every string properly (newlines as \n, quotes as \").
6. Use null for missing or unknown values.
7. Numbers are unquoted. Booleans are lowercase true/false.
8. No trailing commas in arrays or objects.
9. The output must decode with a strict JSON parser as-is.

If the requested data cannot be produced, return: {"error": "description of the issue", "ok": false}
`

// CompactJSONInstructions is a one-line variant for tight prompts.
const CompactJSONInstructions = `OUTPUT ONLY: valid JSON. No markdown, no code fences, no explanations. Start with { or [, end with } or ]. Escape all strings. Must decode with a strict JSON parser.`

// BuildJSONEnforcedPrompt appends an optional schema hint and the strict
// JSON instructions to base.
func BuildJSONEnforcedPrompt(base, schema string) string {
	var hint string
	if schema != "" {
		hint = "\n\nExpected output schema:\n" + schema
	}
	return base + hint + "\n\n" + StrictJSONInstructions
}

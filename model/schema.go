package model

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor renders the JSON schema of v's type, inlined without $defs, for
// embedding in prompts.
func SchemaFor(v any) (string, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(v)
	schema.Version = ""
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	return string(b), nil
}

// RecognitionSchema is the schema of RecognitionResult as sent to the model.
func RecognitionSchema() string {
	s, err := SchemaFor(&RecognitionResult{})
	if err != nil {
		return ""
	}
	return s
}

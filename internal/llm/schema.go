package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Field names of the lease analysis document.
var (
	listFields   = []string{"lessors", "lessees", "insights"}
	scalarFields = []string{"acreage", "depths", "term", "royalty"}
)

// LeaseAnalysisSchema returns the JSON Schema the model output must satisfy.
func LeaseAnalysisSchema() map[string]any {
	stringList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"lessors":  stringList,
			"lessees":  stringList,
			"acreage":  map[string]any{"type": "string"},
			"depths":   map[string]any{"type": "string"},
			"term":     map[string]any{"type": "string"},
			"royalty":  map[string]any{"type": "string"},
			"insights": stringList,
		},
		"required": append(append([]string{}, listFields...), scalarFields...),
	}
}

var leaseSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(LeaseAnalysisSchema())
})

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compileSchema(schemaMap)
	if err != nil {
		return err
	}
	return validateWith(schema, data)
}

func validateWith(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

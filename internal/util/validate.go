package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError reports the first argument that does not fit a tool's
// parameter schema. Field is empty when the failure is about the argument
// object as a whole, such as a missing required property.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CompileSchema compiles a tool parameter schema written as a Go map. A nil
// schema accepts any argument object.
func CompileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("parameters.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile("parameters.json")
}

// ValidateArgs checks decoded tool arguments against a compiled schema.
// Arguments are normalized through encoding/json first so Go ints, typed
// slices and the like are judged as the model would have sent them.
func ValidateArgs(args map[string]any, schema *jsonschema.Schema) error {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("arguments are not JSON: %v", err)}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Message: fmt.Sprintf("arguments are not JSON: %v", err)}
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	out := &ValidationError{Field: field, Message: leaf.Message}
	if field != "" && !strings.Contains(field, "/") {
		out.Value = args[field]
	}
	return out
}

// ValidateParameters compiles schema and checks args against it.
func ValidateParameters(args map[string]any, schema map[string]any) error {
	compiled, err := CompileSchema(schema)
	if err != nil {
		return fmt.Errorf("invalid parameter schema: %w", err)
	}
	return ValidateArgs(args, compiled)
}

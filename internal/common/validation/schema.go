// Package validation checks tool parameter objects against JSON schemas
// before any network call is made.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateParams validates a parameter object against a JSON schema document.
// Params may be a map or a struct with json tags; omitempty fields left at
// their zero value are absent from the validated document. The schema covers
// presence, type, pattern and enum checks only.
func ValidateParams(params interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	errors := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errors = append(errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}

	return &ValidationResult{Valid: false, Errors: errors}, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// ObjectSchema builds a schema for an object with the given property types
// and required field names.
func ObjectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProp builds a string property, optionally constrained to a pattern.
func StringProp(pattern string) map[string]interface{} {
	prop := map[string]interface{}{"type": "string"}
	if pattern != "" {
		prop["pattern"] = pattern
	}
	return prop
}

// NonEmptyStringProp builds a string property that must contain at least one
// character. Required alone does not catch present-but-empty strings.
func NonEmptyStringProp() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1}
}

// EnumProp builds a string property restricted to the given values.
func EnumProp(values ...string) map[string]interface{} {
	enum := make([]interface{}, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]interface{}{"type": "string", "enum": enum}
}

package formfill

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate checks submitted against schema.
//
// Only fields present in both maps are checked. Fields the schema does not
// name are accepted as-is, and schema fields missing from the submission are
// not reported. Empty values mean "leave unset" and are never checked.
//
// Every violation is returned, ordered by field name.
func Validate(schema FieldSchema, submitted FormValues) ValidationResult {
	var violations []Violation

	for field, value := range submitted {
		if value == "" {
			continue
		}

		allowed, constrained := schema.Allows(field, value)
		if !constrained || allowed {
			continue
		}

		violations = append(violations, Violation{
			Field:   field,
			Value:   value,
			Allowed: schema[field],
		})
	}

	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Field < violations[j].Field
	})

	return ValidationResult{Violations: violations}
}

// ParseSchema decodes a validation schema object. Objects named *.yaml or
// *.yml are read as YAML, everything else as JSON. Both encode a mapping of
// field name to a list of allowed string values.
func ParseSchema(name string, data []byte) (FieldSchema, error) {
	var schema FieldSchema

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w: %w", name, ErrInvalidInput, err)
		}
	default:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w: %w", name, ErrInvalidInput, err)
		}
	}

	if schema == nil {
		return nil, fmt.Errorf("parse schema %s: %w: schema must be an object", name, ErrInvalidInput)
	}

	return schema, nil
}

// DecodeFormValues reads a JSON object of field name to string value.
// Null values decode to the empty string. Any other non-string value is
// rejected with ErrInvalidInput.
func DecodeFormValues(data []byte) (FormValues, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode form values: %w: %w", ErrInvalidInput, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode form values: %w: body must be a JSON object", ErrInvalidInput)
	}

	values := make(FormValues, len(raw))
	for field, v := range raw {
		switch typed := v.(type) {
		case nil:
			values[field] = ""
		case string:
			values[field] = typed
		default:
			return nil, fmt.Errorf("decode form values: %w: field %q must be a string or null", ErrInvalidInput, field)
		}
	}

	return values, nil
}

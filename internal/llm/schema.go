// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/journal-club/internal/failure"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Schema describes a required JSON output shape. Definition is a JSON Schema
// object in the strict subset accepted by OpenAI structured outputs: every
// property required and no additional properties.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Object builds a strict JSON Schema object with the given string-typed or
// nested properties, all of them required.
func Object(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// String is a JSON Schema string property.
func String(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// Array is a JSON Schema array property.
func Array(items map[string]any, description string) map[string]any {
	return map[string]any{"type": "array", "items": items, "description": description}
}

// JSON returns the schema definition as indented JSON, for prompts.
func (s *Schema) JSON() string {
	data, err := json.MarshalIndent(s.Definition, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Decode parses raw into target and checks its `validate` tags. Any mismatch
// is a SchemaValidationError; malformed output is never partially used.
func (s *Schema) Decode(raw string, target any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(stripFence(raw))))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return &failure.SchemaValidationError{Schema: s.Name, Err: fmt.Errorf("decoding: %w", err)}
	}
	if dec.More() {
		return &failure.SchemaValidationError{Schema: s.Name, Err: fmt.Errorf("trailing data after JSON document")}
	}
	if err := validate.Struct(target); err != nil {
		return &failure.SchemaValidationError{Schema: s.Name, Err: err}
	}
	return nil
}

// stripFence removes a surrounding Markdown code fence, which some models
// add even when asked for bare JSON.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

package planning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidPayload is returned when a write body does not match the plan schema.
var ErrInvalidPayload = errors.New("invalid plan payload")

// FieldError describes one schema violation.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError lists the schema violations of a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidPayload, strings.Join(parts, "; "))
}

// Is reports every ValidationError as ErrInvalidPayload.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidPayload }

const itemDefinitions = `{
	"topic": {
		"type": "object",
		"required": ["id", "name"],
		"properties": {"id": {"type": "string"}, "name": {"type": "string"}}
	},
	"concept": {
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "string"},
			"name": {"type": "string"},
			"topics": {"type": "array", "items": {"$ref": "#/definitions/topic"}}
		}
	},
	"step": {
		"type": "object",
		"required": ["id", "content"],
		"properties": {
			"id": {"type": "string"},
			"content": {"type": "string"},
			"linkedTopic": {"type": "string"}
		}
	},
	"outcome": {
		"type": "object",
		"required": ["id", "content"],
		"properties": {
			"id": {"type": "string"},
			"content": {"type": "string"},
			"aiGenerated": {"type": "boolean"}
		}
	},
	"assessment": {
		"type": "object",
		"required": ["id", "title"],
		"properties": {
			"id": {"type": "string"},
			"title": {"type": "string"},
			"description": {"type": "string"},
			"category": {"type": "string"},
			"linkedConcept": {"type": "string"},
			"linkedTopic": {"type": "string"}
		}
	},
	"week": {
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string"},
			"week": {"type": "integer"},
			"focus": {"type": "string"},
			"activities": {"type": "string"},
			"outcomes": {"type": "string"},
			"assessments": {"type": "string"},
			"linkedConcept": {"type": "string"},
			"linkedTopic": {"type": "string"}
		}
	}
}`

// sectionItems maps each section to the definition of its list items.
var sectionItems = map[Section]string{
	SectionConcepts:   "concept",
	SectionProcess:    "step",
	SectionOutcomes:   "outcome",
	SectionAssessment: "assessment",
	SectionWeeklyPlan: "week",
}

// Validator checks plan payloads against the document schema.
type Validator struct {
	document *gojsonschema.Schema
	sections map[Section]*gojsonschema.Schema
}

// NewValidator compiles the document and per-section schemas.
func NewValidator() (*Validator, error) {
	v := &Validator{sections: make(map[Section]*gojsonschema.Schema)}

	props := make([]string, 0, len(Sections))
	for _, s := range Sections {
		props = append(props, fmt.Sprintf(`%q: {"type": "array", "items": {"$ref": "#/definitions/%s"}}`, s, sectionItems[s]))
	}
	doc := fmt.Sprintf(`{"definitions": %s, "type": "object", "additionalProperties": false, "properties": {%s}}`,
		itemDefinitions, strings.Join(props, ", "))

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compiling document schema: %w", err)
	}
	v.document = schema

	for _, s := range Sections {
		src := fmt.Sprintf(`{"definitions": %s, "type": "array", "items": {"$ref": "#/definitions/%s"}}`,
			itemDefinitions, sectionItems[s])
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", s, err)
		}
		v.sections[s] = schema
	}
	return v, nil
}

// ValidateDocument checks a full document body.
func (v *Validator) ValidateDocument(body []byte) error {
	return validate(v.document, body)
}

// ValidateSection checks the body of a single section.
func (v *Validator) ValidateSection(section Section, body []byte) error {
	schema, ok := v.sections[section]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSection, section)
	}
	return validate(schema, body)
}

func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, re := range result.Errors() {
		verr.Fields = append(verr.Fields, FieldError{Field: re.Field(), Error: re.Description()})
	}
	return verr
}

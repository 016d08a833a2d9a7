// Package llm provides the language-model oracle used to turn a viewer
// profile into catalog search parameters. Gemini, OpenAI-compatible and
// Anthropic backends share one interface and one error classification.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Provider names reported in logs and metrics.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrEmptyResponse is returned when the provider answers with no content.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// Oracle produces a JSON document for a single prompt. Implementations make
// exactly one provider call per GenerateJSON and keep no conversation state.
type Oracle interface {
	// GenerateJSON returns the raw JSON text produced for req. The document is
	// untrusted; callers validate it.
	GenerateJSON(ctx context.Context, req *JSONRequest) (string, error)

	// Provider returns the backend name.
	Provider() string

	// Model returns the configured model name.
	Model() string
}

// JSONRequest is one structured-output call.
type JSONRequest struct {
	SystemInstruction string
	Prompt            string
	Schema            *Schema
	Temperature       float64
}

// Schema is the subset of JSON Schema the providers understand.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// JSON type names.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// StringArray returns an array-of-strings schema bounded to [min, max] items.
func StringArray(description string, min, max int) *Schema {
	return &Schema{
		Type:        TypeArray,
		Description: description,
		Items:       &Schema{Type: TypeString},
		MinItems:    &min,
		MaxItems:    &max,
	}
}

// MarshalJSONSchema renders s as a JSON Schema document.
func (s *Schema) MarshalJSONSchema() (json.RawMessage, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}

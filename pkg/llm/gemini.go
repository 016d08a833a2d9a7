package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiOracle uses Gemini's native JSON mode with a response schema.
type GeminiOracle struct {
	client    *genai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

var _ Oracle = (*GeminiOracle)(nil)

// NewGeminiOracle creates a Gemini API client.
func NewGeminiOracle(ctx context.Context, cfg *Config, logger *zap.Logger) (*GeminiOracle, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiOracle{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("oracle.gemini"),
	}, nil
}

// GenerateJSON sends one GenerateContent call with application/json output.
func (o *GeminiOracle) GenerateJSON(ctx context.Context, req *JSONRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(req.Temperature)),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    toGenaiSchema(req.Schema),
	}
	if o.maxTokens > 0 {
		config.MaxOutputTokens = int32(o.maxTokens)
	}

	start := time.Now()
	resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(req.Prompt), config)
	if err != nil {
		o.logger.Error("LLM request failed",
			zap.String("model", o.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", withOrigin(err, ProviderGemini, o.model)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", withOrigin(ErrEmptyResponse, ProviderGemini, o.model)
	}

	o.logger.Debug("LLM request completed",
		zap.Int("response_len", len(text)),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Provider implements Oracle.
func (o *GeminiOracle) Provider() string { return ProviderGemini }

// Model implements Oracle.
func (o *GeminiOracle) Model() string { return o.model }

var genaiTypes = map[string]genai.Type{
	TypeObject:  genai.TypeObject,
	TypeArray:   genai.TypeArray,
	TypeString:  genai.TypeString,
	TypeInteger: genai.TypeInteger,
	TypeNumber:  genai.TypeNumber,
	TypeBoolean: genai.TypeBoolean,
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if s.MinItems != nil {
		out.MinItems = genai.Ptr(int64(*s.MinItems))
	}
	if s.MaxItems != nil {
		out.MaxItems = genai.Ptr(int64(*s.MaxItems))
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

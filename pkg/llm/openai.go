package llm

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIOracle talks to any OpenAI-compatible chat completions endpoint.
type OpenAIOracle struct {
	client    *openai.Client
	endpoint  string
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Config holds provider-agnostic connection settings.
type Config struct {
	Endpoint  string // Base URL, e.g., "https://api.openai.com/v1". Ignored by Gemini.
	Model     string
	APIKey    string
	MaxTokens int
}

var _ Oracle = (*OpenAIOracle)(nil)

// NewOpenAIOracle creates a new OpenAI-compatible oracle.
func NewOpenAIOracle(cfg *Config, logger *zap.Logger) (*OpenAIOracle, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIOracle{
		client:    openai.NewClientWithConfig(clientConfig),
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("oracle.openai"),
	}, nil
}

// GenerateJSON requests a strict json_schema response.
func (o *OpenAIOracle) GenerateJSON(ctx context.Context, req *JSONRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Temperature),
		MaxTokens:   o.maxTokens,
	}

	if req.Schema != nil {
		schema, err := strictSchema(req.Schema).MarshalJSONSchema()
		if err != nil {
			return "", fmt.Errorf("encode response schema: %w", err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "search_parameters",
				Schema: schema,
				Strict: true,
			},
		}
	} else {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		o.logger.Error("LLM request failed",
			zap.String("model", o.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", withOrigin(err, ProviderOpenAI, o.model)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", withOrigin(ErrEmptyResponse, ProviderOpenAI, o.model)
	}

	o.logger.Debug("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Provider implements Oracle.
func (o *OpenAIOracle) Provider() string { return ProviderOpenAI }

// Model implements Oracle.
func (o *OpenAIOracle) Model() string { return o.model }

// strictSchema returns a copy of s with additionalProperties=false on every
// object and every property required, which strict mode demands.
func strictSchema(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Items != nil {
		out.Items = strictSchema(s.Items)
	}
	if s.Type == TypeObject {
		closed := false
		out.AdditionalProperties = &closed
		out.Properties = make(map[string]*Schema, len(s.Properties))
		out.Required = make([]string, 0, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = strictSchema(prop)
			out.Required = append(out.Required, name)
		}
		slices.Sort(out.Required)
	}
	return &out
}

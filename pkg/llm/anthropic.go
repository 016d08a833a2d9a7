package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicOracle has no native JSON mode; the schema is appended to the
// system prompt and the document is pulled out of the reply with ExtractJSON.
type AnthropicOracle struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

var _ Oracle = (*AnthropicOracle)(nil)

// NewAnthropicOracle creates an Anthropic Messages API client.
func NewAnthropicOracle(cfg *Config, logger *zap.Logger) (*AnthropicOracle, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicOracle{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("oracle.anthropic"),
	}, nil
}

// GenerateJSON sends one Messages call and returns the extracted JSON object.
func (o *AnthropicOracle) GenerateJSON(ctx context.Context, req *JSONRequest) (string, error) {
	system, err := systemWithSchema(req)
	if err != nil {
		return "", err
	}

	prompt := req.Prompt
	temperature := float32(req.Temperature)

	start := time.Now()
	resp, err := o.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(o.model),
		MaxTokens:   o.maxTokens,
		System:      system,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		o.logger.Error("LLM request failed",
			zap.String("model", o.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", withOrigin(err, ProviderAnthropic, o.model)
	}

	text := textFromMessages(resp)
	if strings.TrimSpace(text) == "" {
		return "", withOrigin(ErrEmptyResponse, ProviderAnthropic, o.model)
	}

	doc, err := ExtractJSON(text)
	if err != nil {
		// Hand back the raw text; the caller's parser reports the mismatch.
		o.logger.Warn("No JSON object in response", zap.Int("response_len", len(text)))
		return text, nil
	}

	o.logger.Debug("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return doc, nil
}

// Provider implements Oracle.
func (o *AnthropicOracle) Provider() string { return ProviderAnthropic }

// Model implements Oracle.
func (o *AnthropicOracle) Model() string { return o.model }

func textFromMessages(resp anthropic.MessagesResponse) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	return sb.String()
}

func systemWithSchema(req *JSONRequest) (string, error) {
	if req.Schema == nil {
		return req.SystemInstruction, nil
	}
	schema, err := req.Schema.MarshalJSONSchema()
	if err != nil {
		return "", fmt.Errorf("encode response schema: %w", err)
	}
	return req.SystemInstruction +
		"\n\nRespond with a single JSON object and nothing else. It must validate against this JSON Schema:\n" +
		string(schema), nil
}

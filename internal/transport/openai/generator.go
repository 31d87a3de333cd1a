package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/metrics"
)

const systemPrompt = `You answer questions strictly from the provided passages.
Each passage is marked with its chunk id. Respond with a JSON object:
{"answer": "<answer text>", "used_chunk_ids": ["<id>", ...]}
used_chunk_ids must list only the chunk ids of passages the answer draws on.
If the passages do not contain the answer, say so in the answer text and
return an empty used_chunk_ids list. Do not use outside knowledge.`

// Generator composes grounded answers via the OpenAI-compatible chat API.
// Provider failures and contract violations surface domain.ErrGenerationUnavailable
// so callers can degrade to retrieved sources only.
type Generator struct {
	client      *openai.Client
	model       string
	user        string
	provider    string
	temperature float32
	retry       retryConfig
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	User        string
	Provider    string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := newClientConfig(cfg.APIKey, cfg.BaseURL)

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		user:        cfg.User,
		provider:    cfg.Provider,
		temperature: cfg.Temperature,
		retry:       newRetryConfig(cfg.Timeout, cfg.Logger),
		logger:      cfg.Logger,
	}
}

// generatorResponse is the JSON contract the model must follow.
type generatorResponse struct {
	Answer       string   `json:"answer"`
	UsedChunkIDs []string `json:"used_chunk_ids"`
}

// Generate implements domain.Generator.
func (g *Generator) Generate(
	ctx context.Context, question string, passages []domain.Passage,
) (domain.GenerationResult, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(question, passages)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: g.temperature,
		User:        g.user,
	}

	var resp openai.ChatCompletionResponse
	start := time.Now()

	err := withRetry(ctx, g.retry, "generate", func(ctx context.Context) error {
		var callErr error
		resp, callErr = g.client.CreateChatCompletion(ctx, req)
		return callErr
	})

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, errorType(err)).Inc()
		return domain.GenerationResult{}, g.wrapAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, "empty_response").Inc()
		return domain.GenerationResult{}, fmt.Errorf(
			"empty chat completion response: %w", domain.ErrGenerationUnavailable)
	}

	parsed, err := parseGeneratorResponse(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, "bad_response").Inc()
		g.logger.Warn("Generator returned malformed response", zap.Error(err))
		return domain.GenerationResult{}, fmt.Errorf(
			"parse chat completion: %w", domain.ErrGenerationUnavailable)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	if totalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "total").
			Add(float64(totalTokens))
	}

	return domain.GenerationResult{
		Text:         parsed.Answer,
		UsedChunkIDs: parsed.UsedChunkIDs,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (g *Generator) wrapAPIError(err error) error {
	status, detail := apiErrorDetail(err)
	wrap := domain.ErrGenerationUnavailable
	if status == http.StatusTooManyRequests {
		wrap = domain.ErrRateLimited
	}
	if detail != "" {
		return fmt.Errorf("generation API error %d: %s: %w", status, detail, wrap)
	}
	return fmt.Errorf("generation request failed: %w", wrap)
}

func buildUserPrompt(question string, passages []domain.Passage) string {
	var b strings.Builder
	b.WriteString("Passages:\n")
	for _, p := range passages {
		fmt.Fprintf(&b, "[%s] (document %s)\n%s\n\n", p.ChunkID, p.DocumentID, p.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func parseGeneratorResponse(content string) (generatorResponse, error) {
	var parsed generatorResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return generatorResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if strings.TrimSpace(parsed.Answer) == "" {
		return generatorResponse{}, fmt.Errorf("response has empty answer")
	}
	return parsed, nil
}

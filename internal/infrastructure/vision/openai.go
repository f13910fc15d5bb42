package vision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/platelens/backend/internal/domain"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 1200
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.2
	imageDetail        = "high"
)

// Config holds vision model settings
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// OpenAIModel calls an OpenAI-compatible chat completions endpoint with one
// text part and one image part.
type OpenAIModel struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAIModel creates a vision model client
func NewOpenAIModel(cfg Config) *OpenAIModel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		// the analysis service owns the fallback path
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIModel{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends prompt and image and returns the first choice's text
func (m *OpenAIModel) Complete(ctx context.Context, prompt, imageURL string) (string, error) {
	if strings.TrimSpace(imageURL) == "" {
		return "", domain.ErrMissingImage
	}

	start := time.Now()
	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    imageURL,
					Detail: imageDetail,
				}),
			}),
		},
		MaxTokens:   openai.Int(int64(m.maxTokens)),
		Temperature: openai.Float(defaultTemperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			log.Printf("[VISION] Model %s returned status %d", m.model, apiErr.StatusCode)
			return "", fmt.Errorf("vision model status %d: %w", apiErr.StatusCode, err)
		}
		log.Printf("[VISION] Request to model %s failed: %v", m.model, err)
		return "", fmt.Errorf("vision model request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("vision model returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New("vision model returned empty content")
	}

	log.Printf("[VISION] Model %s answered in %s (%d tokens)", m.model, time.Since(start).Round(time.Millisecond), resp.Usage.TotalTokens)
	return content, nil
}

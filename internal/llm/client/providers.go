package client

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// GenerationConfig holds the sampling parameters applied to every chat model.
type GenerationConfig struct {
	Temperature     float32 `mapstructure:"temperature" json:"temperature"`
	TopP            float32 `mapstructure:"top_p" json:"topP"`
	TopK            int32   `mapstructure:"top_k" json:"topK"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens" json:"maxOutputTokens"`
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

// Builder creates a chat model for one provider.
type Builder func(ctx context.Context, apiName, apiKey string, gen GenerationConfig) (model.BaseChatModel, error)

// geminiSafetySettings disables the provider-side content filters for every category.
func geminiSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	out := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		out = append(out, &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdBlockNone})
	}
	return out
}

func NewGeminiModel(ctx context.Context, apiName, apiKey string, gen GenerationConfig) (model.BaseChatModel, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	cfg := &gemini.Config{
		Client:         cli,
		Model:          apiName,
		SafetySettings: geminiSafetySettings(),
	}
	if gen.MaxOutputTokens > 0 {
		cfg.MaxTokens = &gen.MaxOutputTokens
	}
	if gen.Temperature > 0 {
		cfg.Temperature = &gen.Temperature
	}
	if gen.TopP > 0 {
		cfg.TopP = &gen.TopP
	}
	if gen.TopK > 0 {
		cfg.TopK = &gen.TopK
	}

	cm, err := gemini.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini model: %w", err)
	}
	return cm, nil
}

func NewOpenAIModel(ctx context.Context, apiName, apiKey string, gen GenerationConfig) (model.BaseChatModel, error) {
	cfg := &openai.ChatModelConfig{
		APIKey: apiKey,
		Model:  apiName,
	}
	if gen.MaxOutputTokens > 0 {
		cfg.MaxTokens = &gen.MaxOutputTokens
	}
	if gen.Temperature > 0 {
		cfg.Temperature = &gen.Temperature
	}
	if gen.TopP > 0 {
		cfg.TopP = &gen.TopP
	}

	cm, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return cm, nil
}

func NewClaudeModel(ctx context.Context, apiName, apiKey string, gen GenerationConfig) (model.BaseChatModel, error) {
	maxTokens := gen.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultGenerationConfig().MaxOutputTokens
	}
	cfg := &claude.Config{
		APIKey:    apiKey,
		Model:     apiName,
		MaxTokens: maxTokens,
	}
	if gen.Temperature > 0 {
		cfg.Temperature = &gen.Temperature
	}
	if gen.TopK > 0 {
		cfg.TopK = &gen.TopK
	}

	cm, err := claude.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create claude model: %w", err)
	}
	return cm, nil
}

package openaiLLM

import (
	"errors"

	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mkonduri/docqa/internal/customHttpClient"
	"github.com/mkonduri/docqa/internal/rag/llm"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

const modelTemperature = 0.2

type llmClient struct {
	openai       openai.Client
	model        string
	systemPrompt string
	logger       *logger_i.Logger
}

func NewClient(apiKey string, baseURL string, model string, systemPrompt string) llm.Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Pooled()),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &llmClient{
		openai:       openai.NewClient(opts...),
		model:        model,
		systemPrompt: systemPrompt,
		logger:       logger_i.NewLogger("llm_openai"),
	}
}

func (c *llmClient) Generate(ctx context.Context, question string, contextBlocks []string) (string, error) {
	userPrompt := llm.BuildUserPrompt(question, contextBlocks)

	resp, err := c.openai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(modelTemperature),
	})
	if err != nil {
		c.logger.Error("chat completion failed", "error", err)
		return "", &llm.GenerationError{Provider: "openai", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &llm.GenerationError{Provider: "openai", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/mkonduri/docqa/internal/rag/llm"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

type llmClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
	logger       *logger_i.Logger
}

func NewClient(ctx context.Context, apiKey string, model string, systemPrompt string) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, &llm.GenerationError{Provider: "gemini", Err: err}
	}
	return &llmClient{
		client:       c,
		model:        model,
		systemPrompt: systemPrompt,
		logger:       logger_i.NewLogger("llm_gemini"),
	}, nil
}

func (c *llmClient) Generate(ctx context.Context, question string, contextBlocks []string) (string, error) {
	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: c.systemPrompt},
		},
	}

	userPrompt := llm.BuildUserPrompt(question, contextBlocks)

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{SystemInstruction: systemInstruction},
	)
	if err != nil {
		c.logger.Error("generate content failed", "error", err)
		return "", &llm.GenerationError{Provider: "gemini", Err: err}
	}

	answer := result.Text()
	if answer == "" {
		return "", &llm.GenerationError{Provider: "gemini", Err: errors.New("empty completion")}
	}
	return answer, nil
}

package geminiEmbedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mkonduri/docqa/internal/rag/embedding"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewClient(ctx context.Context, apiKey string, model string, dimension int) (embedding.Embedder, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, &embedding.APIError{Provider: "gemini", Err: err}
	}
	return &client{
		genAi:     c,
		model:     model,
		dimension: int32(dimension),
		logger:    logger_i.NewLogger("gemini_embedding"),
	}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, &embedding.APIError{Provider: "gemini", Err: fmt.Errorf("no texts provided")}
	}

	result, err := c.doCall(ctx, getContent(texts))
	if err != nil && isRateLimited(err) {
		c.logger.Warn("rate limit hit, retrying in 5 seconds", "error", err)
		time.Sleep(5 * time.Second)
		result, err = c.doCall(ctx, getContent(texts))
	}
	if err != nil {
		c.logger.Error("embeddings call failed", "count", len(texts), "error", err)
		return nil, &embedding.APIError{Provider: "gemini", Err: err}
	}

	if len(result.Embeddings) != len(texts) {
		return nil, &embedding.APIError{
			Provider: "gemini",
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(result.Embeddings), len(texts)),
		}
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, r := range result.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return contents
}

func isRateLimited(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}

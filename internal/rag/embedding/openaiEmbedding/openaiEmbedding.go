package openaiEmbedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mkonduri/docqa/internal/customHttpClient"
	"github.com/mkonduri/docqa/internal/rag/embedding"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

type client struct {
	openai    openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// NewClient builds an Embedder over the OpenAI embeddings endpoint. baseURL
// may be empty for the default endpoint, which makes any OpenAI-compatible
// provider usable by configuration alone.
func NewClient(apiKey string, baseURL string, model string, dimension int) embedding.Embedder {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Pooled()),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &client{
		openai:    openai.NewClient(opts...),
		model:     model,
		dimension: dimension,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
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
		return nil, &embedding.APIError{Provider: "openai", Err: fmt.Errorf("no texts provided")}
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}
	if c.dimension > 0 {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.openai.Embeddings.New(ctx, params)
	if err != nil {
		c.logger.Error("embeddings call failed", "count", len(texts), "error", err)
		return nil, &embedding.APIError{Provider: "openai", Err: err}
	}

	if len(resp.Data) != len(texts) {
		return nil, &embedding.APIError{
			Provider: "openai",
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vector := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vector[j] = float32(v)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

package llm

import (
	"context"
	"fmt"
)

// Provider answers a question given the retrieved context blocks, each
// already tagged with its source header.
type Provider interface {
	Generate(ctx context.Context, question string, contextBlocks []string) (string, error)
}

// GenerationError is a transport, auth or provider failure from the chat API.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// BuildUserPrompt joins context blocks and the question the way the chat
// models expect them.
func BuildUserPrompt(question string, contextBlocks []string) string {
	contextText := ""
	for i, block := range contextBlocks {
		if i > 0 {
			contextText += "\n"
		}
		contextText += block
	}
	return fmt.Sprintf("Question:\n%s\n\nContext:\n%s\n\nAnswer:", question, contextText)
}

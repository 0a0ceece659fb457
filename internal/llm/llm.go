// Package llm talks to the language models that turn a prompt into a query
// plan. Two providers exist: any OpenAI-compatible chat completions endpoint
// and AWS Bedrock.
package llm

import (
	"context"
	"fmt"

	"github.com/Talin12/DataSage/internal/config"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces a single completion for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// NewCompleter picks a provider from configuration: the OpenAI-compatible
// endpoint when an API key is set, otherwise Bedrock when enabled. It returns
// nil, nil when neither is configured.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, error) {
	if cfg.LLM.APIKey != "" {
		client, err := NewClient(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("chat client: %w", err)
		}
		return client, nil
	}

	if cfg.Bedrock.Enabled {
		client, err := NewBedrockClient(ctx, cfg.Bedrock, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("bedrock client: %w", err)
		}
		return client, nil
	}

	return nil, nil
}

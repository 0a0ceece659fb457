package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/Talin12/DataSage/internal/config"
)

// InvokeModelAPI is the slice of the Bedrock runtime used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient completes chats with a Meta Llama model on AWS Bedrock.
type BedrockClient struct {
	bedrock     InvokeModelAPI
	modelID     string
	maxTokens   int
	temperature float64
}

// NewBedrockClient loads the default AWS credential chain for the region.
// Generation settings are shared with the chat endpoint configuration.
func NewBedrockClient(ctx context.Context, cfg config.BedrockConfig, gen config.LLMConfig) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID, gen), nil
}

func newBedrockClient(api InvokeModelAPI, modelID string, gen config.LLMConfig) *BedrockClient {
	c := &BedrockClient{
		bedrock:     api,
		modelID:     modelID,
		maxTokens:   gen.MaxTokens,
		temperature: gen.Temperature,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.temperature < 0 {
		c.temperature = defaultTemperature
	}
	return c
}

// llamaRequest is the Meta Llama text generation request format.
type llamaRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
}

// llamaResponse is the Meta Llama text generation response format.
type llamaResponse struct {
	Generation string `json:"generation"`
	StopReason string `json:"stop_reason"`
}

func (c *BedrockClient) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody, err := json.Marshal(llamaRequest{
		Prompt:      llamaPrompt(messages),
		MaxGenLen:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		ContentType: strPtr("application/json"),
		Accept:      strPtr("application/json"),
		Body:        reqBody,
	})
	if err != nil {
		return "", fmt.Errorf("invoke model: %w", err)
	}

	var result llamaResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return strings.TrimSpace(result.Generation), nil
}

// Model returns the Bedrock model identifier.
func (c *BedrockClient) Model() string { return c.modelID }

// llamaPrompt renders messages with the Llama 3 chat template and leaves the
// assistant turn open.
func llamaPrompt(messages []Message) string {
	var b strings.Builder
	b.WriteString("<|begin_of_text|>")
	for _, m := range messages {
		b.WriteString("<|start_header_id|>")
		b.WriteString(m.Role)
		b.WriteString("<|end_header_id|>\n\n")
		b.WriteString(m.Content)
		b.WriteString("<|eot_id|>")
	}
	b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return b.String()
}

func strPtr(s string) *string { return &s }

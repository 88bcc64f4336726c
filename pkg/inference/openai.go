package inference

import (
	"cmp"
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultMaxCompletionTokens = 4096

// OpenAIInferencer implements Inferencer using OpenAI's official Go SDK. It
// also serves any OpenAI-compatible endpoint through ChangeBaseURL.
type OpenAIInferencer struct {
	client      *openai.Client
	apiKey      string
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAIInferencer creates a new inferencer instance using OpenAI client.
func NewOpenAIInferencer(apiKey string, model string) *OpenAIInferencer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIInferencer{
		client:    &client,
		apiKey:    apiKey,
		model:     cmp.Or(model, "gpt-4o-mini"),
		maxTokens: defaultMaxCompletionTokens,
	}
}

func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(baseURL),
	)
	o.client = &client
}

func (o *OpenAIInferencer) SetModel(model string) {
	o.model = model
}

func (o *OpenAIInferencer) Model() string {
	return o.model
}

// SetMaxTokens caps completion length; n <= 0 restores the default.
func (o *OpenAIInferencer) SetMaxTokens(n int64) {
	o.maxTokens = cmp.Or(max(n, 0), defaultMaxCompletionTokens)
}

// SetTemperature overrides the sampling temperature; 0 leaves the backend default.
func (o *OpenAIInferencer) SetTemperature(t float64) {
	o.temperature = t
}

// Infer sends the conversation to the chat completion endpoint and returns the output.
func (o *OpenAIInferencer) Infer(ctx context.Context, model string, messages []Message) (Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:               cmp.Or(model, o.model),
		Messages:            toOpenAIMessages(messages),
		MaxCompletionTokens: openai.Int(o.maxTokens),
	}
	if o.temperature > 0 {
		params.Temperature = openai.Float(o.temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("openai inference error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, ErrNoChoices
	}

	out := Completion{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: resp.Choices[0].FinishReason,
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	if err := Verify(out); err != nil {
		return out, err
	}
	return out, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

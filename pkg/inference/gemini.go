package inference

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiInferencer struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiInferencer creates a new inferencer backed by the Gemini API.
func NewGeminiInferencer(ctx context.Context, apiKey string, model string) (*GeminiInferencer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiInferencer{
		client:    client,
		model:     cmp.Or(model, "gemini-2.5-flash"),
		maxTokens: defaultMaxCompletionTokens,
	}, nil
}

func (o *GeminiInferencer) Model() string {
	return o.model
}

// Infer maps the conversation onto Gemini contents. Assistant turns become
// model turns and system turns are merged into the system instruction.
func (o *GeminiInferencer) Infer(ctx context.Context, model string, messages []Message) (Completion, error) {
	contents, system := toGeminiContents(messages)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: o.maxTokens,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := o.client.Models.GenerateContent(ctx, cmp.Or(model, o.model), contents, config)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(result.Candidates) == 0 {
		return Completion{}, ErrNoChoices
	}

	out := Completion{
		Text:         result.Text(),
		FinishReason: string(result.Candidates[0].FinishReason),
	}
	if u := result.UsageMetadata; u != nil && u.TotalTokenCount > 0 {
		out.Usage = &Usage{
			PromptTokens:     int64(u.PromptTokenCount),
			CompletionTokens: int64(u.CandidatesTokenCount),
			TotalTokens:      int64(u.TotalTokenCount),
		}
	}
	if err := Verify(out); err != nil {
		return out, err
	}
	return out, nil
}

func toGeminiContents(messages []Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			// Gemini rejects empty text parts. An anchor taken after a
			// trailing newline is empty.
			if m.Content == "" {
				continue
			}
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

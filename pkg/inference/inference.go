package inference

import (
	"context"
	"errors"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversational turn sent to a backend.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Usage is the token accounting reported by a backend.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Completion is the single text a backend produced for a request. Usage is
// nil when the backend did not report any.
type Completion struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Inferencer sends an ordered conversation to a text generation backend and
// returns one completion. An empty model selects the backend's default.
type Inferencer interface {
	Infer(ctx context.Context, model string, messages []Message) (Completion, error)
}

var (
	ErrEmptyCompletion = errors.New("empty completion content")
	ErrNoChoices       = errors.New("no choices returned")
)

// Verify checks that the result carries usable text.
func Verify(c Completion) error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyCompletion
	}
	return nil
}

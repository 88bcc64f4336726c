package inference

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var ErrScriptExhausted = errors.New("scripted: no response left")

// Scripted is a deterministic Inferencer. It answers from Responses in order
// and falls back to Respond once they run out. Every request is recorded.
type Scripted struct {
	Responses []Completion
	Respond   func(messages []Message) (Completion, error)

	mu     sync.Mutex
	calls  [][]Message
	models []string
}

// NewScripted answers each request with the next text.
func NewScripted(texts ...string) *Scripted {
	s := &Scripted{}
	for _, t := range texts {
		s.Responses = append(s.Responses, Completion{Text: t})
	}
	return s
}

func (s *Scripted) Infer(ctx context.Context, model string, messages []Message) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}

	s.mu.Lock()
	s.calls = append(s.calls, slices.Clone(messages))
	s.models = append(s.models, model)
	if len(s.Responses) > 0 {
		out := s.Responses[0]
		s.Responses = s.Responses[1:]
		s.mu.Unlock()
		return out, Verify(out)
	}
	respond := s.Respond
	s.mu.Unlock()

	if respond == nil {
		return Completion{}, ErrScriptExhausted
	}
	return respond(messages)
}

// Calls returns the conversations received so far.
func (s *Scripted) Calls() [][]Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Models returns the model argument of every request.
func (s *Scripted) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.models)
}

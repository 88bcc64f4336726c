package inference

import (
	"maps"
	"sync"
)

// Totals aggregates usage for one pipeline stage.
type Totals struct {
	Calls            int   `json:"calls"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
	Estimated        int   `json:"estimated_calls,omitempty"`
}

// Ledger tracks token usage per stage. It is safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	stages map[string]Totals
}

func NewLedger() *Ledger {
	return &Ledger{stages: make(map[string]Totals)}
}

// Record adds u to stage. estimated marks usage counted locally instead of
// reported by the backend.
func (l *Ledger) Record(stage string, u Usage, estimated bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.stages[stage]
	t.Calls++
	t.PromptTokens += u.PromptTokens
	t.CompletionTokens += u.CompletionTokens
	t.TotalTokens += u.TotalTokens
	if estimated {
		t.Estimated++
	}
	l.stages[stage] = t
}

func (l *Ledger) Stages() map[string]Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.stages)
}

func (l *Ledger) Total() Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum Totals
	for _, t := range l.stages {
		sum.Calls += t.Calls
		sum.PromptTokens += t.PromptTokens
		sum.CompletionTokens += t.CompletionTokens
		sum.TotalTokens += t.TotalTokens
		sum.Estimated += t.Estimated
	}
	return sum
}

package story

import (
	"context"
	"fmt"
	"strings"

	"draftsmith/pkg/inference"
	"draftsmith/pkg/utils"
)

const (
	DefaultRounds = 2
	// ProseSeparator joins the output of consecutive rounds.
	ProseSeparator = "\n\n"
)

// GenerateFunc runs one generation request.
type GenerateFunc func(ctx context.Context, messages []inference.Message) (string, error)

// Continuation extends prose past a single response. The first round sends
// the prompt alone. Every later round replays the prompt, then the anchor of
// the previous round as an assistant turn, then Prompt as a user turn.
type Continuation struct {
	// Rounds is the total number of generation calls. Zero means DefaultRounds.
	Rounds int
	// Prompt is the user turn asking for more text. Empty means ContinuePrompt.
	Prompt string
	// Anchor picks the text replayed from the previous round. Nil means LastLine.
	Anchor func(string) string
	// Stop, when set, is consulted with the prose so far after each round
	// but the last and ends the loop early when it returns true.
	Stop func(prose string) bool
}

func (c Continuation) rounds() int {
	if c.Rounds <= 0 {
		return DefaultRounds
	}
	return c.Rounds
}

func (c Continuation) anchor(s string) string {
	if c.Anchor == nil {
		return LastLine(s)
	}
	return c.Anchor(s)
}

// Run drives the rounds and returns the joined prose. round in the error is
// 1-based.
func (c Continuation) Run(ctx context.Context, gen GenerateFunc, prompt string) (string, error) {
	cont := c.Prompt
	if cont == "" {
		cont = ContinuePrompt
	}

	var (
		parts    []string
		previous string
	)
	for round := 1; round <= c.rounds(); round++ {
		if round > 1 && c.Stop != nil && c.Stop(strings.Join(parts, ProseSeparator)) {
			break
		}

		messages := []inference.Message{inference.UserMessage(prompt)}
		if round > 1 {
			messages = append(messages,
				inference.AssistantMessage(c.anchor(previous)),
				inference.UserMessage(cont),
			)
		}

		text, err := gen(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("round %d: %w", round, err)
		}
		parts = append(parts, text)
		previous = text
	}
	return strings.Join(parts, ProseSeparator), nil
}

// TokenTarget stops once prose reaches n tokens for model. Counting errors
// never stop the loop.
func TokenTarget(model string, n int) func(string) bool {
	return func(prose string) bool {
		if n <= 0 {
			return false
		}
		count, err := utils.CountTokens(model, prose)
		return err == nil && count >= n
	}
}

package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type flaky struct {
	failures int
	err      error
	calls    int
}

func (f *flaky) Infer(ctx context.Context, model string, messages []Message) (Completion, error) {
	f.calls++
	if f.calls <= f.failures {
		return Completion{}, f.err
	}
	return Completion{Text: "ok"}, nil
}

func quietLogger() *log.Logger {
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	return logger
}

func TestScriptedAnswersInOrderAndRecords(t *testing.T) {
	s := NewScripted("first", "second")
	ctx := context.Background()

	out, err := s.Infer(ctx, "m1", []Message{UserMessage("a")})
	require.NoError(t, err)
	assert.Equal(t, "first", out.Text)

	out, err = s.Infer(ctx, "", []Message{UserMessage("b"), AssistantMessage("c")})
	require.NoError(t, err)
	assert.Equal(t, "second", out.Text)

	_, err = s.Infer(ctx, "", nil)
	assert.ErrorIs(t, err, ErrScriptExhausted)

	calls := s.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []Message{UserMessage("b"), AssistantMessage("c")}, calls[1])
	assert.Equal(t, []string{"m1", "", ""}, s.Models())
}

func TestScriptedEmptyTextFailsVerify(t *testing.T) {
	s := NewScripted("  \n")
	_, err := s.Infer(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestRetryingRecoversFromTransientErrors(t *testing.T) {
	f := &flaky{failures: 2, err: errors.New("connection reset")}
	r := NewRetrying(f, 3, quietLogger())
	r.SetBackoff(time.Millisecond)

	out, err := r.Infer(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.Equal(t, 3, f.calls)
}

func TestRetryingGivesUpAfterAttempts(t *testing.T) {
	f := &flaky{failures: 10, err: errors.New("boom")}
	r := NewRetrying(f, 2, quietLogger())
	r.SetBackoff(time.Millisecond)

	_, err := r.Infer(context.Background(), "", nil)
	require.Error(t, err)
	assert.Equal(t, 3, f.calls)
}

func TestRetryingSkipsClientErrors(t *testing.T) {
	f := &flaky{failures: 10, err: &openai.Error{StatusCode: http.StatusUnauthorized}}
	r := NewRetrying(f, 5, quietLogger())
	r.SetBackoff(time.Millisecond)

	_, err := r.Infer(context.Background(), "", nil)
	require.Error(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"rate limited", &openai.Error{StatusCode: http.StatusTooManyRequests}, true},
		{"timeout", &openai.Error{StatusCode: http.StatusRequestTimeout}, true},
		{"bad request", &openai.Error{StatusCode: http.StatusBadRequest}, false},
		{"server error", &openai.Error{StatusCode: http.StatusBadGateway}, true},
		{"empty", ErrEmptyCompletion, true},
		{"gemini bad request", genai.APIError{Code: http.StatusBadRequest}, false},
		{"gemini forbidden", fmt.Errorf("failed to generate content: %w", genai.APIError{Code: http.StatusForbidden}), false},
		{"gemini rate limited", genai.APIError{Code: http.StatusTooManyRequests}, true},
		{"gemini unavailable", &genai.APIError{Code: http.StatusServiceUnavailable}, true},
		{"gemini not found pointer", &genai.APIError{Code: http.StatusNotFound}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestLimitedHonoursContext(t *testing.T) {
	l := NewLimited(NewScripted("a", "b"), 1)
	ctx := context.Background()

	_, err := l.Infer(ctx, "", nil)
	require.NoError(t, err)

	// The second token is a minute away.
	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Infer(ctx, "", nil)
	require.Error(t, err)
}

func TestLedgerTotals(t *testing.T) {
	l := NewLedger()
	l.Record("summary", Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, false)
	l.Record("scene", Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}, true)
	l.Record("scene", Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}, false)

	stages := l.Stages()
	assert.Equal(t, Totals{Calls: 2, PromptTokens: 4, CompletionTokens: 5, TotalTokens: 9, Estimated: 1}, stages["scene"])
	assert.Equal(t, Totals{Calls: 3, PromptTokens: 14, CompletionTokens: 10, TotalTokens: 24, Estimated: 1}, l.Total())
}

func TestToOpenAIMessagesKeepsRoles(t *testing.T) {
	msgs := toOpenAIMessages([]Message{
		SystemMessage("sys"),
		UserMessage("prompt"),
		AssistantMessage("anchor"),
	})
	require.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
}

func TestToGeminiContentsMapsAssistantToModel(t *testing.T) {
	contents, system := toGeminiContents([]Message{
		SystemMessage("be terse"),
		UserMessage("prompt"),
		AssistantMessage("anchor"),
		UserMessage("Continue writing the story."),
	})
	assert.Equal(t, "be terse", system)
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "anchor", contents[1].Parts[0].Text)
}

func TestToGeminiContentsSkipsEmptyAssistantTurn(t *testing.T) {
	contents, _ := toGeminiContents([]Message{
		UserMessage("prompt"),
		AssistantMessage(""),
		UserMessage("Continue writing the story."),
	})
	require.Len(t, contents, 2)
	for _, c := range contents {
		assert.Equal(t, string(genai.RoleUser), c.Role)
		require.Len(t, c.Parts, 1)
		assert.NotEmpty(t, c.Parts[0].Text)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "carrier-pigeon"})
	require.Error(t, err)
}

func TestNewWrapsBackend(t *testing.T) {
	inf, err := New(context.Background(), Options{Provider: "local", MaxRetries: 2, RequestsPerMinute: 30, Logger: quietLogger()})
	require.NoError(t, err)
	r, ok := inf.(*Retrying)
	require.True(t, ok)
	_, ok = r.next.(*Limited)
	assert.True(t, ok)
}

package inference

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

const (
	defaultRetryBase = time.Second
	maxRetryDelay    = 30 * time.Second
)

// Retrying re-issues failed requests up to Attempts extra times with
// exponential backoff. Cancellation and client errors are returned at once.
type Retrying struct {
	next     Inferencer
	attempts int
	base     time.Duration
	logger   *log.Logger
}

func NewRetrying(next Inferencer, attempts int, logger *log.Logger) *Retrying {
	if logger == nil {
		logger = log.Default()
	}
	return &Retrying{
		next:     next,
		attempts: max(attempts, 0),
		base:     defaultRetryBase,
		logger:   logger,
	}
}

// SetBackoff changes the delay before the first retry.
func (r *Retrying) SetBackoff(base time.Duration) {
	r.base = base
}

func (r *Retrying) Infer(ctx context.Context, model string, messages []Message) (Completion, error) {
	delay := r.base
	for attempt := 0; ; attempt++ {
		out, err := r.next.Infer(ctx, model, messages)
		if err == nil || attempt >= r.attempts || !Retryable(err) {
			return out, err
		}

		r.logger.Warn("generation failed, retrying", "attempt", attempt+1, "max", r.attempts, "delay", delay, "error", err)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Completion{}, ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

// Retryable reports whether err may succeed on a second attempt.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return retryableStatus(openaiErr.StatusCode)
	}
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return retryableStatus(geminiErr.Code)
	}
	var geminiPtr *genai.APIError
	if errors.As(err, &geminiPtr) && geminiPtr != nil {
		return retryableStatus(geminiPtr.Code)
	}
	return true
}

// retryableStatus rejects client errors other than timeouts and rate limits.
func retryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 400 && code < 500:
		return false
	}
	return true
}

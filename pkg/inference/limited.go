package inference

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limited spaces requests to at most rpm per minute.
type Limited struct {
	next    Inferencer
	limiter *rate.Limiter
}

func NewLimited(next Inferencer, rpm int) *Limited {
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Every(time.Minute / time.Duration(rpm))
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (l *Limited) Infer(ctx context.Context, model string, messages []Message) (Completion, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf("request rate limit wait: %w", err)
	}
	return l.next.Infer(ctx, model, messages)
}

package inference

import (
	"cmp"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Options selects and configures a backend.
type Options struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64

	RequestsPerMinute int
	MaxRetries        int
	Logger            *log.Logger
}

var Providers = []string{"openai", "gemini", "grok", "kimi", "moonshot", "local"}

// New builds the backend named by opts.Provider and wraps it with rate
// limiting and retries when configured.
func New(ctx context.Context, opts Options) (Inferencer, error) {
	var inf Inferencer
	switch opts.Provider {
	case "", "openai":
		o := NewOpenAIInferencer(opts.APIKey, opts.Model)
		if opts.BaseURL != "" {
			o.ChangeBaseURL(opts.BaseURL)
		}
		inf = tune(o, opts)
	case "grok":
		inf = tune(NewGrokInferencer(opts.APIKey, opts.Model), opts)
	case "kimi":
		inf = tune(NewKimiInferencer(opts.APIKey, opts.Model), opts)
	case "moonshot":
		inf = tune(NewMoonshotInferencer(opts.APIKey, opts.Model), opts)
	case "local":
		inf = tune(NewLocalInferencer(opts.BaseURL, opts.Model), opts)
	case "gemini":
		g, err := NewGeminiInferencer(ctx, opts.APIKey, opts.Model)
		if err != nil {
			return nil, err
		}
		if opts.MaxTokens > 0 {
			g.maxTokens = int32(opts.MaxTokens)
		}
		inf = g
	default:
		return nil, fmt.Errorf("unknown provider %q (want one of %v)", opts.Provider, Providers)
	}

	if m, ok := inf.(interface{ Model() string }); ok && opts.Logger != nil {
		opts.Logger.Info("backend ready", "provider", cmp.Or(opts.Provider, "openai"), "model", m.Model())
	}

	if opts.RequestsPerMinute > 0 {
		inf = NewLimited(inf, opts.RequestsPerMinute)
	}
	if opts.MaxRetries > 0 {
		inf = NewRetrying(inf, opts.MaxRetries, opts.Logger)
	}
	return inf, nil
}

func tune(o *OpenAIInferencer, opts Options) *OpenAIInferencer {
	o.SetMaxTokens(opts.MaxTokens)
	o.SetTemperature(opts.Temperature)
	return o
}

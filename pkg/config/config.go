package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"draftsmith/pkg/inference"
	"draftsmith/pkg/story"
)

// Config holds all draftsmith configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Story   StoryConfig   `yaml:"story"`
	Output  string        `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig selects the generation backend.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	// APIKey overrides the provider's key variable when set.
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int64   `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	RequestsPerMinute int `yaml:"requests_per_minute"`
	MaxRetries        int `yaml:"max_retries"`
}

// StoryConfig shapes the generated draft.
type StoryConfig struct {
	Chapters    int    `yaml:"chapters"`
	MinScenes   int    `yaml:"min_scenes"`
	Rounds      int    `yaml:"rounds"`
	TokenTarget int    `yaml:"token_target"`
	Concurrency int    `yaml:"concurrency"`
	Strict      bool   `yaml:"strict"`
	Theme       string `yaml:"theme"`
	PlotFile    string `yaml:"plot_file"`
	Seed        uint64 `yaml:"seed"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// keyEnv names the variable holding each provider's API key.
var keyEnv = map[string]string{
	"openai":   "OPENAI_API_KEY",
	"gemini":   "GEMINI_API_KEY",
	"grok":     "GROK_API_KEY",
	"kimi":     "KIMI_API_KEY",
	"moonshot": "MOONSHOT_API_KEY",
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:   "openai",
			MaxRetries: 2,
		},
		Story: StoryConfig{
			Chapters:    10,
			MinScenes:   story.DefaultMinScenes,
			Rounds:      story.DefaultRounds,
			Concurrency: 1,
		},
		Output:  "var",
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path or a missing file keeps the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.LLM.Provider, "DRAFTSMITH_PROVIDER")
	setString(&c.LLM.Model, "OPENAI_MODEL")
	setString(&c.LLM.Model, "DRAFTSMITH_MODEL")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Output, "DRAFTSMITH_OUTPUT")
	setString(&c.Story.Theme, "DRAFTSMITH_THEME")
	setString(&c.Story.PlotFile, "DRAFTSMITH_PLOT_FILE")
	setString(&c.Server.Addr, "DRAFTSMITH_ADDR")
	setString(&c.Logging.Level, "DRAFTSMITH_LOG_LEVEL")

	return errors.Join(
		setInt(&c.Story.Chapters, "DRAFTSMITH_CHAPTERS"),
		setInt(&c.Story.Concurrency, "DRAFTSMITH_CONCURRENCY"),
		setInt(&c.Story.Rounds, "DRAFTSMITH_ROUNDS"),
		setInt(&c.Story.TokenTarget, "DRAFTSMITH_TOKEN_TARGET"),
		setInt(&c.LLM.RequestsPerMinute, "DRAFTSMITH_RPM"),
		setInt(&c.LLM.MaxRetries, "DRAFTSMITH_MAX_RETRIES"),
		setBool(&c.Story.Strict, "DRAFTSMITH_STRICT"),
	)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// APIKey returns the configured key or the provider's environment variable.
func (c *Config) APIKey() string {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	if env, ok := keyEnv[c.LLM.Provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(inference.Providers, c.LLM.Provider) {
		errs = append(errs, fmt.Errorf("invalid llm.provider %q (valid: %v)", c.LLM.Provider, inference.Providers))
	} else if c.LLM.Provider == "local" {
		if c.LLM.BaseURL == "" {
			errs = append(errs, errors.New("llm.base_url is required for the local provider"))
		}
	} else if c.APIKey() == "" {
		errs = append(errs, fmt.Errorf("no API key for %s (set %s)", c.LLM.Provider, keyEnv[c.LLM.Provider]))
	}
	if c.Story.Chapters < 1 {
		errs = append(errs, fmt.Errorf("story.chapters must be at least 1, got %d", c.Story.Chapters))
	}
	if c.Story.MinScenes < 1 {
		errs = append(errs, fmt.Errorf("story.min_scenes must be at least 1, got %d", c.Story.MinScenes))
	}
	if c.Story.Rounds < 1 {
		errs = append(errs, fmt.Errorf("story.rounds must be at least 1, got %d", c.Story.Rounds))
	}
	if c.Story.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("story.concurrency must be at least 1, got %d", c.Story.Concurrency))
	}
	if c.LLM.MaxRetries < 0 || c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("llm.max_retries and llm.requests_per_minute must not be negative"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// Level is the parsed logging level, info when unparsable.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Inference maps the LLM section onto backend options.
func (c *Config) Inference(logger *log.Logger) inference.Options {
	return inference.Options{
		Provider:          c.LLM.Provider,
		APIKey:            c.APIKey(),
		Model:             c.LLM.Model,
		BaseURL:           c.LLM.BaseURL,
		MaxTokens:         c.LLM.MaxTokens,
		Temperature:       c.LLM.Temperature,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
		MaxRetries:        c.LLM.MaxRetries,
		Logger:            logger,
	}
}

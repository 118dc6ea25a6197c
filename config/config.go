package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/logging"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/model/anthropic"
	"github.com/hupe1980/blogmesh/model/openai"
	"github.com/hupe1980/blogmesh/prompt"
	"github.com/hupe1980/blogmesh/search"
	"github.com/hupe1980/blogmesh/search/tavily"
)

// Supported text generation providers.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
)

var (
	// ErrMissingCredential is wrapped by Validate for every absent API key.
	ErrMissingCredential = errors.New("missing credential")
	// ErrUnknownProvider is returned for providers other than groq, openai and anthropic.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider        = "BLOGMESH_PROVIDER"
	EnvModel           = "BLOGMESH_MODEL"
	EnvBaseURL         = "BLOGMESH_BASE_URL"
	EnvPromptsDir      = "BLOGMESH_PROMPTS_DIR"
	EnvMaxIterations   = "BLOGMESH_MAX_ITERATIONS"
	EnvWordCount       = "BLOGMESH_WORD_COUNT"
	EnvLogLevel        = "BLOGMESH_LOG_LEVEL"
	EnvLogFormat       = "BLOGMESH_LOG_FORMAT"
	EnvGroqAPIKey      = "GROQ_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvTavilyAPIKey    = "TAVILY_API_KEY"
)

// Credentials holds provider API keys.
type Credentials struct {
	Groq      string `yaml:"groq,omitempty"`
	OpenAI    string `yaml:"openai,omitempty"`
	Anthropic string `yaml:"anthropic,omitempty"`
	Tavily    string `yaml:"tavily,omitempty"`
}

// LogConfig selects the structured logger's level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Config models blogmesh.yaml.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	// MaxModelCalls caps model invocations per process; zero disables the cap.
	MaxModelCalls int    `yaml:"max_model_calls,omitempty"`
	SearchDepth   string `yaml:"search_depth,omitempty"`
	PromptsDir    string `yaml:"prompts_dir,omitempty"`
	MaxIterations int    `yaml:"max_iterations"`
	WordCount     int    `yaml:"word_count"`
	Stream        bool   `yaml:"stream,omitempty"`

	Credentials Credentials `yaml:"credentials,omitempty"`
	Log         LogConfig   `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:      ProviderGroq,
		SearchDepth:   "basic",
		MaxIterations: core.DefaultMaxIterations,
		WordCount:     core.DefaultWordCount,
		Log:           LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads defaults, the YAML file at path (skipped when path is empty)
// and then the environment via getenv (os.Getenv when nil).
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: %s does not exist", path)
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Normalize()
	return nil
}

// ApplyEnv overlays non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString(&c.Provider, EnvProvider)
	setString(&c.Model, EnvModel)
	setString(&c.BaseURL, EnvBaseURL)
	setString(&c.PromptsDir, EnvPromptsDir)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Log.Format, EnvLogFormat)
	setString(&c.Credentials.Groq, EnvGroqAPIKey)
	setString(&c.Credentials.OpenAI, EnvOpenAIAPIKey)
	setString(&c.Credentials.Anthropic, EnvAnthropicAPIKey)
	setString(&c.Credentials.Tavily, EnvTavilyAPIKey)
	if err := setInt(&c.MaxIterations, EnvMaxIterations); err != nil {
		return err
	}
	if err := setInt(&c.WordCount, EnvWordCount); err != nil {
		return err
	}
	c.Normalize()
	return nil
}

// Normalize canonicalizes case-insensitive fields and fills an empty provider.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderGroq
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// ModelName returns the configured model or the provider default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	default:
		return openai.GroqDefaultModel
	}
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.Credentials.OpenAI
	case ProviderAnthropic:
		return c.Credentials.Anthropic
	default:
		return c.Credentials.Groq
	}
}

func (c *Config) apiKeyEnv() string {
	switch c.Provider {
	case ProviderOpenAI:
		return EnvOpenAIAPIKey
	case ProviderAnthropic:
		return EnvAnthropicAPIKey
	default:
		return EnvGroqAPIKey
	}
}

// Validate checks the configuration before any stage runs. All problems are
// reported together; credential problems wrap ErrMissingCredential.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderAnthropic:
		if c.APIKey() == "" {
			errs = append(errs, fmt.Errorf("%w: %s is not set", ErrMissingCredential, c.apiKeyEnv()))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider))
	}
	if c.Credentials.Tavily == "" {
		errs = append(errs, fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvTavilyAPIKey))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max_iterations must be >= 1, got %d", c.MaxIterations))
	}
	if c.WordCount < 1 {
		errs = append(errs, fmt.Errorf("word_count must be >= 1, got %d", c.WordCount))
	}
	if c.MaxModelCalls < 0 {
		errs = append(errs, fmt.Errorf("max_model_calls must be >= 0, got %d", c.MaxModelCalls))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the structured logger writing to out.
func (c *Config) NewLogger(out io.Writer) (*logging.StructuredLogger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	if out != nil {
		cfg.Output = out
	}
	cfg.Component = "blogmesh"
	return logging.NewLogger(cfg), nil
}

// NewModel builds the text generation adapter for the configured provider,
// wrapped in a call limiter when MaxModelCalls is set.
func (c *Config) NewModel(logger logging.Logger) (model.Model, error) {
	var m model.Model
	switch c.Provider {
	case ProviderGroq, ProviderOpenAI:
		fn := func(o *openai.Options) {
			o.Model = c.ModelName()
			o.Logger = logger
			if c.BaseURL != "" {
				o.BaseURL = c.BaseURL
			}
		}
		if c.Provider == ProviderGroq {
			m = openai.NewGroqModel(c.APIKey(), fn)
		} else {
			m = openai.NewModel(func(o *openai.Options) { o.APIKey = c.APIKey() }, fn)
		}
	case ProviderAnthropic:
		m = anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(c.ModelName())
			o.APIKey = c.APIKey()
			o.BaseURL = c.BaseURL
			o.Logger = logger
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.MaxModelCalls > 0 {
		return model.Limit(m, c.MaxModelCalls), nil
	}
	return m, nil
}

// NewSearcher builds the Tavily client.
func (c *Config) NewSearcher() (search.Searcher, error) {
	client, err := tavily.New(func(o *tavily.Options) {
		o.APIKey = c.Credentials.Tavily
		if c.SearchDepth != "" {
			o.SearchDepth = c.SearchDepth
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}
	return client, nil
}

// NewPrompts builds the template store, overlaying PromptsDir when set.
func (c *Config) NewPrompts() *prompt.Store {
	return prompt.New(func(o *prompt.Options) { o.Dir = c.PromptsDir })
}

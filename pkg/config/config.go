package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultMaxTokens is the per-call completion token ceiling applied when
	// the config does not set one.
	DefaultMaxTokens = 1000

	// DefaultOpeningMessage seeds the first user turn of every conversation.
	DefaultOpeningMessage = "Hello! I'm looking forward to our conversation."

	// DefaultConcurrency bounds how many conversations run at once.
	DefaultConcurrency = 4

	// DefaultMaxAttempts is the per-turn model call attempt limit.
	DefaultMaxAttempts = 3
)

// Agent describes one persona participating in a conversation.
type Agent struct {
	Name         string `yaml:"name" json:"name"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
}

// Experiment is the full configuration for one experiment run. It is
// validated once, before any conversation starts, and treated as read-only
// by every sample afterwards.
type Experiment struct {
	// Provider selects the model backend ("anthropic" or "openai").
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`

	ModelName string  `yaml:"model_name" json:"model_name"`
	Agents    []Agent `yaml:"agents" json:"agents"`

	// NumTurns is the number of rounds; each round produces one utterance
	// per agent, in roster order.
	NumTurns   int `yaml:"num_turns" json:"num_turns"`
	NumSamples int `yaml:"num_samples" json:"num_samples"`

	MaxTokens      int64  `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	OpeningMessage string `yaml:"opening_message,omitempty" json:"opening_message,omitempty"`

	// Concurrency bounds the number of in-flight conversations; the batch
	// runner never exceeds it regardless of NumSamples.
	Concurrency int `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`

	// MaxAttempts caps model call attempts per turn, counting the first.
	MaxAttempts int `yaml:"max_attempts,omitempty" json:"max_attempts,omitempty"`

	// RetryInitialDelay is the backoff delay after the first failed attempt.
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay,omitempty" json:"retry_initial_delay,omitempty"`
}

// Load reads and validates an experiment config from a YAML file.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Experiment
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("Loaded experiment config",
		"path", path,
		"model", cfg.ModelName,
		"agents", len(cfg.Agents),
		"num_turns", cfg.NumTurns,
		"num_samples", cfg.NumSamples)

	return &cfg, nil
}

func (c *Experiment) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.OpeningMessage == "" {
		c.OpeningMessage = DefaultOpeningMessage
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryInitialDelay == 0 {
		c.RetryInitialDelay = 500 * time.Millisecond
	}
}

// Validate checks the invariants every conversation relies on. A config that
// fails validation must never reach the batch runner.
func (c *Experiment) Validate() error {
	if c.ModelName == "" {
		return errors.New("model_name is required")
	}
	if len(c.Agents) == 0 {
		return errors.New("at least one agent is required")
	}
	for i, agent := range c.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agent %d has no name", i)
		}
	}
	if c.NumTurns < 1 {
		return fmt.Errorf("num_turns must be positive, got %d", c.NumTurns)
	}
	if c.NumSamples < 1 {
		return fmt.Errorf("num_samples must be positive, got %d", c.NumSamples)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

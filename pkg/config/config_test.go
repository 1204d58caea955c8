package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
model_name: claude-sonnet-4-20250514
num_turns: 3
num_samples: 5
agents:
  - name: optimist
    system_prompt: You see the upside of everything.
  - name: skeptic
    system_prompt: You question every claim.
`)

	cfg, err := Load(path)
	assert.NilError(t, err)

	assert.Equal(t, cfg.ModelName, "claude-sonnet-4-20250514")
	assert.Equal(t, cfg.NumTurns, 3)
	assert.Equal(t, cfg.NumSamples, 5)
	assert.Assert(t, is.Len(cfg.Agents, 2))
	assert.Equal(t, cfg.Agents[0].Name, "optimist")
	assert.Equal(t, cfg.Agents[1].Name, "skeptic")
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
model_name: claude-sonnet-4-20250514
num_turns: 1
num_samples: 1
agents:
  - name: solo
    system_prompt: Talk to yourself.
`)

	cfg, err := Load(path)
	assert.NilError(t, err)

	assert.Equal(t, cfg.Provider, "anthropic")
	assert.Equal(t, cfg.MaxTokens, int64(DefaultMaxTokens))
	assert.Equal(t, cfg.OpeningMessage, DefaultOpeningMessage)
	assert.Equal(t, cfg.Concurrency, DefaultConcurrency)
	assert.Equal(t, cfg.MaxAttempts, DefaultMaxAttempts)
	assert.Equal(t, cfg.RetryInitialDelay, 500*time.Millisecond)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "model_name: [unclosed")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	valid := func() Experiment {
		cfg := Experiment{
			ModelName:  "claude-sonnet-4-20250514",
			Agents:     []Agent{{Name: "a", SystemPrompt: "p"}},
			NumTurns:   2,
			NumSamples: 2,
		}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Experiment)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Experiment) {},
		},
		{
			name:    "missing model name",
			mutate:  func(c *Experiment) { c.ModelName = "" },
			wantErr: "model_name is required",
		},
		{
			name:    "empty roster",
			mutate:  func(c *Experiment) { c.Agents = nil },
			wantErr: "at least one agent is required",
		},
		{
			name:    "unnamed agent",
			mutate:  func(c *Experiment) { c.Agents[0].Name = "" },
			wantErr: "agent 0 has no name",
		},
		{
			name:    "zero turns",
			mutate:  func(c *Experiment) { c.NumTurns = 0 },
			wantErr: "num_turns must be positive",
		},
		{
			name:    "negative samples",
			mutate:  func(c *Experiment) { c.NumSamples = -1 },
			wantErr: "num_samples must be positive",
		},
		{
			name:    "negative max tokens",
			mutate:  func(c *Experiment) { c.MaxTokens = -5 },
			wantErr: "max_tokens must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NilError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

package experiment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attractorlabs/colloquy/pkg/chat"
	"github.com/attractorlabs/colloquy/pkg/config"
	"github.com/attractorlabs/colloquy/pkg/conversation"
)

func testResult() *Result {
	cfg := &config.Experiment{
		Provider:   "anthropic",
		ModelName:  "test-model",
		Agents:     []config.Agent{{Name: "A", SystemPrompt: "You are A."}},
		NumTurns:   1,
		NumSamples: 1,
		MaxTokens:  256,
	}
	return &Result{
		ID:         "run-1",
		StartedAt:  time.Date(2026, 8, 30, 12, 34, 56, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 30, 12, 35, 10, 0, time.UTC),
		Config:     cfg,
		Samples: []Sample{{
			Index:  0,
			Status: StatusCompleted,
			Conversation: conversation.Conversation{
				{Role: chat.MessageRoleAssistant, Speaker: "A", Content: "hi there"},
			},
		}},
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	runDir, err := Save(testResult(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260830_123456"), runDir)

	data, err := os.ReadFile(filepath.Join(runDir, "transcript.json"))
	require.NoError(t, err)

	var loaded Result
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "run-1", loaded.ID)
	require.Len(t, loaded.Samples, 1)
	assert.Equal(t, StatusCompleted, loaded.Samples[0].Status)
	require.Len(t, loaded.Samples[0].Conversation, 1)
	assert.Equal(t, "A", loaded.Samples[0].Conversation[0].Speaker)
	assert.Equal(t, "hi there", loaded.Samples[0].Conversation[0].Content)

	configData, err := os.ReadFile(filepath.Join(runDir, "config.yaml"))
	require.NoError(t, err)

	var echoed config.Experiment
	require.NoError(t, yaml.Unmarshal(configData, &echoed))
	assert.Equal(t, "test-model", echoed.ModelName)
	assert.Equal(t, 1, echoed.NumTurns)
}

func TestSaveAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	result := testResult()

	first, err := Save(result, dir)
	require.NoError(t, err)

	second, err := Save(result, dir)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Join(dir, "20260830_123456_1"), second)
}

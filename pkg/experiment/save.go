package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"
)

// Save writes a finished experiment to a timestamped directory under dir
// (default "logs"): transcript.json holds the ordered sample outcomes and
// config.yaml echoes the configuration for reproducibility. It returns the
// run directory path.
func Save(result *Result, dir string) (string, error) {
	if dir == "" {
		dir = "logs"
	}

	runDir := filepath.Join(dir, result.StartedAt.Format("20060102_150405"))
	for number := 1; ; number++ {
		if _, err := os.Stat(runDir); err != nil {
			break
		}
		runDir = filepath.Join(dir, fmt.Sprintf("%s_%d", result.StartedAt.Format("20060102_150405"), number))
	}

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	transcriptJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcripts: %w", err)
	}
	if err := atomic.WriteFile(filepath.Join(runDir, "transcript.json"), bytes.NewReader(transcriptJSON)); err != nil {
		return "", fmt.Errorf("failed to write transcript.json: %w", err)
	}

	configYAML, err := yaml.Marshal(result.Config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := atomic.WriteFile(filepath.Join(runDir, "config.yaml"), bytes.NewReader(configYAML)); err != nil {
		return "", fmt.Errorf("failed to write config.yaml: %w", err)
	}

	return runDir, nil
}

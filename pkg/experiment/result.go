package experiment

import (
	"time"

	"github.com/attractorlabs/colloquy/pkg/config"
	"github.com/attractorlabs/colloquy/pkg/conversation"
)

// Status is the terminal state of one sample.
type Status string

const (
	// StatusCompleted means the sample produced a full transcript.
	StatusCompleted Status = "completed"
	// StatusFailed means a turn failed irrecoverably after exhausting retries.
	StatusFailed Status = "failed"
	// StatusCancelled means the sample was interrupted mid-conversation.
	StatusCancelled Status = "cancelled"
	// StatusSkipped means cancellation arrived before the sample started.
	StatusSkipped Status = "skipped"
)

// Sample records the outcome of one conversation run. Failed and cancelled
// samples keep whatever partial transcript accumulated before the error.
type Sample struct {
	Index        int                       `json:"index"`
	Status       Status                    `json:"status"`
	Conversation conversation.Conversation `json:"conversation,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// Result is the aggregate outcome of an experiment run. Samples are ordered
// by submission index regardless of completion order.
type Result struct {
	ID         string             `json:"id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Samples    []Sample           `json:"samples"`
	Config     *config.Experiment `json:"config"`
}

// Completed counts samples that produced a full transcript.
func (r *Result) Completed() int {
	n := 0
	for _, s := range r.Samples {
		if s.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Conversations returns the transcripts of completed samples, in submission
// order.
func (r *Result) Conversations() []conversation.Conversation {
	out := make([]conversation.Conversation, 0, len(r.Samples))
	for _, s := range r.Samples {
		if s.Status == StatusCompleted {
			out = append(out, s.Conversation)
		}
	}
	return out
}

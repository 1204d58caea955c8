// Package experiment fans out independent conversation samples, bounds their
// concurrency, and assembles the ordered experiment result.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/attractorlabs/colloquy/pkg/config"
	"github.com/attractorlabs/colloquy/pkg/conversation"
	"github.com/attractorlabs/colloquy/pkg/model/provider"
	"github.com/attractorlabs/colloquy/pkg/retry"
)

// EventType identifies a progress event.
type EventType string

const (
	EventSampleStarted  EventType = "sample_started"
	EventTurnCompleted  EventType = "turn_completed"
	EventSampleFinished EventType = "sample_finished"
)

// Event is a best-effort progress notification. Finished counts samples that
// reached a terminal status so far; Total is NumSamples.
type Event struct {
	Type     EventType
	Sample   int
	Round    int
	Agent    string
	Status   Status
	Finished int
	Total    int
}

// Runner executes num_samples independent conversations against one provider
// and collects their outcomes.
type Runner struct {
	provider provider.Provider
	cfg      *config.Experiment
	events   chan<- Event
	retry    *retry.Config
}

// Opt customizes a Runner.
type Opt func(*Runner)

// WithEvents registers a progress channel. Sends are non-blocking: if the
// receiver lags, events are dropped rather than stalling a conversation.
func WithEvents(ch chan<- Event) Opt {
	return func(r *Runner) { r.events = ch }
}

// WithRetryConfig overrides the per-turn retry policy for every sample.
func WithRetryConfig(rc retry.Config) Opt {
	return func(r *Runner) { r.retry = &rc }
}

// NewRunner creates a runner for cfg.
func NewRunner(p provider.Provider, cfg *config.Experiment, opts ...Opt) *Runner {
	r := &Runner{provider: p, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes all samples and returns the aggregate result. Sample failures
// never abort other samples; cancellation stops issuing new work promptly and
// marks unstarted samples as skipped. The returned result always has one slot
// per sample, in submission order.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment config: %w", err)
	}

	result := &Result{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Config:    r.cfg,
		Samples:   make([]Sample, r.cfg.NumSamples),
	}

	slog.Info("Starting experiment",
		"id", result.ID,
		"model", r.cfg.ModelName,
		"agents", len(r.cfg.Agents),
		"num_turns", r.cfg.NumTurns,
		"num_samples", r.cfg.NumSamples,
		"concurrency", r.cfg.Concurrency)

	sem := semaphore.NewWeighted(int64(r.cfg.Concurrency))
	var wg sync.WaitGroup
	var finished atomic.Int64

	for i := range result.Samples {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Each goroutine writes only its own index-tagged slot, so the
			// result keeps submission order without any locking.
			result.Samples[i] = r.runSample(ctx, sem, i)

			n := int(finished.Add(1))
			r.emit(Event{
				Type:     EventSampleFinished,
				Sample:   i,
				Status:   result.Samples[i].Status,
				Finished: n,
				Total:    r.cfg.NumSamples,
			})
		}(i)
	}

	wg.Wait()
	result.FinishedAt = time.Now().UTC()

	slog.Info("Experiment finished",
		"id", result.ID,
		"completed", result.Completed(),
		"total", len(result.Samples))

	return result, nil
}

func (r *Runner) runSample(ctx context.Context, sem *semaphore.Weighted, i int) Sample {
	if err := sem.Acquire(ctx, 1); err != nil {
		// Cancellation arrived before this sample got a worker slot.
		return Sample{Index: i, Status: StatusSkipped, Error: err.Error()}
	}
	defer sem.Release(1)

	r.emit(Event{Type: EventSampleStarted, Sample: i, Total: r.cfg.NumSamples})

	opts := []conversation.Opt{
		conversation.WithTurnCallback(func(ev conversation.TurnEvent) {
			r.emit(Event{
				Type:   EventTurnCompleted,
				Sample: ev.Sample,
				Round:  ev.Round,
				Agent:  ev.Agent,
				Total:  r.cfg.NumSamples,
			})
		}),
	}
	if r.retry != nil {
		opts = append(opts, conversation.WithRetryConfig(*r.retry))
	}

	o := conversation.NewOrchestrator(r.provider, r.cfg, opts...)
	conv, err := o.Run(ctx, i)

	switch {
	case err == nil:
		return Sample{Index: i, Status: StatusCompleted, Conversation: conv}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return Sample{Index: i, Status: StatusCancelled, Conversation: conv, Error: err.Error()}
	default:
		slog.Warn("Sample failed", "sample", i, "error", err)
		return Sample{Index: i, Status: StatusFailed, Conversation: conv, Error: err.Error()}
	}
}

func (r *Runner) emit(ev Event) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- ev:
	default:
	}
}

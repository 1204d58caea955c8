package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/attractorlabs/colloquy/pkg/chat"
	"github.com/attractorlabs/colloquy/pkg/config"
	"github.com/attractorlabs/colloquy/pkg/model/provider"
	"github.com/attractorlabs/colloquy/pkg/retry"
)

// State tracks an orchestrator through its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// TurnEvent reports one completed turn to an optional observer.
type TurnEvent struct {
	Sample int
	Round  int
	Agent  string
	// Turn is the 1-based index of this turn within the conversation.
	Turn int
}

// Orchestrator drives one conversation end to end: it seeds a weaver, walks
// the roster round-robin for the configured number of rounds, calls the model
// once per turn with bounded retries, and assembles the transcript.
//
// An orchestrator is single use; create a fresh one per sample.
type Orchestrator struct {
	provider provider.Provider
	cfg      *config.Experiment
	retry    retry.Config
	onTurn   func(TurnEvent)
	state    State
}

// Opt customizes an Orchestrator.
type Opt func(*Orchestrator)

// WithRetryConfig overrides the retry policy derived from the experiment
// config.
func WithRetryConfig(rc retry.Config) Opt {
	return func(o *Orchestrator) { o.retry = rc }
}

// WithTurnCallback registers an observer invoked after every completed turn.
// It runs on the conversation goroutine and must not block.
func WithTurnCallback(fn func(TurnEvent)) Opt {
	return func(o *Orchestrator) { o.onTurn = fn }
}

// NewOrchestrator creates an orchestrator for one sample of cfg.
func NewOrchestrator(p provider.Provider, cfg *config.Experiment, opts ...Opt) *Orchestrator {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = cfg.MaxAttempts
	if cfg.RetryInitialDelay > 0 {
		rc.InitialDelay = cfg.RetryInitialDelay
	}

	o := &Orchestrator{
		provider: p,
		cfg:      cfg,
		retry:    rc,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the orchestrator's lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the conversation for the given sample index. On failure it
// returns the partial transcript accumulated so far alongside the error.
func (o *Orchestrator) Run(ctx context.Context, sample int) (Conversation, error) {
	if o.state != StateIdle {
		return nil, fmt.Errorf("orchestrator already ran (state %s)", o.state)
	}
	o.state = StateRunning

	weaver := NewWeaver(o.cfg.OpeningMessage)
	transcript := make(Conversation, 0, o.cfg.NumTurns*len(o.cfg.Agents))

	turn := 0
	for round := 1; round <= o.cfg.NumTurns; round++ {
		for _, agent := range o.cfg.Agents {
			text, err := o.runTurn(ctx, agent, weaver)
			if err != nil {
				o.state = StateFailed
				slog.Debug("Conversation failed",
					"sample", sample,
					"round", round,
					"agent", agent.Name,
					"error", err)
				return transcript, fmt.Errorf("agent %q failed in round %d: %w", agent.Name, round, err)
			}

			transcript = append(transcript, Entry{
				Role:    chat.MessageRoleAssistant,
				Speaker: agent.Name,
				Content: text,
			})
			weaver.Advance(text)
			turn++

			if o.onTurn != nil {
				o.onTurn(TurnEvent{Sample: sample, Round: round, Agent: agent.Name, Turn: turn})
			}
		}
	}

	o.state = StateCompleted
	return transcript, nil
}

// runTurn issues one model call with the weaver's current context, retrying
// transient failures up to the attempt budget. The request context is built
// once; retries replay the identical message list.
func (o *Orchestrator) runTurn(ctx context.Context, agent config.Agent, weaver *Weaver) (string, error) {
	req := provider.Request{
		Model:        o.cfg.ModelName,
		SystemPrompt: agent.SystemPrompt,
		Messages:     weaver.RequestContext(),
		MaxTokens:    o.cfg.MaxTokens,
	}

	var text string
	attempt := 0
	err := retry.Do(ctx, o.retry, func() error {
		attempt++
		generated, err := o.provider.Generate(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return retry.Permanent(err)
			}
			if !provider.Retriable(err) {
				return retry.Permanent(err)
			}
			slog.Warn("Model call failed, will retry",
				"agent", agent.Name,
				"attempt", attempt,
				"max_attempts", o.retry.MaxAttempts,
				"error", err)
			return err
		}
		text = generated
		return nil
	})

	return text, err
}

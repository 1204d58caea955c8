package conversation

import "github.com/attractorlabs/colloquy/pkg/chat"

// Weaver maintains the model-facing context of a single conversation: the
// append-only history plus the current message that prompts the next turn.
//
// Roles in the history are deliberately relabeled. Whatever an agent said
// last is replayed as a "user" message to the next agent, so each persona
// perceives the others' output as an incoming prompt. The seed opening
// message plays that user role for the very first turn.
type Weaver struct {
	history []chat.Message
	current string
}

// NewWeaver creates a weaver seeded with the opening message.
func NewWeaver(opening string) *Weaver {
	return &Weaver{current: opening}
}

// RequestContext returns the exact message list for the next model call:
// the history so far plus the current message as a trailing user turn.
// It does not mutate the weaver; calling it repeatedly without an
// intervening Advance returns identical output.
func (w *Weaver) RequestContext() []chat.Message {
	ctx := make([]chat.Message, 0, len(w.history)+1)
	ctx = append(ctx, w.history...)
	return append(ctx, chat.UserMessage(w.current))
}

// Advance records a completed turn: the current message and the model's
// response are appended to the history, and the response becomes the next
// prompt. Must be called exactly once per successful model call, in turn
// order; a Weaver is owned by a single conversation and is not safe for
// concurrent use.
func (w *Weaver) Advance(response string) {
	w.history = append(w.history,
		chat.UserMessage(w.current),
		chat.AssistantMessage(response),
	)
	w.current = response
}

// History returns a copy of the accumulated history.
func (w *Weaver) History() []chat.Message {
	out := make([]chat.Message, len(w.history))
	copy(out, w.history)
	return out
}

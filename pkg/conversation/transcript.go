package conversation

import "github.com/attractorlabs/colloquy/pkg/chat"

// Entry is the externally visible record of one agent utterance. Unlike the
// weaver's history, transcript entries keep the assistant role and tag the
// speaking persona.
type Entry struct {
	Role    chat.MessageRole `json:"role"`
	Speaker string           `json:"speaker"`
	Content string           `json:"content"`
}

// Conversation is the ordered transcript of one sample. A successful sample
// has exactly num_turns * len(agents) entries, in chronological turn order.
type Conversation []Entry

// Speakers returns the speaker of each entry, in order.
func (c Conversation) Speakers() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Speaker
	}
	return out
}

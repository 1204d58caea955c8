package chat

// MessageRole is the role a message plays in the model-facing context.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is one entry of the conversational context sent to a model.
//
// The history fed to the model uses relabeled roles: every agent's reply is
// recorded once as "assistant" (its own turn) and once as "user" (the prompt
// seen by the next agent). See conversation.Weaver.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: MessageRoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: MessageRoleAssistant, Content: content}
}

package llm

// Message roles understood by the chat endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// NewMessage returns a message with the given role and content.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

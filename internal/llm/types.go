package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for a streaming completion.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Usage reports token counts for a completed generation.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Chunk is one increment of a streaming completion. Content may be empty on
// chunks that only carry usage or a finish reason.
type Chunk struct {
	Content      string
	FinishReason string
	Usage        *Usage
}

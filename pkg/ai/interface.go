package ai

import "context"

// Message is one role-tagged turn of a chat-completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Options configures a single completion call
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completion is the text of the first choice plus the token usage
// metadata callers need for cost accounting
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns prompt + completion tokens for usage tracking
func (c *Completion) TotalTokens() int {
	return c.PromptTokens + c.CompletionTokens
}

// Client is the interface for chat-completion providers.
// Implement this interface to add new AI providers (OpenAI, Gemini, Ollama, etc.)
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (*Completion, error)
	// Available reports whether the provider was configured with credentials.
	// When false, every AI-backed operation must take its no-op/fallback path.
	Available() bool
}

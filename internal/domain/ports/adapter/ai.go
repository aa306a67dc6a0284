package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single drafting call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// DraftService is the port for LLM-backed outreach drafting.
type DraftService interface {
	// CountTokens returns prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact is unavailable).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	// Draft returns the assistant text plus usage as reported by the provider.
	Draft(ctx context.Context, model string, messages []Message) (string, Usage, error)
}

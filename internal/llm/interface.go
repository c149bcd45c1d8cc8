package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat completion call.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response carries the completion text and the tokens the backend billed for it.
type Response struct {
	Text       string
	TokensUsed int
}

// Backend is a completion provider.
type Backend interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

package driven

import "context"

// CompletionService sends a message sequence to a language-model completion
// endpoint and returns the raw reply text. This is an optional service -
// when nil, the chat assistant is disabled and the rest of the application
// works unaffected.
//
// Implementations may include:
//   - OpenAI (or any API-compatible endpoint)
//   - Local inference servers (Ollama, LM Studio)
type CompletionService interface {
	// Chat sends the full message sequence (system prompt + history +
	// latest user turn) in one request and returns the first choice's
	// text. No streaming, no partial results, no retry - retries, if any,
	// are the caller's responsibility.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// request, without running inference.
	Ping(ctx context.Context) error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

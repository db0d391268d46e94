package driving

import (
	"context"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// AssistantService is the conversational dispatch engine. It owns the
// session transcript and, per user turn, classifies the message, routes it
// to the matching intent handler, and appends the resulting assistant
// messages.
type AssistantService interface {
	// Send runs one dispatch turn: it appends a user message, classifies
	// it, executes the matching handler, and appends at least one
	// assistant message. The appended assistant messages are returned.
	//
	// Send returns domain.ErrEmptyInput for whitespace-only input and
	// domain.ErrTurnInFlight when a turn is already running; every other
	// failure is converted into a transcript message and nil error.
	Send(ctx context.Context, input string, chatCtx domain.ChatContext) ([]domain.Message, error)

	// Transcript returns a copy of the session's messages in order.
	Transcript() []domain.Message

	// State reports the engine's phase. Callers disable input while it is
	// not domain.ChatIdle.
	State() domain.ChatState

	// Reset clears the transcript back to the greeting and starts a fresh
	// session. Invoked on navigation between routes.
	Reset()

	// SessionID identifies the current conversation session.
	SessionID() string
}

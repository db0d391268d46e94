package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"

	// RoleAssistant is a message produced by the assistant.
	RoleAssistant Role = "assistant"
)

// Message is one turn in the assistant conversation. Identifiers are
// assigned monotonically by the dispatch engine and are unique within a
// session. The sequence is append-only except for the documented in-place
// replacement of the summary placeholder.
type Message struct {
	ID        int64
	Role      Role
	Content   string
	CreatedAt time.Time
}

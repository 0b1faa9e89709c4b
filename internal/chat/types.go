package chat

import "time"

// Roles mirror what the views render. The backend persists sender as
// "user" or "bot"; "bot" maps to RoleAssistant at the API boundary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a session transcript. The last
// assistant message is mutable while a response is streaming in;
// everything else is settled.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the client's view of a remote chat session.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

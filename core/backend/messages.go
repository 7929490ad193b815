package backend

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry as it travels over the wire. Prior
// messages are attached to every submission so the backend always sees the
// full conversation context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Latency is the measured submit-to-response time in milliseconds.
	// Only assistant messages carry it.
	Latency int64 `json:"latency,omitempty"`
}

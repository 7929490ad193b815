package conversation

import (
	"sync"

	"github.com/voicylabs/voicy-core/core/backend"
)

// transcript is the append-only conversation history. It is owned by the
// client and grows only through appendExchange, so a turn contributes either
// both of its entries or none.
type transcript struct {
	mu       sync.RWMutex
	messages []backend.Message
}

// appendExchange atomically appends the user line and the assistant line
// produced by one completed turn.
func (t *transcript) appendExchange(user, assistant backend.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, user, assistant)
}

func (t *transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.messages)
}

// Snapshot returns a point-in-time copy of the transcript, oldest first.
func (t *transcript) Snapshot() []backend.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	messages := make([]backend.Message, len(t.messages))
	copy(messages, t.messages)
	return messages
}

// Values is an iterator over the stored messages from earliest to latest.
func (t *transcript) Values(yield func(backend.Message) bool) {
	for _, message := range t.Snapshot() {
		if !yield(message) {
			return
		}
	}
}

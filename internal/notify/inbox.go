// Package notify keeps the transient messages shown to a user, one queue per
// user. The client renders the head of its queue and dismisses it by id.
package notify

import (
	"sync"

	"quiz-app/internal/apperr"

	"github.com/google/uuid"
)

type Message struct {
	ID      string      `json:"id"`
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

type Inbox struct {
	mu     sync.Mutex
	queues map[string][]Message
	limit  int
}

// NewInbox creates an inbox that keeps at most limit messages per user,
// dropping the oldest. A limit of zero or less keeps everything.
func NewInbox(limit int) *Inbox {
	return &Inbox{queues: make(map[string][]Message), limit: limit}
}

// Push appends a message for owner and returns it.
func (b *Inbox) Push(owner string, kind apperr.Kind, text string) Message {
	msg := Message{ID: uuid.NewString(), Kind: kind, Message: text}

	b.mu.Lock()
	defer b.mu.Unlock()

	queue := append(b.queues[owner], msg)
	if b.limit > 0 && len(queue) > b.limit {
		queue = queue[len(queue)-b.limit:]
	}
	b.queues[owner] = queue
	return msg
}

// PushError records err for owner using its taxonomy kind.
func (b *Inbox) PushError(owner string, err error) Message {
	e := apperr.Coerce(err)
	return b.Push(owner, e.Kind, e.Message)
}

// Head returns the oldest message for owner.
func (b *Inbox) Head(owner string) (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue := b.queues[owner]
	if len(queue) == 0 {
		return Message{}, false
	}
	return queue[0], true
}

func (b *Inbox) List(owner string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Message, len(b.queues[owner]))
	copy(out, b.queues[owner])
	return out
}

// Clear removes the message with the given id. It reports whether one was
// removed.
func (b *Inbox) Clear(owner, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue := b.queues[owner]
	for i, msg := range queue {
		if msg.ID != id {
			continue
		}
		queue = append(queue[:i], queue[i+1:]...)
		if len(queue) == 0 {
			delete(b.queues, owner)
		} else {
			b.queues[owner] = queue
		}
		return true
	}
	return false
}

package internal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit is the number of trailing messages sent to the backend
// as conversation context
const DefaultHistoryLimit = 10

// MessageStore owns the ordered chat transcript. It keeps every message for
// the life of the process; there is no size cap and no dedup.
type MessageStore struct {
	mu       sync.RWMutex
	messages []Message
	seq      uint64
	now      func() time.Time
}

// NewMessageStore creates an empty transcript
func NewMessageStore() *MessageStore {
	return &MessageStore{now: time.Now}
}

// Append adds msg to the end of the transcript and returns the stored copy.
// Seq is always assigned by the store; ID and Timestamp are filled in when
// the caller left them empty.
func (s *MessageStore) Append(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	msg.Seq = s.seq
	if msg.ID == "" {
		msg.ID = newMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	s.messages = append(s.messages, msg)
	return msg
}

// HistoryWindow returns the last limit messages in transcript order
func (s *MessageStore) HistoryWindow(limit int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []Message{}
	}
	start := 0
	if len(s.messages) > limit {
		start = len(s.messages) - limit
	}
	window := make([]Message, len(s.messages)-start)
	copy(window, s.messages[start:])
	return window
}

// All returns the full transcript
func (s *MessageStore) All() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Message, len(s.messages))
	copy(all, s.messages)
	return all
}

// Len returns the number of messages in the transcript
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// newMessageID returns a time-ordered UUID, falling back to a random one if
// the v7 generator fails
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

package notice

import (
	"sync"
	"time"
)

// Type classifies a notice.
type Type int

const (
	TypeError Type = iota
	TypeWarning
	TypeInfo
	TypeSuccess
)

func (t Type) String() string {
	switch t {
	case TypeError:
		return "error"
	case TypeWarning:
		return "warning"
	case TypeInfo:
		return "info"
	case TypeSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Message is one stored notice.
type Message struct {
	Text      string
	Type      Type
	Timestamp time.Time
}

// DefaultHistory is the number of messages a TUIHandler keeps.
const DefaultHistory = 50

// TUIHandler stores notices for the inbox status bar. onMessage, when set,
// runs after every message is stored, outside the lock.
type TUIHandler struct {
	mu        sync.RWMutex
	messages  []Message
	limit     int
	now       func() time.Time
	onMessage func(Message)
}

var _ Handler = (*TUIHandler)(nil)

// NewTUIHandler returns a handler keeping the last DefaultHistory messages.
func NewTUIHandler(onMessage func(Message)) *TUIHandler {
	return &TUIHandler{limit: DefaultHistory, now: time.Now, onMessage: onMessage}
}

func (h *TUIHandler) Error(msg string)   { h.add(msg, TypeError) }
func (h *TUIHandler) Warning(msg string) { h.add(msg, TypeWarning) }
func (h *TUIHandler) Info(msg string)    { h.add(msg, TypeInfo) }
func (h *TUIHandler) Success(msg string) { h.add(msg, TypeSuccess) }

func (h *TUIHandler) add(text string, typ Type) {
	h.mu.Lock()
	m := Message{Text: text, Type: typ, Timestamp: h.now()}
	h.messages = append(h.messages, m)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append([]Message(nil), h.messages[over:]...)
	}
	cb := h.onMessage
	h.mu.Unlock()

	if cb != nil {
		cb(m)
	}
}

// Latest returns the most recent message.
func (h *TUIHandler) Latest() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Current returns the most recent message if it is younger than ttl.
func (h *TUIHandler) Current(ttl time.Duration) (Message, bool) {
	m, ok := h.Latest()
	if !ok || h.now().Sub(m.Timestamp) >= ttl {
		return Message{}, false
	}
	return m, true
}

// All returns a copy of the stored messages, oldest first.
func (h *TUIHandler) All() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Clear drops every stored message.
func (h *TUIHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

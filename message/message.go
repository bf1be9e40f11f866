package message

import "time"

// Message is an opaque payload handed between workers through a queue.
type Message struct {
	Subject string    `json:"subject"`
	Data    []byte    `json:"data"`
	Headers Headers   `json:"headers"`
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
}

// New creates a message for subject stamped with the current time.
func New(subject string, data []byte) *Message {
	return &Message{
		Subject: subject,
		Data:    data,
		Headers: NewHeaders(),
		Time:    time.Now(),
	}
}

// WithID sets the message ID and mirrors it into the headers.
func (m *Message) WithID(id string) *Message {
	m.ID = id
	if m.Headers == nil {
		m.Headers = NewHeaders()
	}
	m.Headers.SetMessageID(id)
	return m
}

// Clone creates a deep copy of the message. A nil message clones to nil.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	clone := &Message{
		Subject: m.Subject,
		Headers: m.Headers.Clone(),
		ID:      m.ID,
		Time:    m.Time,
	}
	if m.Data != nil {
		clone.Data = make([]byte, len(m.Data))
		copy(clone.Data, m.Data)
	}
	return clone
}

// Size returns the payload length in bytes.
func (m *Message) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Data)
}

package message

import "maps"

// HeaderKey represents a message header key
type HeaderKey string

// Standard header keys
const (
	HeaderContentType HeaderKey = "Content-Type"
	// HeaderMessageID matches the NATS de-duplication header.
	HeaderMessageID HeaderKey = "Nats-Msg-Id"
)

// Headers holds single-valued message headers
type Headers map[string]string

// NewHeaders creates a new headers map
func NewHeaders() Headers {
	return make(Headers)
}

// Set sets a header value
func (h Headers) Set(key HeaderKey, value string) {
	h[string(key)] = value
}

// Get retrieves a header value
func (h Headers) Get(key HeaderKey) string {
	return h[string(key)]
}

// Has checks if a header exists
func (h Headers) Has(key HeaderKey) bool {
	_, exists := h[string(key)]
	return exists
}

// SetMessageID sets the message ID header
func (h Headers) SetMessageID(id string) {
	h.Set(HeaderMessageID, id)
}

// GetMessageID gets the message ID header
func (h Headers) GetMessageID() string {
	return h.Get(HeaderMessageID)
}

// Clone creates a copy of the headers. A nil map clones to nil.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return maps.Clone(h)
}

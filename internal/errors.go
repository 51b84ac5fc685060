package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when a chat message is blank after trimming
	ErrEmptyMessage = errors.New("message is empty")
	// ErrUnknownIntent is returned when an encoder receives an intent it cannot encode
	ErrUnknownIntent = errors.New("unknown task intent")
)

// NetworkError represents a transport failure or a non-2xx response.
// StatusCode is 0 when no response was received.
type NetworkError struct {
	Op         string // "chat", "start"
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error: %s %s: HTTP status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError represents a response body that could not be decoded or
// lacks the reply field
type ProtocolError struct {
	Op   string
	Body string // truncated response body
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err wraps a NetworkError
func IsNetworkError(err error) (*NetworkError, bool) {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr, true
	}
	return nil, false
}

// IsProtocolError reports whether err wraps a ProtocolError
func IsProtocolError(err error) (*ProtocolError, bool) {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr, true
	}
	return nil, false
}

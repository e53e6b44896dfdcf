package link

import (
	"errors"
	"fmt"
	"time"
)

// ErrClosed indicates the port was closed, before or during an exchange.
var ErrClosed = errors.New("link closed")

// ProtocolError reports a malformed or unexpected frame.
type ProtocolError struct {
	Reason string
	Raw    []byte
}

// Error implements error.
func (e *ProtocolError) Error() string {
	if len(e.Raw) == 0 {
		return "protocol error: " + e.Reason
	}
	return fmt.Sprintf("protocol error: %s (raw % x)", e.Reason, e.Raw)
}

// Temporary indicates the exchange may be retried.
func (e *ProtocolError) Temporary() bool { return true }

// TimeoutError indicates no complete reply arrived in time. Raw holds
// whatever partial frame was received.
type TimeoutError struct {
	After time.Duration
	Raw   []byte
}

// Error implements error.
func (e *TimeoutError) Error() string {
	if len(e.Raw) == 0 {
		return fmt.Sprintf("no reply within %v", e.After)
	}
	return fmt.Sprintf("incomplete reply within %v (raw % x)", e.After, e.Raw)
}

// Timeout implements net.Error style timeout detection.
func (e *TimeoutError) Timeout() bool { return true }

// Temporary indicates the exchange may be retried.
func (e *TimeoutError) Temporary() bool { return true }

// IsTemporary reports whether err (or anything it wraps) is a transient
// communication failure worth retrying.
func IsTemporary(err error) bool {
	var t interface{ Temporary() bool }
	return errors.As(err, &t) && t.Temporary()
}

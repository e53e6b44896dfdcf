package clone

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates no image is loaded for upload.
	ErrNotReady = errors.New("no image ready")
	// ErrBusy indicates another transfer is in progress.
	ErrBusy = errors.New("transfer in progress")
)

// TransferError reports a block that failed after exhausting retries, or
// hit a non-recoverable error.
type TransferError struct {
	Op       Op
	Offset   int
	Attempts int
	Err      error
}

// Error implements error.
func (e *TransferError) Error() string {
	return fmt.Sprintf("%s failed at 0x%04x after %d attempts: %v", e.Op, e.Offset, e.Attempts, e.Err)
}

// Unwrap returns the last failure.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// VerificationError reports a block read back different from what was written.
type VerificationError struct {
	Offset   int
	Expected uint16
	Actual   uint16
}

// Error implements error.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("verify failed at 0x%04x: crc %04x, read back %04x", e.Offset, e.Expected, e.Actual)
}

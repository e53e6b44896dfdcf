package clone

import (
	"context"
	"fmt"

	"github.com/robotalks/uvk5.go/pkg/layout"
)

// State of an Engine.
type State int

// Engine states.
const (
	Idle State = iota
	Downloading
	Ready
	Uploading
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Downloading:
		return "downloading"
	case Ready:
		return "ready"
	case Uploading:
		return "uploading"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsTransferring indicates a download or upload is in progress.
func (s State) IsTransferring() bool {
	return s == Downloading || s == Uploading
}

// Op names a transfer direction.
type Op string

// Transfer operations.
const (
	OpDownload Op = "download"
	OpUpload   Op = "upload"
)

// Device is the block-level access a radio provides.
type Device interface {
	ReadBlock(ctx context.Context, offset, length int) ([]byte, error)
	WriteBlock(ctx context.Context, offset int, data []byte) error
}

// Handshaker is implemented by devices needing a handshake before a transfer.
type Handshaker interface {
	Hello(ctx context.Context) error
}

// Resetter is implemented by devices that can reboot after an upload.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Region is a contiguous byte range of the image.
type Region struct {
	Offset int
	Length int
}

// End returns the offset just past the region.
func (r Region) End() int {
	return r.Offset + r.Length
}

// StateNotifier is called when the engine state changed.
type StateNotifier interface {
	StateChanged(context.Context, State)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, State)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state State) {
	f(ctx, state)
}

// Progress is reported after every completed block.
type Progress struct {
	Op      Op
	Offset  int
	Done    int
	Total   int
	Retries int
}

// Percentage returns the completed share in percent.
func (p Progress) Percentage() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Done) * 100 / float64(p.Total)
}

// ProgressFunc receives progress updates.
type ProgressFunc func(Progress)

// Validator checks an image before it is uploaded.
type Validator interface {
	Validate(*layout.Image) error
}

// ValidateFunc is func type of Validator.
type ValidateFunc func(*layout.Image) error

// Validate implements Validator.
func (f ValidateFunc) Validate(img *layout.Image) error {
	return f(img)
}

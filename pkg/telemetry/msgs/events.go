package msgs

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/telemetry/msgs/pb"
)

// SessionState reports an engine state change.
type SessionState struct {
	pb.SessionState
}

// NewSessionState creates a SessionState.
func NewSessionState(radioID string, state clone.State) *SessionState {
	return &SessionState{SessionState: pb.SessionState{RadioId: radioID, State: int32(state)}}
}

// EngineState converts the state back.
func (m *SessionState) EngineState() clone.State { return clone.State(m.State) }

// NewEvent implements Event.
func (m *SessionState) NewEvent() Event { return &SessionState{} }

// TypeID implements Event.
func (m *SessionState) TypeID() uint32 { return SessionStateTypeID }

// Serializable implements Event.
func (m *SessionState) Serializable() proto.Message { return &m.SessionState }

// String implements fmt.Stringer.
func (m *SessionState) String() string {
	s := fmt.Sprintf("state %s", m.EngineState())
	if m.Firmware != "" {
		s += " firmware " + m.Firmware
	}
	if m.Port != "" {
		s += " port " + m.Port
	}
	return s
}

// SyncProgress reports a transferred block.
type SyncProgress struct {
	pb.SyncProgress
}

// NewSyncProgress creates a SyncProgress from engine progress.
func NewSyncProgress(p clone.Progress) *SyncProgress {
	return &SyncProgress{SyncProgress: pb.SyncProgress{
		Op:      string(p.Op),
		Offset:  uint32(p.Offset),
		Done:    uint32(p.Done),
		Total:   uint32(p.Total),
		Retries: uint32(p.Retries),
	}}
}

// NewEvent implements Event.
func (m *SyncProgress) NewEvent() Event { return &SyncProgress{} }

// TypeID implements Event.
func (m *SyncProgress) TypeID() uint32 { return SyncProgressTypeID }

// Serializable implements Event.
func (m *SyncProgress) Serializable() proto.Message { return &m.SyncProgress }

// String implements fmt.Stringer.
func (m *SyncProgress) String() string {
	return fmt.Sprintf("%s 0x%04x %d/%d retries %d", m.Op, m.Offset, m.Done, m.Total, m.Retries)
}

// TransferResult reports a finished transfer.
type TransferResult struct {
	pb.TransferResult
}

// NewTransferResult creates a TransferResult from an engine report and
// the error the transfer ended with. report may be nil when the transfer
// didn't start.
func NewTransferResult(op clone.Op, report *clone.Report, err error) *TransferResult {
	m := &TransferResult{TransferResult: pb.TransferResult{Op: string(op)}}
	if report != nil {
		m.Blocks = uint32(report.Blocks)
		m.Bytes = uint32(report.Bytes)
		m.Retries = uint32(report.TotalRetries())
		m.ElapsedMs = int64(report.Elapsed / time.Millisecond)
	}
	if err != nil {
		m.Error = err.Error()
	}
	return m
}

// Elapsed returns the transfer duration.
func (m *TransferResult) Elapsed() time.Duration {
	return time.Duration(m.ElapsedMs) * time.Millisecond
}

// NewEvent implements Event.
func (m *TransferResult) NewEvent() Event { return &TransferResult{} }

// TypeID implements Event.
func (m *TransferResult) TypeID() uint32 { return TransferResultTypeID }

// Serializable implements Event.
func (m *TransferResult) Serializable() proto.Message { return &m.TransferResult }

// String implements fmt.Stringer.
func (m *TransferResult) String() string {
	if m.Error != "" {
		return fmt.Sprintf("%s failed after %d blocks: %s", m.Op, m.Blocks, m.Error)
	}
	return fmt.Sprintf("%s done: %d blocks, %d bytes, %d retries in %v", m.Op, m.Blocks, m.Bytes, m.Retries, m.Elapsed())
}

// TypeID Groups
const (
	GroupSession uint32 = 0x00010000
	GroupSync    uint32 = 0x00020000
)

// TypeIDs
const (
	SessionStateTypeID   uint32 = GroupSession | 0x0000
	SyncProgressTypeID   uint32 = GroupSync | 0x0000
	TransferResultTypeID uint32 = GroupSync | 0x0001
)

package msgs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uvk5.go/pkg/clone"
)

func TestEncodeDecode(t *testing.T) {
	report := &clone.Report{Op: clone.OpDownload, Blocks: 64, Bytes: 0x2000, Retries: map[int]int{0x180: 2}, Elapsed: 1500 * time.Millisecond}
	events := []Event{
		&SessionState{},
		NewSessionState("radio1", clone.Ready),
		NewSyncProgress(clone.Progress{Op: clone.OpUpload, Offset: 0x80, Done: 2, Total: 58, Retries: 1}),
		NewTransferResult(clone.OpDownload, report, nil),
		NewTransferResult(clone.OpUpload, nil, errors.New("port closed")),
	}
	for _, ev := range events {
		data, err := Encode(ev)
		require.NoError(t, err)
		got, err := Decode(data)
		require.NoError(t, err)
		require.IsType(t, ev, got)
		require.Equal(t, ev.TypeID(), got.TypeID())
		require.Equal(t, ev.(interface{ String() string }).String(), got.(interface{ String() string }).String())
	}
}

func TestEventFields(t *testing.T) {
	s := NewSessionState("radio1", clone.Uploading)
	s.Firmware = "k5 v0.22"
	require.Equal(t, clone.Uploading, s.EngineState())
	require.Equal(t, "state uploading firmware k5 v0.22", s.String())

	r := NewTransferResult(clone.OpDownload, &clone.Report{Blocks: 64, Bytes: 0x2000, Retries: map[int]int{0: 1, 0x80: 2}, Elapsed: 2 * time.Second}, nil)
	require.Equal(t, uint32(3), r.Retries)
	require.Equal(t, 2*time.Second, r.Elapsed())
	require.Equal(t, "download done: 64 blocks, 8192 bytes, 3 retries in 2s", r.String())

	p := NewSyncProgress(clone.Progress{Op: clone.OpDownload, Offset: 0x1f80, Done: 64, Total: 64})
	require.Equal(t, "download 0x1f80 64/64 retries 0", p.String())
}

func TestDecodeErrors(t *testing.T) {
	typed := &Typed{}
	typed.TypeId = 0x7f000001
	data, err := typed.Encode()
	require.NoError(t, err)
	_, err = Decode(data)
	var unknown *ErrUnknownType
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, uint32(0x7f000001), unknown.TypeID)

	_, err = TypedFrom("not an event")
	require.Equal(t, ErrNotSerializable, err)
	typed.TypeId = TransferResultTypeID
	require.Equal(t, GroupSync, typed.Group())
}

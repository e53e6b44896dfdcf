package msgs

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/uvk5.go/pkg/telemetry/msgs/pb"
)

// TypeID masks
const (
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
)

// Event is a message that can be sent in a Typed envelope.
type Event interface {
	// NewEvent creates an empty event of the same type.
	NewEvent() Event
	TypeID() uint32
	Serializable() proto.Message
}

// Typed wraps an event with type information.
type Typed struct {
	pb.Typed
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// ErrNotSerializable indicates the value isn't an Event.
var ErrNotSerializable = errors.New("not serializable message")

// EventTypes are predefined mapping of type ID to events.
var EventTypes = map[uint32]Event{
	SessionStateTypeID:   (*SessionState)(nil),
	SyncProgressTypeID:   (*SyncProgress)(nil),
	TransferResultTypeID: (*TransferResult)(nil),
}

// TypedFrom creates a Typed from an event.
func TypedFrom(msg interface{}) (*Typed, error) {
	if ev, ok := msg.(Event); ok {
		data, err := proto.Marshal(ev.Serializable())
		if err != nil {
			return nil, err
		}
		return &Typed{Typed: pb.Typed{TypeId: ev.TypeID(), Message: data}}, nil
	}
	return nil, ErrNotSerializable
}

// Decode decodes the envelope into the actual event.
func (p *Typed) Decode() (Event, error) {
	evType, ok := EventTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	ev := evType.NewEvent()
	if err := proto.Unmarshal(p.Message, ev.Serializable()); err != nil {
		return nil, err
	}
	return ev, nil
}

// Encode encodes the Typed to bytes.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(&p.Typed)
}

// Group gets the group from the type ID.
func (p *Typed) Group() uint32 {
	return p.TypeId & TypeIDMaskGroup
}

// DecodeTyped decodes bytes into Typed.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed.Typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// Encode wraps an event and encodes the envelope.
func Encode(ev Event) ([]byte, error) {
	typed, err := TypedFrom(ev)
	if err != nil {
		return nil, err
	}
	return typed.Encode()
}

// Decode decodes an envelope and the event inside.
func Decode(data []byte) (Event, error) {
	typed, err := DecodeTyped(data)
	if err != nil {
		return nil, err
	}
	return typed.Decode()
}

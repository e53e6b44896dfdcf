package uvk5

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/robotalks/uvk5.go/pkg/link"
)

// Message types of the clone-mode command set.
const (
	MsgHello      uint16 = 0x0514
	MsgHelloReply uint16 = 0x0515
	MsgRead       uint16 = 0x051b
	MsgReadReply  uint16 = 0x051c
	MsgWrite      uint16 = 0x051d
	MsgWriteReply uint16 = 0x051e
	MsgReset      uint16 = 0x05dd
)

// DefaultSession is the session token sent with every request.
const DefaultSession uint32 = 0x6457396a

// MaxBlockLen is the largest block a single read or write can carry.
const MaxBlockLen = 0xff

const firmwareLen = 16

// HelloRequest builds the handshake request.
func HelloRequest(session uint32) *link.Message {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, session)
	return &link.Message{Type: MsgHello, Body: body}
}

// ReadRequest builds a request for n bytes at off.
func ReadRequest(off, n int, session uint32) *link.Message {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint16(body, uint16(off))
	body[2] = byte(n)
	binary.LittleEndian.PutUint32(body[4:], session)
	return &link.Message{Type: MsgRead, Body: body}
}

// WriteRequest builds a request storing data at off.
func WriteRequest(off int, data []byte, session uint32) *link.Message {
	body := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint16(body, uint16(off))
	body[2] = byte(len(data))
	body[3] = 1
	binary.LittleEndian.PutUint32(body[4:], session)
	copy(body[8:], data)
	return &link.Message{Type: MsgWrite, Body: body}
}

// ResetRequest builds the reboot request. The radio doesn't reply.
func ResetRequest() *link.Message {
	return &link.Message{Type: MsgReset}
}

// ParseHelloReply extracts the firmware version string.
func ParseHelloReply(reply *link.Frame) (string, error) {
	if err := expectType(reply, MsgHelloReply); err != nil {
		return "", err
	}
	ver := reply.Message.Body
	if len(ver) > firmwareLen {
		ver = ver[:firmwareLen]
	}
	if n := bytes.IndexByte(ver, 0); n >= 0 {
		ver = ver[:n]
	}
	return string(ver), nil
}

// ParseReadReply checks the reply matches the request and returns the data.
func ParseReadReply(reply *link.Frame, off, n int) ([]byte, error) {
	if err := expectType(reply, MsgReadReply); err != nil {
		return nil, err
	}
	body := reply.Message.Body
	if len(body) < 4 {
		return nil, &link.ProtocolError{Reason: "short read reply", Raw: reply.Raw}
	}
	if got := int(binary.LittleEndian.Uint16(body)); got != off {
		return nil, &link.ProtocolError{
			Reason: fmt.Sprintf("read reply for 0x%04x, want 0x%04x", got, off),
			Raw:    reply.Raw,
		}
	}
	data := body[4:]
	if int(body[2]) != n || len(data) != n {
		return nil, &link.ProtocolError{
			Reason: fmt.Sprintf("read reply carries %d bytes, want %d", len(data), n),
			Raw:    reply.Raw,
		}
	}
	return append([]byte(nil), data...), nil
}

// ParseWriteReply checks the acknowledged offset.
func ParseWriteReply(reply *link.Frame, off int) error {
	if err := expectType(reply, MsgWriteReply); err != nil {
		return err
	}
	body := reply.Message.Body
	if len(body) < 2 {
		return &link.ProtocolError{Reason: "short write reply", Raw: reply.Raw}
	}
	if got := int(binary.LittleEndian.Uint16(body)); got != off {
		return &link.ProtocolError{
			Reason: fmt.Sprintf("write ack for 0x%04x, want 0x%04x", got, off),
			Raw:    reply.Raw,
		}
	}
	return nil
}

func expectType(reply *link.Frame, typ uint16) error {
	if reply.Message.Type != typ {
		return &link.ProtocolError{
			Reason: fmt.Sprintf("unexpected reply 0x%04x, want 0x%04x", reply.Message.Type, typ),
			Raw:    reply.Raw,
		}
	}
	return nil
}

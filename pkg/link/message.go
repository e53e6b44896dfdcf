package link

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	startMarker0 byte = 0xab
	startMarker1 byte = 0xcd
	endMarker0   byte = 0xdc
	endMarker1   byte = 0xba

	frameHeaderLen  = 4 // start marker + length
	frameTrailerLen = 4 // crc + end marker
	msgHeaderLen    = 4 // type + body length

	// MaxMessageLen bounds the message length accepted by the parser.
	MaxMessageLen = 0x400
)

// Message is the logical content of a frame.
type Message struct {
	Type uint16
	Body []byte
}

// Len returns the encoded message length (header and body).
func (m *Message) Len() int {
	return msgHeaderLen + len(m.Body)
}

// Bytes returns the plain (not obfuscated) message bytes.
func (m *Message) Bytes() []byte {
	b := make([]byte, m.Len())
	binary.LittleEndian.PutUint16(b[0:], m.Type)
	binary.LittleEndian.PutUint16(b[2:], uint16(len(m.Body)))
	copy(b[msgHeaderLen:], m.Body)
	return b
}

// Frame returns the complete wire frame with a valid CRC trailer.
func (m *Message) Frame() []byte {
	payload := m.Bytes()
	return encodeFrame(payload, CRC16(payload))
}

// WriteTo writes the wire frame.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Frame())
	return int64(n), err
}

// String implements fmt.Stringer.
func (m *Message) String() string {
	return fmt.Sprintf("msg 0x%04x [%d]", m.Type, len(m.Body))
}

func encodeFrame(payload []byte, crc uint16) []byte {
	b := make([]byte, frameHeaderLen+len(payload)+frameTrailerLen)
	b[0], b[1] = startMarker0, startMarker1
	binary.LittleEndian.PutUint16(b[2:], uint16(len(payload)))
	body := b[frameHeaderLen : frameHeaderLen+len(payload)+2]
	copy(body, payload)
	binary.LittleEndian.PutUint16(body[len(payload):], crc)
	ObfuscateInPlace(body)
	b[len(b)-2], b[len(b)-1] = endMarker0, endMarker1
	return b
}

// ParseMessage decodes plain message bytes, checking the embedded body length.
func ParseMessage(payload []byte) (*Message, error) {
	if len(payload) < msgHeaderLen {
		return nil, &ProtocolError{Reason: "short message", Raw: payload}
	}
	bodyLen := int(binary.LittleEndian.Uint16(payload[2:]))
	if bodyLen != len(payload)-msgHeaderLen {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("body length %d, frame carries %d", bodyLen, len(payload)-msgHeaderLen),
			Raw:    payload,
		}
	}
	msg := &Message{Type: binary.LittleEndian.Uint16(payload)}
	if bodyLen > 0 {
		msg.Body = append([]byte(nil), payload[msgHeaderLen:]...)
	}
	return msg, nil
}

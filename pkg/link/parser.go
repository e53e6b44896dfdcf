package link

import (
	"encoding/binary"
	"fmt"
)

// ParseState indicates where the parser is within a frame.
type ParseState int

const (
	// StateIdle means the parser waits for a start marker.
	StateIdle ParseState = iota
	// StateReceiving means a frame is partially received.
	StateReceiving
)

// Frame is a completely received frame.
type Frame struct {
	Message *Message
	// CRC is the deobfuscated trailer as received.
	CRC uint16
	// Raw holds the frame bytes as they appeared on the wire.
	Raw []byte
}

// NewFrame encodes msg as it would be sent, with a valid CRC.
func NewFrame(msg *Message) *Frame {
	return &Frame{Message: msg, CRC: CRC16(msg.Bytes()), Raw: msg.Frame()}
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	State ParseState
	Frame *Frame
	Err   error
}

type parseState int

const (
	stateStart0   parseState = iota // waiting for 0xab
	stateStart1                     // waiting for 0xcd
	stateLenLo                      // waiting for length low byte
	stateLenHi                      // waiting for length high byte
	statePayload                    // receiving obfuscated message
	stateCRC                        // receiving obfuscated trailer
	stateEnd0                       // waiting for 0xdc
	stateEnd1                       // waiting for 0xba
)

// Parser assembles frames from a byte stream.
type Parser struct {
	// VerifyCRC rejects frames whose trailer doesn't match the message CRC.
	VerifyCRC bool

	state   parseState
	raw     []byte
	length  int
	payload []byte
}

// State gets the current parse state.
func (p *Parser) State() ParseState {
	if p.state == stateStart0 {
		return StateIdle
	}
	return StateReceiving
}

// Raw returns the bytes of the frame received so far.
func (p *Parser) Raw() []byte {
	return append([]byte(nil), p.raw...)
}

// Reset drops any partially received frame.
func (p *Parser) Reset() {
	p.state, p.raw, p.payload, p.length = stateStart0, nil, nil, 0
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Frame, pr.Err = p.parseByte(b)
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (*Frame, error) {
	p.raw = append(p.raw, b)
	switch p.state {
	case stateStart0:
		if b != startMarker0 {
			return p.fail("bad start marker")
		}
		p.state = stateStart1
	case stateStart1:
		if b != startMarker1 {
			return p.fail("bad start marker")
		}
		p.state = stateLenLo
	case stateLenLo:
		p.length = int(b)
		p.state = stateLenHi
	case stateLenHi:
		p.length |= int(b) << 8
		if p.length < msgHeaderLen || p.length > MaxMessageLen {
			return p.fail(fmt.Sprintf("invalid frame length %d", p.length))
		}
		p.payload = make([]byte, 0, p.length+2)
		p.state = statePayload
	case statePayload:
		p.payload = append(p.payload, b)
		if len(p.payload) == p.length {
			p.state = stateCRC
		}
	case stateCRC:
		p.payload = append(p.payload, b)
		if len(p.payload) == p.length+2 {
			p.state = stateEnd0
		}
	case stateEnd0:
		if b != endMarker0 {
			return p.fail("bad end marker")
		}
		p.state = stateEnd1
	case stateEnd1:
		if b != endMarker1 {
			return p.fail("bad end marker")
		}
		return p.frameReady()
	}
	return nil, nil
}

func (p *Parser) fail(reason string) (*Frame, error) {
	err := &ProtocolError{Reason: reason, Raw: p.raw}
	p.Reset()
	return nil, err
}

func (p *Parser) frameReady() (*Frame, error) {
	plain := Deobfuscate(p.payload)
	msgBytes := plain[:p.length]
	frame := &Frame{
		CRC: binary.LittleEndian.Uint16(plain[p.length:]),
		Raw: p.raw,
	}
	if p.VerifyCRC {
		if expected := CRC16(msgBytes); expected != frame.CRC {
			return p.fail(fmt.Sprintf("crc mismatch: expect %04x, got %04x", expected, frame.CRC))
		}
	}
	msg, err := ParseMessage(msgBytes)
	if err != nil {
		if perr, ok := err.(*ProtocolError); ok {
			perr.Raw = p.raw
		}
		p.Reset()
		return nil, err
	}
	frame.Message = msg
	p.Reset()
	return frame, nil
}

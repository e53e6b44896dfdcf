// Package sim simulates a UV-K5 in clone mode. It serves the wire protocol
// over any stream and can inject faults into selected replies.
package sim

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/uvk5.go/pkg/link"
	"github.com/robotalks/uvk5.go/pkg/uvk5"
)

// DefaultFirmware is reported in hello replies.
const DefaultFirmware = "k5sim v0.22"

// FaultKind selects how a request is mishandled.
type FaultKind int

// Faults the simulator can inject.
const (
	// CorruptCRC replies with a wrong CRC trailer.
	CorruptCRC FaultKind = iota
	// DropReply doesn't reply at all.
	DropReply
	// BadMarker replies with a broken start marker.
	BadMarker
	// CorruptWrite stores written data with the first byte flipped.
	CorruptWrite
	// Hangup closes the connection instead of replying.
	Hangup
	// WrongOffset replies for the block after the requested one.
	WrongOffset
)

// Fault matches requests by message type and block offset.
type Fault struct {
	Kind FaultKind
	// Type of request to match, 0 matches all.
	Type uint16
	// Offset of read or write to match, negative matches all.
	Offset int
	// Count limits how many requests are affected, 0 is unlimited.
	Count int
}

// Radio is a simulated radio.
type Radio struct {
	// Firmware is the version string reported by hello.
	Firmware string
	// JunkCRC makes replies carry 0xffff trailers as real radios do.
	JunkCRC bool

	lock     sync.Mutex
	mem      []byte
	faults   []*Fault
	requests []link.Message
	resets   int
}

// New creates a radio with size bytes of erased (0xff) memory.
func New(size int) *Radio {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xff
	}
	return &Radio{Firmware: DefaultFirmware, mem: mem}
}

// Memory returns a copy of the memory.
func (r *Radio) Memory() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]byte(nil), r.mem...)
}

// SetMemory replaces memory content starting at 0.
func (r *Radio) SetMemory(b []byte) {
	r.lock.Lock()
	defer r.lock.Unlock()
	copy(r.mem, b)
}

// Inject adds a fault.
func (r *Radio) Inject(f Fault) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.faults = append(r.faults, &f)
}

// Requests returns the requests received so far.
func (r *Radio) Requests() []link.Message {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]link.Message(nil), r.requests...)
}

// Resets returns the number of reset requests received.
func (r *Radio) Resets() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.resets
}

// Open returns the host end of an in-memory connection served by the radio.
func (r *Radio) Open() io.ReadWriteCloser {
	host, dev := net.Pipe()
	go r.Serve(dev)
	return host
}

// Serve answers requests on rw until it's closed.
func (r *Radio) Serve(rw io.ReadWriteCloser) error {
	defer rw.Close()
	parser := link.Parser{VerifyCRC: true}
	buf := make([]byte, 256)
	for {
		n, err := rw.Read(buf)
		for _, b := range buf[:n] {
			pr := parser.Parse(b)
			if pr.Err != nil {
				glog.V(2).Infof("sim: %v", pr.Err)
				continue
			}
			if pr.Frame == nil {
				continue
			}
			reply, hangup := r.handle(pr.Frame.Message)
			if hangup {
				return nil
			}
			if reply != nil {
				if _, err := rw.Write(reply); err != nil {
					return err
				}
			}
		}
		if err != nil {
			if err == io.EOF || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
	}
}

func (r *Radio) handle(req *link.Message) ([]byte, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.requests = append(r.requests, link.Message{Type: req.Type, Body: append([]byte(nil), req.Body...)})

	off := -1
	if (req.Type == uvk5.MsgRead || req.Type == uvk5.MsgWrite) && len(req.Body) >= 8 {
		off = int(binary.LittleEndian.Uint16(req.Body))
	}
	fault := r.takeFault(req.Type, off)
	if fault != nil && fault.Kind == Hangup {
		glog.V(2).Infof("sim: hangup on %v", req)
		return nil, true
	}

	var reply *link.Message
	switch req.Type {
	case uvk5.MsgHello:
		body := make([]byte, 20)
		copy(body[:16], r.Firmware)
		reply = &link.Message{Type: uvk5.MsgHelloReply, Body: body}
	case uvk5.MsgRead:
		if off < 0 {
			break
		}
		n := int(req.Body[2])
		if off+n > len(r.mem) {
			break
		}
		body := make([]byte, 4+n)
		copy(body, req.Body[:3])
		copy(body[4:], r.mem[off:off+n])
		reply = &link.Message{Type: uvk5.MsgReadReply, Body: body}
	case uvk5.MsgWrite:
		if off < 0 {
			break
		}
		data := req.Body[8:]
		if len(data) != int(req.Body[2]) || off+len(data) > len(r.mem) {
			break
		}
		copy(r.mem[off:], data)
		if fault != nil && fault.Kind == CorruptWrite && len(data) > 0 {
			r.mem[off] ^= 0xff
		}
		reply = &link.Message{Type: uvk5.MsgWriteReply, Body: append([]byte(nil), req.Body[:2]...)}
	case uvk5.MsgReset:
		r.resets++
	}
	if reply == nil {
		return nil, false
	}

	if fault != nil && fault.Kind == WrongOffset && off >= 0 {
		binary.LittleEndian.PutUint16(reply.Body, uint16(off+uvk5.BlockSize))
	}
	frame := reply.Frame()
	if r.JunkCRC {
		frame = withTrailer(frame, 0xffff)
	}
	if fault != nil {
		switch fault.Kind {
		case DropReply:
			return nil, false
		case CorruptCRC:
			frame[len(frame)-4] ^= 0x5a
		case BadMarker:
			frame[0] = 0
		}
	}
	return frame, false
}

func (r *Radio) takeFault(typ uint16, off int) *Fault {
	for i, f := range r.faults {
		if f.Type != 0 && f.Type != typ {
			continue
		}
		if f.Offset >= 0 && f.Offset != off {
			continue
		}
		if f.Count > 0 {
			f.Count--
			if f.Count == 0 {
				r.faults = append(r.faults[:i], r.faults[i+1:]...)
			}
		}
		return f
	}
	return nil
}

// withTrailer replaces the CRC trailer of an encoded frame.
func withTrailer(frame []byte, crc uint16) []byte {
	n := len(frame) - 8
	payload := link.Deobfuscate(frame[4 : 4+n+2])
	binary.LittleEndian.PutUint16(payload[n:], crc)
	copy(frame[4:], link.Obfuscate(payload))
	return frame
}

package uvk5

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uvk5.go/pkg/link"
)

// Radio is one open session with a radio in clone mode.
type Radio struct {
	// Timeout bounds every exchange, link.DefaultTimeout when zero.
	Timeout time.Duration
	// Session is the token sent with requests.
	Session uint32

	conn *link.Conn

	lock     sync.RWMutex
	firmware string
}

// NewRadio creates a Radio over an open port. The Radio owns the port.
func NewRadio(port io.ReadWriteCloser) *Radio {
	return &Radio{
		Session: DefaultSession,
		conn:    link.NewConn(port),
	}
}

// Conn exposes the underlying link.
func (r *Radio) Conn() *link.Conn {
	return r.conn
}

// Hello performs the handshake and records the firmware version.
func (r *Radio) Hello(ctx context.Context) error {
	reply, err := r.conn.ExchangeFrame(ctx, HelloRequest(r.Session), r.Timeout)
	if err != nil {
		return err
	}
	ver, err := ParseHelloReply(reply)
	if err != nil {
		return err
	}
	r.lock.Lock()
	r.firmware = ver
	r.lock.Unlock()
	glog.Infof("radio firmware %q", ver)
	return nil
}

// Firmware returns the version reported by the last handshake.
func (r *Radio) Firmware() string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.firmware
}

// ReadBlock implements clone.Device.
func (r *Radio) ReadBlock(ctx context.Context, off, n int) ([]byte, error) {
	if err := checkBlock(off, n); err != nil {
		return nil, err
	}
	reply, err := r.conn.ExchangeFrame(ctx, ReadRequest(off, n, r.Session), r.Timeout)
	if err != nil {
		return nil, err
	}
	return ParseReadReply(reply, off, n)
}

// WriteBlock implements clone.Device.
func (r *Radio) WriteBlock(ctx context.Context, off int, data []byte) error {
	if err := checkBlock(off, len(data)); err != nil {
		return err
	}
	reply, err := r.conn.ExchangeFrame(ctx, WriteRequest(off, data, r.Session), r.Timeout)
	if err != nil {
		return err
	}
	return ParseWriteReply(reply, off)
}

// Reset reboots the radio out of clone mode.
func (r *Radio) Reset(ctx context.Context) error {
	return r.conn.Send(ctx, ResetRequest())
}

// Close closes the port.
func (r *Radio) Close() error {
	return r.conn.Close()
}

func checkBlock(off, n int) error {
	if off < 0 || off > 0xffff || n <= 0 || n > MaxBlockLen {
		return fmt.Errorf("invalid block 0x%04x+%d", off, n)
	}
	return nil
}

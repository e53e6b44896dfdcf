package link

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultTimeout is the exchange timeout used when none is given.
const DefaultTimeout = time.Second

// Conn exchanges frames over one open port. Exchanges are serialized:
// the radio doesn't accept a request before the previous reply is sent.
type Conn struct {
	// VerifyReplyCRC enables checking the CRC trailer of replies.
	VerifyReplyCRC bool

	port io.ReadWriteCloser

	lock      sync.Mutex
	startOnce sync.Once
	closeOnce sync.Once
	chunkCh   chan []byte
	readDone  chan struct{}
	closed    chan struct{}
	readErr   error
}

// NewConn wraps a port. The Conn takes ownership of the port and closes
// it on Close.
func NewConn(port io.ReadWriteCloser) *Conn {
	return &Conn{
		port:     port,
		chunkCh:  make(chan []byte, 16),
		readDone: make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

// Close closes the port. Any in-flight exchange fails with ErrClosed.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.port.Close()
	})
	return err
}

// Exchange sends req and waits for a single reply message.
func (c *Conn) Exchange(ctx context.Context, req *Message, timeout time.Duration) (*Message, error) {
	frame, err := c.ExchangeFrame(ctx, req, timeout)
	if err != nil {
		return nil, err
	}
	return frame.Message, nil
}

// ExchangeFrame is Exchange returning the reply frame with its bytes as
// received.
func (c *Conn) ExchangeFrame(ctx context.Context, req *Message, timeout time.Duration) (*Frame, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.send(req); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	parser := Parser{VerifyCRC: c.VerifyReplyCRC}
	for {
		select {
		case chunk := <-c.chunkCh:
			if frame, err := feed(&parser, chunk); frame != nil || err != nil {
				return frame, err
			}
		case <-c.readDone:
			// the port may have delivered a reply right before failing.
			for {
				select {
				case chunk := <-c.chunkCh:
					if frame, err := feed(&parser, chunk); frame != nil || err != nil {
						return frame, err
					}
					continue
				default:
				}
				return nil, c.closedError()
			}
		case <-c.closed:
			return nil, ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, &TimeoutError{After: timeout, Raw: parser.Raw()}
		}
	}
}

func feed(parser *Parser, chunk []byte) (*Frame, error) {
	for i, b := range chunk {
		pr := parser.Parse(b)
		if pr.Err != nil {
			glog.V(3).Infof("RCV error: %v", pr.Err)
			return nil, pr.Err
		}
		if pr.Frame != nil {
			if i+1 < len(chunk) {
				glog.V(3).Infof("RCV dropped %d trailing bytes", len(chunk)-i-1)
			}
			glog.V(3).Infof("RCV % x", pr.Frame.Raw)
			return pr.Frame, nil
		}
	}
	return nil, nil
}

// Send writes req without waiting for a reply.
func (c *Conn) Send(ctx context.Context, req *Message) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.send(req)
}

func (c *Conn) send(req *Message) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	c.startOnce.Do(func() { go c.readLoop() })
	c.flush()
	frame := req.Frame()
	glog.V(3).Infof("SND % x", frame)
	if _, err := c.port.Write(frame); err != nil {
		select {
		case <-c.closed:
			return ErrClosed
		default:
		}
		return err
	}
	return nil
}

// flush discards bytes left over from a previous, failed exchange.
func (c *Conn) flush() {
	for {
		select {
		case chunk := <-c.chunkCh:
			glog.V(3).Infof("RCV discarded % x", chunk)
		default:
			return
		}
	}
}

func (c *Conn) closedError() error {
	select {
	case <-c.closed:
	default:
		if c.readErr != nil && c.readErr != io.EOF {
			glog.Warningf("port read failed: %v", c.readErr)
		}
	}
	return ErrClosed
}

func (c *Conn) readLoop() {
	defer close(c.readDone)
	buf := make([]byte, 256)
	for {
		n, err := c.port.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case c.chunkCh <- chunk:
			case <-c.closed:
				return
			}
		}
		if err != nil {
			c.readErr = err
			return
		}
	}
}

package link

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testDevice answers each request frame using reply, which returns the raw
// bytes to write back (nil for no reply).
type testDevice struct {
	conn  net.Conn
	reply func(*Message) []byte
}

func newTestConn(t *testing.T, reply func(*Message) []byte) (*Conn, net.Conn) {
	host, dev := net.Pipe()
	d := &testDevice{conn: dev, reply: reply}
	go d.run()
	c := NewConn(host)
	t.Cleanup(func() {
		c.Close()
		dev.Close()
	})
	return c, dev
}

func (d *testDevice) run() {
	parser := Parser{VerifyCRC: true}
	buf := make([]byte, 64)
	for {
		n, err := d.conn.Read(buf)
		if err != nil {
			return
		}
		for _, b := range buf[:n] {
			pr := parser.Parse(b)
			if pr.Frame == nil {
				continue
			}
			if out := d.reply(pr.Frame.Message); out != nil {
				if _, err := d.conn.Write(out); err != nil {
					return
				}
			}
		}
	}
}

func TestConnExchange(t *testing.T) {
	c, _ := newTestConn(t, func(req *Message) []byte {
		reply := &Message{Type: req.Type + 1, Body: req.Body}
		return withCRC(reply, 0xffff)
	})
	reply, err := c.Exchange(context.Background(), helloMessage(), time.Second)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0515), reply.Type)
	require.Equal(t, helloMessage().Body, reply.Body)

	c.VerifyReplyCRC = true
	_, err = c.Exchange(context.Background(), helloMessage(), time.Second)
	require.IsType(t, &ProtocolError{}, err)
	require.True(t, IsTemporary(err))
}

func TestConnExchangeFrameKeepsWireBytes(t *testing.T) {
	reply := &Message{Type: 0x0515, Body: []byte{1, 2, 3, 4}}
	wire := withCRC(reply, 0xffff)
	c, _ := newTestConn(t, func(*Message) []byte { return wire })
	frame, err := c.ExchangeFrame(context.Background(), helloMessage(), time.Second)
	require.NoError(t, err)
	require.Equal(t, reply, frame.Message)
	require.Equal(t, uint16(0xffff), frame.CRC)
	require.Equal(t, wire, frame.Raw)
	require.NotEqual(t, reply.Frame(), frame.Raw)
}

func TestConnTimeout(t *testing.T) {
	var calls int
	c, _ := newTestConn(t, func(req *Message) []byte {
		calls++
		if calls == 1 {
			return helloFrame[:6]
		}
		return req.Frame()
	})
	_, err := c.Exchange(context.Background(), helloMessage(), 50*time.Millisecond)
	terr, ok := err.(*TimeoutError)
	require.True(t, ok, "%v", err)
	require.Equal(t, helloFrame[:6], terr.Raw)
	require.True(t, IsTemporary(err))

	// stale bytes from the first attempt don't break the next one.
	time.Sleep(10 * time.Millisecond)
	reply, err := c.Exchange(context.Background(), helloMessage(), time.Second)
	require.NoError(t, err)
	require.Equal(t, helloMessage(), reply)
}

func TestConnClosedDuringExchange(t *testing.T) {
	c, _ := newTestConn(t, func(*Message) []byte { return nil })
	go func() {
		time.Sleep(20 * time.Millisecond)
		c.Close()
	}()
	_, err := c.Exchange(context.Background(), helloMessage(), 5*time.Second)
	require.Equal(t, ErrClosed, err)
	require.False(t, IsTemporary(err))

	_, err = c.Exchange(context.Background(), helloMessage(), time.Second)
	require.Equal(t, ErrClosed, err)
	require.NoError(t, c.Close())
}

func TestConnPeerGone(t *testing.T) {
	c, dev := newTestConn(t, func(*Message) []byte { return nil })
	go func() {
		time.Sleep(20 * time.Millisecond)
		dev.Close()
	}()
	_, err := c.Exchange(context.Background(), helloMessage(), 5*time.Second)
	require.Equal(t, ErrClosed, err)
}

func TestConnCanceled(t *testing.T) {
	c, _ := newTestConn(t, func(*Message) []byte { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Exchange(ctx, helloMessage(), 5*time.Second)
	require.Equal(t, context.Canceled, err)
}

func TestConnSend(t *testing.T) {
	got := make(chan *Message, 1)
	c, _ := newTestConn(t, func(req *Message) []byte {
		got <- req
		return nil
	})
	require.NoError(t, c.Send(context.Background(), &Message{Type: 0x05dd}))
	select {
	case msg := <-got:
		require.Equal(t, uint16(0x05dd), msg.Type)
	case <-time.After(time.Second):
		t.Fatal("request not received")
	}
}

package link

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// WebsocketPort carries raw port bytes as binary websocket messages.
type WebsocketPort struct {
	conn    *websocket.Conn
	pending []byte
}

// NewWebsocketPort wraps websocket.Conn.
func NewWebsocketPort(conn *websocket.Conn) *WebsocketPort {
	return &WebsocketPort{conn: conn}
}

// DialWebsocket connects to a bridge exposing a remote radio port.
func DialWebsocket(url string) (*WebsocketPort, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWebsocketPort(conn), nil
}

// Read implements io.Reader.
func (p *WebsocketPort) Read(b []byte) (int, error) {
	for len(p.pending) == 0 {
		var msg []byte
		if err := websocket.Message.Receive(p.conn, &msg); err != nil {
			return 0, err
		}
		p.pending = msg
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (p *WebsocketPort) Write(b []byte) (int, error) {
	if err := websocket.Message.Send(p.conn, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close implements io.Closer.
func (p *WebsocketPort) Close() error {
	return p.conn.Close()
}

// BridgeHandler serves one websocket client at a time, relaying bytes
// between the client and a port obtained from open. The port is closed
// when the client goes away.
func BridgeHandler(open func() (io.ReadWriteCloser, error)) websocket.Handler {
	busy := make(chan struct{}, 1)
	return func(conn *websocket.Conn) {
		defer conn.Close()
		select {
		case busy <- struct{}{}:
			defer func() { <-busy }()
		default:
			glog.Warningf("bridge busy, rejecting %s", conn.Request().RemoteAddr)
			return
		}
		port, err := open()
		if err != nil {
			glog.Errorf("bridge open port: %v", err)
			return
		}
		defer port.Close()
		glog.Infof("bridge client %s connected", conn.Request().RemoteAddr)

		ws := NewWebsocketPort(conn)
		errCh := make(chan error, 2)
		go func() {
			_, err := io.Copy(port, ws)
			errCh <- err
		}()
		go func() {
			_, err := io.Copy(ws, port)
			errCh <- err
		}()
		if err := <-errCh; err != nil && err != io.EOF {
			glog.V(2).Infof("bridge relay stopped: %v", err)
		}
		glog.Infof("bridge client %s disconnected", conn.Request().RemoteAddr)
	}
}

package link

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var helloFrame = []byte{
	0xab, 0xcd, 0x08, 0x00,
	0x02, 0x69, 0x10, 0xe6, 0x44, 0xa8, 0x5a, 0x24,
	0xb9, 0xa9,
	0xdc, 0xba,
}

func helloMessage() *Message {
	return &Message{Type: 0x0514, Body: []byte{0x6a, 0x39, 0x57, 0x64}}
}

func TestMessageFrame(t *testing.T) {
	msg := helloMessage()
	require.Equal(t, []byte{0x14, 0x05, 0x04, 0x00, 0x6a, 0x39, 0x57, 0x64}, msg.Bytes())
	require.Equal(t, helloFrame, msg.Frame())
	var buf bytes.Buffer
	n, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len(helloFrame)), n)
	require.Equal(t, helloFrame, buf.Bytes())
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte{0xdd, 0x05, 0x00, 0x00})
	require.NoError(t, err)
	require.Equal(t, &Message{Type: 0x05dd}, msg)

	_, err = ParseMessage([]byte{0x1c, 0x05, 0x08, 0x00, 1, 2})
	require.IsType(t, &ProtocolError{}, err)
	_, err = ParseMessage([]byte{0x1c})
	require.IsType(t, &ProtocolError{}, err)
}

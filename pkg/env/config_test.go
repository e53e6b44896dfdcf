package env

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uvk5.go/pkg/uvk5"
	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
)

func TestOpenSim(t *testing.T) {
	c := NewConfig()
	c.Port = SimPort
	r, err := c.NewRadio("")
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, c.Timeout, r.Timeout)
	require.NoError(t, r.Hello(context.Background()))
	require.NotEmpty(t, r.Firmware())
}

func TestOpenSimWithImage(t *testing.T) {
	img := make([]byte, uvk5.MemSize)
	img[0x10] = 0x42
	file := filepath.Join(t.TempDir(), "radio.img")
	require.NoError(t, os.WriteFile(file, img, 0644))

	c := NewConfig()
	r, err := c.NewRadio("sim:" + file)
	require.NoError(t, err)
	defer r.Close()
	data, err := r.ReadBlock(context.Background(), 0, 0x20)
	require.NoError(t, err)
	require.Equal(t, img[:0x20], data)

	_, err = c.OpenPort("sim:" + file + ".missing")
	require.Error(t, err)
}

func TestOpenPortNeedsName(t *testing.T) {
	c := NewConfig()
	c.Port = ""
	_, err := c.OpenPort("")
	require.Error(t, err)
}

func TestBands(t *testing.T) {
	c := NewConfig()
	c.BandsFile = ""
	bands, err := c.Bands()
	require.NoError(t, err)
	require.Equal(t, model.DefaultBands, bands)

	file := filepath.Join(t.TempDir(), "bands.ini")
	require.NoError(t, os.WriteFile(file, []byte("[band.6]\nlow = 470\nhigh = 600\n"), 0644))
	c.BandsFile = file
	bands, err = c.Bands()
	require.NoError(t, err)
	require.Equal(t, 600*model.MHz, bands[6].High)
}

func TestQueue(t *testing.T) {
	c := NewConfig()
	c.MQTTURL = ""
	q, err := c.NewQueue()
	require.NoError(t, err)
	require.Nil(t, q)

	c.MQTTURL = "mqtt://localhost:1883/k5"
	c.RadioID = "bench"
	require.Equal(t, "bench", c.ID())
	q, err = c.NewQueue()
	require.NoError(t, err)
	require.Equal(t, "k5/", q.TopicPrefix)
}

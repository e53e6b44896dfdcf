package model_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/uvk5"
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
	"github.com/robotalks/uvk5.go/pkg/uvk5/sim"
)

func newEngine(t *testing.T, s *sim.Radio, opts ...clone.Option) *clone.Engine {
	r := uvk5.NewRadio(s.Open())
	r.Timeout = 200 * time.Millisecond
	e := uvk5.UVK5.NewEngine(r, false, opts...)
	t.Cleanup(func() { e.Close() })
	return e
}

func erased() []byte {
	return bytes.Repeat([]byte{0xff}, memmap.Size)
}

func TestUploadRejectsInvalidImage(t *testing.T) {
	mem := erased()
	// channel 5 in use with an erased frequency.
	mem[memmap.ChannelAttrBase+5] = 0x02
	s := sim.New(memmap.Size)
	s.SetMemory(mem)

	ctx := context.Background()
	e := newEngine(t, s, clone.WithValidator(model.Validator()))
	_, err := e.Download(ctx)
	require.NoError(t, err)
	sent := len(s.Requests())

	_, err = e.Upload(ctx)
	require.Error(t, err)
	var fields []string
	for _, v := range model.ValidationErrors(err) {
		fields = append(fields, v.Field)
	}
	require.Contains(t, fields, "channel[5].freq")
	require.Len(t, s.Requests(), sent)
	require.Equal(t, clone.Ready, e.State())

	require.NoError(t, e.Edit(func(img *layout.Image) error {
		m, err := model.New(img)
		if err != nil {
			return err
		}
		return m.EraseChannel(5)
	}))
	_, err = e.Upload(ctx)
	require.NoError(t, err)
	require.Equal(t, byte(0xff), s.Memory()[memmap.ChannelAttrBase+5])
}

func TestFreeChannelSurvivesSync(t *testing.T) {
	mem := erased()
	stale := []byte{0x50, 0x7d, 0xdc, 0x00, 0, 0, 0, 0, 0x08, 0x13, 0x21, 0x12, 0x3b, 0x05, 0x05, 0x00}
	copy(mem[memmap.ChannelBase+7*16:], stale)
	// free, band 2, scan list 1.
	mem[memmap.ChannelAttrBase+7] = 0x8a
	s := sim.New(memmap.Size)
	s.SetMemory(mem)

	ctx := context.Background()
	e := newEngine(t, s, clone.WithValidator(model.Validator()))
	_, err := e.Download(ctx)
	require.NoError(t, err)

	m, err := model.New(e.Image())
	require.NoError(t, err)
	active, err := m.ActiveChannels()
	require.NoError(t, err)
	require.Empty(t, active)
	ch, err := m.Channel(7)
	require.NoError(t, err)
	require.True(t, ch.Free)
	require.Equal(t, model.Frequency(144500000), ch.Freq)

	_, err = e.Upload(ctx)
	require.NoError(t, err)
	_, err = e.Download(ctx)
	require.NoError(t, err)
	require.Equal(t, mem, e.Image().Bytes())
	require.Equal(t, mem, s.Memory())
}

func TestEditAndUploadChannel(t *testing.T) {
	s := sim.New(memmap.Size)
	ctx := context.Background()
	e := newEngine(t, s, clone.WithValidator(model.Validator()))
	_, err := e.Download(ctx)
	require.NoError(t, err)

	ch := &model.Channel{
		Index:      0,
		Name:       "PMR1",
		Freq:       446006250,
		Modulation: model.ModFM,
		Power:      model.PowerLow,
		Narrow:     true,
		Step:       2,
	}
	require.NoError(t, e.Edit(func(img *layout.Image) error {
		m, err := model.New(img)
		if err != nil {
			return err
		}
		return m.SetChannel(ch)
	}))
	_, err = e.Upload(ctx)
	require.NoError(t, err)

	m, err := model.New(layout.NewImageFrom(s.Memory()))
	require.NoError(t, err)
	got, err := m.Channel(0)
	require.NoError(t, err)
	require.Equal(t, "PMR1", got.Name)
	require.Equal(t, model.Frequency(446006250), got.Freq)
	require.Equal(t, 5, got.Band)
	require.False(t, got.Free)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultBands(t *testing.T) {
	require.Len(t, DefaultBands, MaxBands)
	testCases := []struct {
		f    Frequency
		band int
	}{
		{18 * MHz, 0},
		{108 * MHz, 0},
		{118 * MHz, 1},
		{145500000, 2},
		{174 * MHz, 3},
		{350 * MHz, 4},
		{433 * MHz, 5},
		{1300 * MHz, 6},
	}
	for _, tc := range testCases {
		band, ok := DefaultBands.Find(tc.f)
		require.True(t, ok, tc.f.String())
		require.Equal(t, tc.band, band, tc.f.String())
	}
	for _, f := range []Frequency{0, 17 * MHz, 1300*MHz + 10, fromRaw(blankRaw)} {
		_, ok := DefaultBands.Find(f)
		require.False(t, ok, f.String())
	}
}

func TestLoadBands(t *testing.T) {
	bands, err := LoadBands([]byte(`
; narrower UHF
[band.6]
low = 470
high = 600.5
`))
	require.NoError(t, err)
	require.Equal(t, DefaultBands[0], bands[0])
	require.Equal(t, Band{Low: 470 * MHz, High: 600500000, TxLow: 470 * MHz, TxHigh: 600500000}, bands[6])
	_, ok := bands.Find(700 * MHz)
	require.False(t, ok)
	require.Equal(t, 1300*MHz, DefaultBands[6].High)

	for _, src := range []string{
		"[band.2]\nlow = 180\nhigh = 170\n",
		"[band.9]\nlow = 1\n",
		"[band.1]\nlow = x\n",
		"[tx.7]\nlow = 1\n",
		"[tx.2]\nenabled = maybe\n",
		"[tx.2]\nlow = 150\nhigh = 140\n",
	} {
		_, err := LoadBands([]byte(src))
		require.Error(t, err, src)
	}
}

func TestTransmitRanges(t *testing.T) {
	require.True(t, DefaultBands.CanTransmit(145*MHz))
	require.False(t, DefaultBands.CanTransmit(0))
	require.False(t, DefaultBands.CanTransmit(3145*MHz))

	bands, err := LoadBands([]byte(`
[tx.2]
low = 144
high = 146
[tx.5]
enabled = false
`))
	require.NoError(t, err)
	require.Equal(t, DefaultBands[2].Low, bands[2].Low)
	require.True(t, bands.CanTransmit(145*MHz))
	require.False(t, bands.CanTransmit(147*MHz))
	require.False(t, bands.CanTransmit(446*MHz))
	require.True(t, bands.CanTransmit(470*MHz))
	_, ok := bands.Find(446 * MHz)
	require.True(t, ok)
}

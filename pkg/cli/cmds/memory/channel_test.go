package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
)

func TestParseSlot(t *testing.T) {
	for in, want := range map[string]int{"1": 0, "200": 199, "VFO1": 200, "vfo14": 213} {
		slot, err := parseSlot(in)
		require.NoError(t, err, in)
		require.Equal(t, want, slot, in)
	}
	for _, in := range []string{"0", "201", "VFO0", "VFO15", "x"} {
		_, err := parseSlot(in)
		require.Error(t, err, in)
	}
}

func TestParseOffset(t *testing.T) {
	dir, f, err := parseOffset("-0.6")
	require.NoError(t, err)
	require.Equal(t, model.OffsetMinus, dir)
	require.Equal(t, 600*model.KHz, f)

	dir, f, err = parseOffset("5")
	require.NoError(t, err)
	require.Equal(t, model.OffsetPlus, dir)
	require.Equal(t, 5*model.MHz, f)

	dir, _, err = parseOffset("+0")
	require.NoError(t, err)
	require.Equal(t, model.OffsetNone, dir)
}

func TestApplyChannelArgs(t *testing.T) {
	ch := newChannel(3)
	require.Equal(t, 4, ch.Step)
	require.NoError(t, applyChannelArgs(ch, []string{
		"name=RPT", "offset=-0.6", "tone=88.5", "mode=am", "power=low",
		"step=6.25", "narrow", "scan2=1", "compander=1",
	}))
	require.Equal(t, "RPT", ch.Name)
	require.Equal(t, model.OffsetMinus, ch.OffsetDir)
	require.Equal(t, model.Tone{Kind: model.ToneCTCSS, Index: 8}, ch.RxTone)
	require.Equal(t, ch.RxTone, ch.TxTone)
	require.Equal(t, model.ModAM, ch.Modulation)
	require.Equal(t, model.PowerLow, ch.Power)
	require.Equal(t, 2, ch.Step)
	require.True(t, ch.Narrow)
	require.False(t, ch.ScanList1)
	require.True(t, ch.ScanList2)
	require.Equal(t, model.CompanderTX, ch.Compander)

	require.Error(t, applyChannelArgs(ch, []string{"step=7"}))
	require.Error(t, applyChannelArgs(ch, []string{"color=red"}))
	require.Error(t, applyChannelArgs(ch, []string{"narrow=maybe"}))
}

func TestViewChannel(t *testing.T) {
	ch := newChannel(0)
	ch.Freq = 145600 * model.KHz
	ch.OffsetDir, ch.Offset = model.OffsetMinus, 600*model.KHz
	ch.ScanList1 = true
	v := viewChannel(ch)
	require.Equal(t, "1", v.Number)
	require.Equal(t, "145.60000", v.Freq)
	require.Equal(t, "-0.60000", v.Offset)
	require.Equal(t, "12.5", v.Step)
	require.Equal(t, "off", v.RxTone)
	require.Equal(t, "1", v.ScanLists)
	require.Equal(t, 1, v.Band)
}

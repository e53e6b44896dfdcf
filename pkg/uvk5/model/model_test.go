package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

func erasedImage() *layout.Image {
	img := layout.NewImage(memmap.Size)
	img.Fill(0xff)
	return img
}

func newModel(t *testing.T) *Model {
	m, err := New(erasedImage())
	require.NoError(t, err)
	return m
}

func testChannel(i int) *Channel {
	return &Channel{
		Index:       i,
		Name:        "RPT GB3",
		Freq:        145625000,
		Offset:      600 * KHz,
		OffsetDir:   OffsetMinus,
		RxTone:      Tone{Kind: ToneCTCSS, Index: 8},
		TxTone:      Tone{Kind: ToneDCSInverted, Index: 3},
		Modulation:  ModFM,
		Power:       PowerMid,
		Narrow:      true,
		BusyLockout: true,
		PTTID:       PTTIDBoth,
		DTMFDecode:  true,
		Step:        5,
		Scrambler:   2,
		Compander:   CompanderTX,
		ScanList1:   true,
	}
}

func requireFields(t *testing.T, err error, fields ...string) {
	require.Error(t, err)
	var names []string
	for _, e := range ValidationErrors(err) {
		names = append(names, e.Field)
	}
	require.ElementsMatch(t, fields, names, "%v", err)
}

func TestNewChecksSize(t *testing.T) {
	_, err := New(layout.NewImage(100))
	require.Error(t, err)
}

func TestErasedImage(t *testing.T) {
	m := newModel(t)
	active, err := m.ActiveChannels()
	require.NoError(t, err)
	require.Empty(t, active)
	require.NoError(t, m.Validate())

	ch, err := m.Channel(0)
	require.NoError(t, err)
	require.True(t, ch.Free)
	require.True(t, ch.Blank())
	require.Empty(t, ch.Name)

	features := m.Features()
	require.True(t, features.RawDemodulators)
	require.Len(t, features.Names(), 13)
}

func TestChannelRoundTrip(t *testing.T) {
	m := newModel(t)
	want := testChannel(5)
	require.NoError(t, m.SetChannel(want))

	got, err := m.Channel(5)
	require.NoError(t, err)
	expect := *want
	expect.Band = 2
	require.Equal(t, &expect, got)
	require.Equal(t, Frequency(145025000), got.TxFreq())
	require.Equal(t, "6", got.Number())

	// bits not owned by any field keep their erased value.
	raw, err := m.Image().Slice(memmap.ChannelBase+5*16+12, 2)
	require.NoError(t, err)
	require.Equal(t, byte(0xe0), raw[0]&0xe0)
	require.Equal(t, byte(0xf0), raw[1]&0xf0)

	// neighbours are untouched.
	for _, i := range []int{4, 6} {
		ch, err := m.Channel(i)
		require.NoError(t, err)
		require.True(t, ch.Free)
	}

	active, err := m.ActiveChannels()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, 5, active[0].Index)
	require.NoError(t, m.Validate())
}

func TestUnusedToneCodeSurvivesEdit(t *testing.T) {
	m := newModel(t)
	ch := testChannel(5)
	ch.RxTone = Tone{}
	require.NoError(t, m.SetChannel(ch))
	w := writer{img: m.Image()}
	w.num(elem(channelArray, 5, "rxcode"), 0x21)
	require.NoError(t, w.err)

	got, err := m.Channel(5)
	require.NoError(t, err)
	require.Equal(t, Tone{Kind: ToneNone, Index: 0x21}, got.RxTone)
	require.Equal(t, "off", got.RxTone.String())

	got.Name = "EDITED"
	require.NoError(t, m.SetChannel(got))
	r := reader{img: m.Image()}
	require.Equal(t, 0x21, r.num(elem(channelArray, 5, "rxcode")))
	require.Equal(t, 0, r.num(elem(channelArray, 5, "rxcodeflag")))
	require.NoError(t, r.err)
}

func TestSetChannelRejects(t *testing.T) {
	m := newModel(t)
	before := m.Image().Clone()

	ch := testChannel(7)
	ch.Freq = 10 * MHz
	ch.Power = 3
	ch.Step = 24
	ch.Scrambler = 11
	ch.PTTID = 5
	ch.RxTone = Tone{Kind: ToneCTCSS, Index: 50}
	ch.Name = "much too long"
	err := m.SetChannel(ch)
	requireFields(t, err,
		"channel[7].freq",
		"channel[7].txpower",
		"channel[7].step",
		"channel[7].scrambler",
		"channel[7].dtmf_pttid",
		"channel[7].rx_tone",
		"channel[7].name",
	)
	require.True(t, before.Equal(m.Image()))

	ch = testChannel(7)
	ch.Freq = 145625005
	requireFields(t, m.SetChannel(ch), "channel[7].freq")

	ch = testChannel(300)
	requireFields(t, m.SetChannel(ch), "channel")
	_, err = m.Channel(-1)
	requireFields(t, err, "channel")
}

func TestSetChannelChecksTransmit(t *testing.T) {
	m := newModel(t)
	before := m.Image().Clone()

	ch := testChannel(3)
	ch.Freq = 145 * MHz
	ch.OffsetDir, ch.Offset = OffsetPlus, 3000*MHz
	requireFields(t, m.SetChannel(ch), "channel[3].tx_freq")

	ch.OffsetDir, ch.Offset = OffsetMinus, 200*MHz
	require.Equal(t, Frequency(0), ch.TxFreq())
	requireFields(t, m.SetChannel(ch), "channel[3].offset")
	require.True(t, before.Equal(m.Image()))

	// stored records are checked by the upload validator too
	ch.OffsetDir, ch.Offset = OffsetMinus, 600*KHz
	require.NoError(t, m.SetChannel(ch))
	w := writer{img: m.Image()}
	w.u32(elem(channelArray, 3, "offset"), uint32(200*MHz/rawUnit))
	require.NoError(t, w.err)
	requireFields(t, m.Validate(), "channel[3].offset")

	bands, err := LoadBands([]byte("[tx.2]\nenabled = false\n"))
	require.NoError(t, err)
	rxOnly, err := New(erasedImage(), WithBands(bands))
	require.NoError(t, err)
	ch = testChannel(3)
	requireFields(t, rxOnly.SetChannel(ch), "channel[3].tx_freq")
	ch.OffsetDir, ch.Offset = OffsetPlus, 300*MHz
	require.NoError(t, rxOnly.SetChannel(ch))
}

func TestModulationNeedsFeature(t *testing.T) {
	m := newModel(t)
	ch := testChannel(1)
	ch.Modulation = ModRAW
	require.NoError(t, m.SetChannel(ch))

	_, err := m.Image().WriteAt([]byte{0xff, 0x00}, memmap.BuildOptions)
	require.NoError(t, err)
	require.False(t, m.Features().RawDemodulators)
	requireFields(t, m.SetChannel(ch), "channel[1].modulation")
	requireFields(t, m.Validate(), "channel[1].modulation")

	ch.Modulation = ModUSB
	require.NoError(t, m.SetChannel(ch))
}

func TestVFOSlots(t *testing.T) {
	m := newModel(t)
	vfo := testChannel(memmap.FirstVFO + 2)
	requireFields(t, m.SetChannel(vfo), "channel[202].name")

	vfo.Name = ""
	vfo.ScanList1 = false
	vfo.Compander = 0
	require.NoError(t, m.SetChannel(vfo))
	got, err := m.Channel(memmap.FirstVFO + 2)
	require.NoError(t, err)
	require.Equal(t, vfo.Freq, got.Freq)
	require.Equal(t, "VFO3", got.Number())
	require.False(t, got.Free)

	active, err := m.ActiveChannels()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.True(t, active[0].IsVFO())

	requireFields(t, m.EraseChannel(memmap.FirstVFO), "channel")
}

func TestEraseChannel(t *testing.T) {
	m := newModel(t)
	require.NoError(t, m.SetChannel(testChannel(9)))
	require.NoError(t, m.SetChannel(testChannel(10)))
	require.NoError(t, m.EraseChannel(9))

	ch, err := m.Channel(9)
	require.NoError(t, err)
	require.True(t, ch.Free)
	require.True(t, ch.Blank())
	require.Empty(t, ch.Name)
	raw, err := m.Image().Slice(memmap.ChannelBase+9*16, 16)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{0xff}, 16), raw)
	raw, err = m.Image().Slice(memmap.ChannelNameBase+9*16, 16)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 16), raw)

	active, err := m.ActiveChannels()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, 10, active[0].Index)
}

func TestValidateRejectsBlankFrequency(t *testing.T) {
	m := newModel(t)
	require.NoError(t, m.SetChannel(testChannel(5)))
	w := writer{img: m.Image()}
	w.u32(elem(channelArray, 5, "freq"), 0xffffffff)
	require.NoError(t, w.err)

	err := m.Validate()
	requireFields(t, err, "channel[5].freq")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, fromRaw(blankRaw), verr.Value)
}

func TestSettings(t *testing.T) {
	m := newModel(t)
	require.NoError(t, m.SetSetting("squelch", 4))
	v, err := m.Setting("squelch")
	require.NoError(t, err)
	require.Equal(t, uint32(4), v)

	require.NoError(t, m.SetSetting("backlight_min", 2))
	require.NoError(t, m.SetSetting("backlight_max", 7))
	raw, err := m.Image().Slice(0x0e78, 1)
	require.NoError(t, err)
	require.Equal(t, byte(0x27), raw[0])

	requireFields(t, m.SetSetting("squelch", 10), "squelch")
	requireFields(t, m.SetSetting("no_such", 1), "setting")
	_, err = m.Setting("no_such")
	require.Error(t, err)

	values, err := m.Settings()
	require.NoError(t, err)
	require.Len(t, values, len(SettingTable))
	for _, s := range values {
		require.True(t, s.Supported, s.Name)
	}

	_, err = m.Image().WriteAt([]byte{0x00}, memmap.BuildOptions)
	require.NoError(t, err)
	requireFields(t, m.SetSetting("vox_level", 3), "vox_level")
	values, err = m.Settings()
	require.NoError(t, err)
	for _, s := range values {
		if s.Name == "vox_switch" {
			require.False(t, s.Supported)
		}
	}
}

func TestDTMF(t *testing.T) {
	m := newModel(t)
	d := &DTMFSettings{
		SideTone:             true,
		SeparateCode:         "*",
		GroupCallCode:        "#",
		DecodeResponse:       2,
		AutoResetTime:        10,
		PreloadTime:          30,
		FirstCodePersistTime: 10,
		HashPersistTime:      10,
		CodePersistTime:      10,
		CodeIntervalTime:     10,
		LocalCode:            "123",
		KillCode:             "ABCD9",
		ReviveCode:           "9DCBA",
		UpCode:               "12345",
		DownCode:             "54321",
	}
	require.NoError(t, m.SetDTMF(d))
	got, err := m.DTMF()
	require.NoError(t, err)
	require.Equal(t, d, got)
	raw, err := m.Image().Slice(0x0ef8, 16)
	require.NoError(t, err)
	require.Equal(t, append([]byte("12345"), bytes.Repeat([]byte{0xff}, 11)...), raw)

	bad := *d
	bad.LocalCode = "12"
	bad.KillCode = "ABCDE"
	bad.SeparateCode = "1"
	bad.AutoResetTime = 61
	requireFields(t, m.SetDTMF(&bad), "dtmf.local_code", "dtmf.kill_code", "dtmf.separate_code", "dtmf.auto_reset_time")
	got, err = m.DTMF()
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestContacts(t *testing.T) {
	m := newModel(t)
	contacts, err := m.Contacts()
	require.NoError(t, err)
	require.Len(t, contacts, memmap.ContactCount)
	for _, c := range contacts {
		require.True(t, c.Empty())
	}

	require.NoError(t, m.SetContact(3, Contact{Name: "BASE", Number: "1A*"}))
	contacts, err = m.Contacts()
	require.NoError(t, err)
	require.Equal(t, Contact{Name: "BASE", Number: "1A*"}, contacts[3])

	requireFields(t, m.SetContact(4, Contact{Name: "TOOLONGNAME", Number: "12"}), "contact[4].name", "contact[4].number")
	requireFields(t, m.SetContact(4, Contact{Number: "123"}), "contact[4].name")
	requireFields(t, m.SetContact(16, Contact{}), "contact")

	require.NoError(t, m.SetContact(3, Contact{}))
	contacts, err = m.Contacts()
	require.NoError(t, err)
	require.True(t, contacts[3].Empty())
	require.NoError(t, m.Validate())
}

func TestScanListsAndPresets(t *testing.T) {
	m := newModel(t)
	sl, err := m.ScanLists()
	require.NoError(t, err)
	require.Equal(t, NoChannel, sl.Lists[0].Ch1)

	sl = &ScanLists{Default: 1, Lists: [2]ScanList{{Priority: true, Ch1: 4, Ch2: NoChannel}, {Ch1: 199, Ch2: 0}}}
	require.NoError(t, m.SetScanLists(sl))
	got, err := m.ScanLists()
	require.NoError(t, err)
	require.Equal(t, sl, got)
	requireFields(t, m.SetScanLists(&ScanLists{Default: 3, Lists: [2]ScanList{{Ch1: 200}}}), "sl_default", "sl1_prior_ch1")

	require.NoError(t, m.SetFMPreset(0, 98100*KHz))
	require.NoError(t, m.SetFMPreset(19, 76*MHz))
	presets, err := m.FMPresets()
	require.NoError(t, err)
	require.Equal(t, Frequency(98100*KHz), presets[0])
	require.Equal(t, Frequency(0), presets[1])
	require.Equal(t, 76*MHz, presets[19])
	requireFields(t, m.SetFMPreset(1, 120*MHz), "fm_preset[1]")
	requireFields(t, m.SetFMPreset(1, 98150*KHz), "fm_preset[1]")
	require.NoError(t, m.SetFMPreset(0, 0))
	raw, err := m.Image().Slice(memmap.FMBase, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xff}, raw)
}

func TestLogoAndPassword(t *testing.T) {
	m := newModel(t)
	l1, l2, err := m.Logo()
	require.NoError(t, err)
	require.Empty(t, l1)
	require.Empty(t, l2)
	require.NoError(t, m.SetLogo("UV-K5", "egzumer"))
	l1, l2, err = m.Logo()
	require.NoError(t, err)
	require.Equal(t, "UV-K5", l1)
	require.Equal(t, "egzumer", l2)
	requireFields(t, m.SetLogo("", "seventeen chars!!"), "logo_line2")

	_, ok, err := m.Password()
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, m.SetPassword(123456))
	pw, ok, err := m.Password()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(123456), pw)
	requireFields(t, m.SetPassword(1000000), "password")
	require.NoError(t, m.ClearPassword())
	_, ok, err = m.Password()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCalibration(t *testing.T) {
	m := newModel(t)
	region := make([]byte, memmap.CalibrationLen)
	for i := range region {
		region[i] = byte(i)
	}
	_, err := m.Image().WriteAt(region, memmap.CalibrationBase)
	require.NoError(t, err)

	cal, err := m.Calibration()
	require.NoError(t, err)
	require.Equal(t, [10]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, cal.SquelchBand4To7.OpenRSSI.Levels)
	require.Equal(t, uint8(0x60), cal.SquelchBand1To3.OpenRSSI.Levels[0])
	require.Equal(t, uint16(0xc1c0), cal.RSSIBand4To7.Levels[0])
	require.Equal(t, [3]uint8{0xd0, 0xd1, 0xd2}, cal.TxPower[0].Low)
	require.Equal(t, uint16(0x4140), cal.Battery[0])
	require.Equal(t, uint16(0x5150), cal.VOX1[0])
	require.Equal(t, uint16(0x6968), cal.VOX0[0])
	require.Equal(t, uint8(0x80), cal.MicLevel[0])
	require.Equal(t, int16(-0x7678), cal.XtalFreqLow)
	require.Equal(t, uint8(0x8a), cal.VolumeGain)
	require.Equal(t, uint8(0x8b), cal.DACGain)

	require.NoError(t, m.SetCalibration(cal))
	raw, err := m.Image().Slice(memmap.CalibrationBase, memmap.CalibrationLen)
	require.NoError(t, err)
	require.Equal(t, region, raw)

	cal.VolumeGain = 58
	cal.XtalFreqLow = -3
	require.NoError(t, m.SetCalibration(cal))
	raw, err = m.Image().Slice(0x1f88, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0xfd, 0xff, 58, 0x8b}, raw)
}

package memmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uvk5.go/pkg/layout"
)

func TestSchema(t *testing.T) {
	require.NoError(t, Schema.Validate())
	require.Equal(t, Size, Schema.Size)

	require.Equal(t, ChannelAttrBase, Array(Channels).End())
	require.Equal(t, 0x0e28, Array(ChannelAttrs).End())
	require.Equal(t, 0x0e68, Array(FMPresets).End())
	require.Equal(t, 0x1bd0, Array(ChannelNames).End())
	require.Equal(t, 0x1d00, Array(DTMFContacts).End())
	require.Equal(t, CalibrationBase+CalibrationLen, Field("cal_dac_gain").End())
	require.Equal(t, 0x0e98, Field("password").Offset)

	require.Panics(t, func() { Field("no_such_field") })
	require.Panics(t, func() { Array("no_such_array") })
}

func TestDecodeKnownBytes(t *testing.T) {
	img := layout.NewImage(Size)
	img.Fill(0xff)
	_, err := img.WriteAt([]byte{
		0x50, 0x7d, 0xdc, 0x00, // 144.5 MHz
		0xa0, 0x86, 0x01, 0x00, // 1 MHz offset
		0x08, 0x13, // rx/tx code
		0x21,       // tx flag 2, rx flag 1
		0x12,       // modulation 1, offset dir 2
		0x3b,       // busy lockout, power 2, bandwidth 1, reverse 1
		0x05,       // pttid 2, dtmf decode
		0x05, 0x00, // step, scrambler
	}, ChannelBase+16*5)
	require.NoError(t, err)
	_, err = img.WriteAt([]byte{0x8b}, ChannelAttrBase+5)
	require.NoError(t, err)

	ch, err := layout.DecodeRecord(img, Array(Channels), 5)
	require.NoError(t, err)
	expect := map[string]uint32{
		"freq":         14450000,
		"offset":       100000,
		"rxcode":       8,
		"txcode":       19,
		"txcodeflag":   2,
		"rxcodeflag":   1,
		"modulation":   1,
		"offset_dir":   2,
		"busy_lockout": 1,
		"txpower":      2,
		"bandwidth":    1,
		"freq_reverse": 1,
		"dtmf_pttid":   2,
		"dtmf_decode":  1,
		"step":         5,
		"scrambler":    0,
	}
	for name, v := range expect {
		require.Equal(t, v, ch[name], name)
	}

	attr, err := layout.DecodeRecord(img, Array(ChannelAttrs), 5)
	require.NoError(t, err)
	require.Equal(t, uint32(3), attr["band"])
	require.Equal(t, uint32(1), attr["is_free"])
	require.Equal(t, uint32(0), attr["compander"])
	require.Equal(t, uint32(0), attr["is_scanlist2"])
	require.Equal(t, uint32(1), attr["is_scanlist1"])

	_, err = img.WriteAt([]byte{0x5a, 0x80, 0x28}, 0x0e78)
	require.NoError(t, err)
	v, err := layout.DecodeUint(img, Field("backlight_min"))
	require.NoError(t, err)
	require.Equal(t, uint32(5), v)
	v, err = layout.DecodeUint(img, Field("backlight_max"))
	require.NoError(t, err)
	require.Equal(t, uint32(0xa), v)

	_, err = img.WriteAt([]byte{0x81, 0x28}, BuildOptions)
	require.NoError(t, err)
	for name, want := range map[string]uint32{
		"enable_dtmf_calling":     1,
		"enable_pwron_password":   0,
		"enable_fmradio":          1,
		"enable_am_fix":           0,
		"enable_blmin_tmp_off":    1,
		"enable_raw_demodulators": 0,
		"enable_wide_rx":          0,
		"enable_flashlight":       0,
	} {
		v, err := layout.DecodeUint(img, Field(name))
		require.NoError(t, err)
		require.Equal(t, want, v, name)
	}
}

func TestChannelAttrEncodeKeepsSiblings(t *testing.T) {
	img := layout.NewImage(Size)
	img.Fill(0xff)
	a := Array(ChannelAttrs)
	f, err := a.Field(7, "is_free")
	require.NoError(t, err)
	require.NoError(t, layout.EncodeUint(img, f, 0))
	b, err := img.Slice(ChannelAttrBase+7, 1)
	require.NoError(t, err)
	require.Equal(t, byte(0xf7), b[0])

	f, err = a.Field(7, "band")
	require.NoError(t, err)
	require.NoError(t, layout.EncodeUint(img, f, 2))
	b, err = img.Slice(ChannelAttrBase+7, 1)
	require.NoError(t, err)
	require.Equal(t, byte(0xf2), b[0])
}

// allFields lists every writable top-level field plus the first and last
// element of every array.
func allFields(t *testing.T) []layout.FieldSpec {
	var fields []layout.FieldSpec
	for _, f := range Schema.Fields {
		if !f.Reserved {
			fields = append(fields, f)
		}
	}
	for _, a := range Schema.Arrays {
		for _, i := range []int{0, a.Count - 1} {
			elem, err := a.Element(i)
			require.NoError(t, err)
			for _, f := range elem {
				if !f.Reserved {
					fields = append(fields, f)
				}
			}
		}
	}
	return fields
}

func ownedBits(f layout.FieldSpec) byte {
	if !f.IsBitfield() {
		return 0xff
	}
	shift := 8 - f.Bit - f.Bits
	if f.Order == layout.LSBFirst {
		shift = f.Bit
	}
	return byte((1<<uint(f.Bits) - 1) << uint(shift))
}

func requireOnlyFieldChanged(t *testing.T, f layout.FieldSpec, before, after *layout.Image) {
	b, a := before.Bytes(), after.Bytes()
	require.Equal(t, b[:f.Offset], a[:f.Offset], f.Name)
	require.Equal(t, b[f.End():], a[f.End():], f.Name)
	mask := ownedBits(f)
	for off := f.Offset; off < f.End(); off++ {
		require.Equal(t, b[off]&^mask, a[off]&^mask, "%s: byte 0x%04x", f.Name, off)
	}
}

func TestEveryFieldRoundTrips(t *testing.T) {
	fields := allFields(t)
	require.NotEmpty(t, fields)
	for _, f := range fields {
		var values []interface{}
		switch f.Kind {
		case layout.KindUint:
			max := f.MaxUint()
			values = []interface{}{uint32(0), max, max/2 + 1}
		case layout.KindInt:
			min, max := f.IntRange()
			values = []interface{}{min, max, int32(-1), int32(0)}
		case layout.KindText:
			values = []interface{}{layout.Text{Value: strings.Repeat("Z", f.Size), Clean: true}}
			if f.Size > 1 {
				values = append(values, layout.Text{Value: "A", Terminated: true, Clean: true})
			}
		case layout.KindBytes:
			b := make([]byte, f.Size)
			for i := range b {
				b[i] = byte(i) ^ 0x3c
			}
			values = []interface{}{b}
		}
		for _, v := range values {
			img := layout.NewImage(Size)
			img.Fill(0xa5)
			before := img.Clone()
			in := v
			if text, ok := v.(layout.Text); ok {
				in = text.Value
			}
			require.NoError(t, layout.Encode(img, f, in), "%s = %v", f.Name, v)
			got, err := layout.Decode(img, f)
			require.NoError(t, err, f.Name)
			require.Equal(t, v, got, f.Name)
			requireOnlyFieldChanged(t, f, before, img)
		}
	}
}

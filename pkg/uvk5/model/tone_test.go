package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTone(t *testing.T) {
	testCases := []struct {
		in     string
		expect Tone
	}{
		{"", Tone{}},
		{"off", Tone{}},
		{"88.5", Tone{Kind: ToneCTCSS, Index: 8}},
		{"67", Tone{Kind: ToneCTCSS, Index: 0}},
		{"D023N", Tone{Kind: ToneDCS, Index: 0}},
		{"D023", Tone{Kind: ToneDCS, Index: 0}},
		{"d754i", Tone{Kind: ToneDCSInverted, Index: 103}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			tone, err := ParseTone(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.expect, tone)
		})
	}
	for _, in := range []string{"88.6", "D999N", "Dxyz", "tone"} {
		_, err := ParseTone(in)
		require.Error(t, err, in)
	}
}

func TestToneRoundTrip(t *testing.T) {
	require.Len(t, CTCSSTones, 50)
	require.Len(t, DCSCodes, 104)
	var tones []Tone
	for i := range CTCSSTones {
		tones = append(tones, Tone{Kind: ToneCTCSS, Index: i})
	}
	for i := range DCSCodes {
		tones = append(tones, Tone{Kind: ToneDCS, Index: i}, Tone{Kind: ToneDCSInverted, Index: i})
	}
	for _, tone := range tones {
		require.NoError(t, tone.Validate())
		parsed, err := ParseTone(tone.String())
		require.NoError(t, err, tone.String())
		require.Equal(t, tone, parsed)
	}
	require.Equal(t, "off", Tone{}.String())
	require.Equal(t, "D023N", Tone{Kind: ToneDCS}.String())
}

func TestToneValidate(t *testing.T) {
	require.Error(t, Tone{Kind: ToneCTCSS, Index: 50}.Validate())
	require.Error(t, Tone{Kind: ToneDCSInverted, Index: 104}.Validate())
	require.Error(t, Tone{Kind: 7}.Validate())
	require.Equal(t, "tone(7:0)", Tone{Kind: 7}.String())
}

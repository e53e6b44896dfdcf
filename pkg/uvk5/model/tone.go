package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ToneKind is the squelch signalling type, stored as the code flag.
type ToneKind int

// Tone kinds.
const (
	ToneNone ToneKind = iota
	ToneCTCSS
	ToneDCS
	ToneDCSInverted
)

// CTCSSTones lists the CTCSS frequencies in 0.1 Hz by code index.
var CTCSSTones = []int{
	670, 693, 719, 744, 770, 797, 825, 854, 885, 915,
	948, 974, 1000, 1035, 1072, 1109, 1148, 1188, 1230, 1273,
	1318, 1365, 1413, 1462, 1514, 1567, 1598, 1622, 1655, 1679,
	1713, 1738, 1773, 1799, 1835, 1862, 1899, 1928, 1966, 1995,
	2035, 2065, 2107, 2181, 2257, 2291, 2336, 2418, 2503, 2541,
}

// DCSCodes lists the DCS codes (octal digits written as decimal) by code
// index.
var DCSCodes = []int{
	23, 25, 26, 31, 32, 36, 43, 47, 51, 53,
	54, 65, 71, 72, 73, 74, 114, 115, 116, 122,
	125, 131, 132, 134, 143, 145, 152, 155, 156, 162,
	165, 172, 174, 205, 212, 223, 225, 226, 243, 244,
	245, 246, 251, 252, 255, 261, 263, 265, 266, 271,
	274, 306, 311, 315, 325, 331, 332, 343, 346, 351,
	356, 364, 365, 371, 411, 412, 413, 423, 431, 432,
	445, 446, 452, 454, 455, 462, 464, 465, 466, 503,
	506, 516, 523, 526, 532, 546, 565, 606, 612, 624,
	627, 631, 632, 654, 662, 664, 703, 712, 723, 731,
	732, 734, 743, 754,
}

// Tone is a CTCSS tone or DCS code selected by index. With ToneNone the
// index is the stored code, which the radio ignores.
type Tone struct {
	Kind  ToneKind
	Index int
}

// ParseTone parses "off", a CTCSS frequency like "88.5", or a DCS code
// like "D023N" or "D023I".
func ParseTone(s string) (Tone, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "", "OFF", "NONE":
		return Tone{}, nil
	}
	if s[0] == 'D' {
		kind := ToneDCS
		code := s[1:]
		switch {
		case strings.HasSuffix(code, "I"):
			kind, code = ToneDCSInverted, code[:len(code)-1]
		case strings.HasSuffix(code, "N"):
			code = code[:len(code)-1]
		}
		v, err := strconv.Atoi(code)
		if err != nil {
			return Tone{}, fmt.Errorf("invalid DCS code %q", s)
		}
		for i, c := range DCSCodes {
			if c == v {
				return Tone{Kind: kind, Index: i}, nil
			}
		}
		return Tone{}, fmt.Errorf("unknown DCS code %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Tone{}, fmt.Errorf("invalid tone %q", s)
	}
	tenths := int(f*10 + 0.5)
	for i, t := range CTCSSTones {
		if t == tenths {
			return Tone{Kind: ToneCTCSS, Index: i}, nil
		}
	}
	return Tone{}, fmt.Errorf("unknown CTCSS tone %q", s)
}

// String implements fmt.Stringer.
func (t Tone) String() string {
	if t.Validate() != nil {
		return fmt.Sprintf("tone(%d:%d)", t.Kind, t.Index)
	}
	switch t.Kind {
	case ToneCTCSS:
		v := CTCSSTones[t.Index]
		return fmt.Sprintf("%d.%d", v/10, v%10)
	case ToneDCS:
		return fmt.Sprintf("D%03dN", DCSCodes[t.Index])
	case ToneDCSInverted:
		return fmt.Sprintf("D%03dI", DCSCodes[t.Index])
	}
	return "off"
}

// Validate checks the index against the table of the kind.
func (t Tone) Validate() error {
	switch t.Kind {
	case ToneNone:
		return nil
	case ToneCTCSS:
		if t.Index < 0 || t.Index >= len(CTCSSTones) {
			return fmt.Errorf("CTCSS index %d out of range", t.Index)
		}
	case ToneDCS, ToneDCSInverted:
		if t.Index < 0 || t.Index >= len(DCSCodes) {
			return fmt.Errorf("DCS index %d out of range", t.Index)
		}
	default:
		return fmt.Errorf("unknown tone type %d", t.Kind)
	}
	return nil
}

// raw returns the stored code flag and code. The code of an unused tone
// is kept as found so untouched records round-trip.
func (t Tone) raw() (flag, code uint32) {
	return uint32(t.Kind), uint32(t.Index)
}

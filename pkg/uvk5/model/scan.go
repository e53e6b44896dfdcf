package model

import (
	"fmt"

	"github.com/robotalks/uvk5.go/pkg/framework"
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

// NoChannel marks an unset priority channel.
const NoChannel = -1

// ScanList is one of the two scan lists with its priority channels.
type ScanList struct {
	Priority bool
	Ch1      int
	Ch2      int
}

// ScanLists holds the scan list options.
type ScanLists struct {
	// Default selects list 1, list 2 or all channels (0-2).
	Default int
	Lists   [2]ScanList
}

var scanListFields = [2][3]string{
	{"sl1_prior_enab", "sl1_prior_ch1", "sl1_prior_ch2"},
	{"sl2_prior_enab", "sl2_prior_ch1", "sl2_prior_ch2"},
}

func rawChannel(v uint32) int {
	if v >= memmap.UserChannels {
		return NoChannel
	}
	return int(v)
}

// ScanLists decodes the scan list options.
func (m *Model) ScanLists() (*ScanLists, error) {
	r := reader{img: m.img}
	sl := &ScanLists{Default: r.num(memmap.Field("sl_default"))}
	for n, names := range scanListFields {
		sl.Lists[n] = ScanList{
			Priority: r.flag(memmap.Field(names[0])),
			Ch1:      rawChannel(r.u32(memmap.Field(names[1]))),
			Ch2:      rawChannel(r.u32(memmap.Field(names[2]))),
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return sl, nil
}

// Validate checks the list selection and priority channels.
func (s *ScanLists) Validate() error {
	var errs framework.AggregatedError
	if s.Default < 0 || s.Default > 2 {
		errs.Add(invalid("sl_default", s.Default, "outside 0-2"))
	}
	for n, l := range s.Lists {
		for c, ch := range []int{l.Ch1, l.Ch2} {
			if ch != NoChannel && (ch < 0 || ch >= memmap.UserChannels) {
				errs.Add(invalid(scanListFields[n][c+1], ch, "not a user channel"))
			}
		}
	}
	return errs.Aggregate()
}

// SetScanLists validates and stores the scan list options.
func (m *Model) SetScanLists(s *ScanLists) error {
	if err := s.Validate(); err != nil {
		return err
	}
	scratch := m.img.Clone()
	w := writer{img: scratch}
	w.num(memmap.Field("sl_default"), s.Default)
	for n, names := range scanListFields {
		l := s.Lists[n]
		w.flag(memmap.Field(names[0]), l.Priority)
		for c, ch := range []int{l.Ch1, l.Ch2} {
			if ch == NoChannel {
				ch = 0xff
			}
			w.num(memmap.Field(names[c+1]), ch)
		}
	}
	if w.err != nil {
		return w.err
	}
	return m.img.CopyFrom(scratch)
}

func (m *Model) validateScanLists() error {
	sl, err := m.ScanLists()
	if err != nil {
		return err
	}
	// erased memory leaves the default list at 0xff, the radio resets it.
	if sl.Default == 0xff {
		sl.Default = 0
	}
	return sl.Validate()
}

// FM broadcast preset limits, stored in 100 kHz units.
const (
	FMLow   = 76 * MHz
	FMHigh  = 108 * MHz
	fmUnit  = 100 * KHz
	fmEmpty = 0xffff
)

// FMPresets decodes the FM radio presets. Unused presets are 0.
func (m *Model) FMPresets() ([]Frequency, error) {
	r := reader{img: m.img}
	presets := make([]Frequency, memmap.FMPresetCount)
	for i := range presets {
		if v := r.u32(elem(fmArray, i, "freq")); v != fmEmpty && v != 0 {
			presets[i] = Frequency(v) * fmUnit
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return presets, nil
}

func checkFMPreset(i int, f Frequency) error {
	if f == 0 {
		return nil
	}
	if f < FMLow || f > FMHigh || f%fmUnit != 0 {
		return invalid(fmt.Sprintf("fm_preset[%d]", i), f, "outside %v-%v in 100 kHz steps", FMLow, FMHigh)
	}
	return nil
}

// SetFMPreset stores preset i, 0 clears it.
func (m *Model) SetFMPreset(i int, f Frequency) error {
	if i < 0 || i >= memmap.FMPresetCount {
		return invalid("fm_preset", i, "no such slot, want 0-%d", memmap.FMPresetCount-1)
	}
	if !m.Features().FMRadio {
		return invalid(fmt.Sprintf("fm_preset[%d]", i), f, "not supported by the firmware")
	}
	if err := checkFMPreset(i, f); err != nil {
		return err
	}
	v := uint32(fmEmpty)
	if f != 0 {
		v = uint32(f / fmUnit)
	}
	w := writer{img: m.img}
	w.u32(elem(fmArray, i, "freq"), v)
	return w.err
}

func (m *Model) validateFMPresets() error {
	presets, err := m.FMPresets()
	if err != nil {
		return err
	}
	var errs framework.AggregatedError
	for i, f := range presets {
		errs.Add(checkFMPreset(i, f))
	}
	return errs.Aggregate()
}

// LogoLen is the length of a boot logo line.
const LogoLen = 16

// Logo returns the two boot screen lines.
func (m *Model) Logo() (string, string, error) {
	r := reader{img: m.img}
	line1 := r.text(memmap.Field("logo_line1"))
	line2 := r.text(memmap.Field("logo_line2"))
	return line1, line2, r.err
}

// SetLogo stores the boot screen lines.
func (m *Model) SetLogo(line1, line2 string) error {
	for n, s := range []string{line1, line2} {
		if err := checkText(s, LogoLen, ""); err != nil {
			return invalid(fmt.Sprintf("logo_line%d", n+1), s, err.Error())
		}
	}
	scratch := m.img.Clone()
	w := writer{img: scratch}
	w.text(memmap.Field("logo_line1"), line1)
	w.text(memmap.Field("logo_line2"), line2)
	if w.err != nil {
		return w.err
	}
	return m.img.CopyFrom(scratch)
}

// Power-on password limits. The erased value disables the password.
const (
	MaxPassword      = 999999
	passwordDisabled = 0xffffffff
)

// Password returns the power-on password and whether it's enabled.
func (m *Model) Password() (uint32, bool, error) {
	r := reader{img: m.img}
	v := r.u32(memmap.Field("password"))
	if r.err != nil {
		return 0, false, r.err
	}
	if v == passwordDisabled || v > MaxPassword {
		return 0, false, nil
	}
	return v, true, nil
}

// SetPassword enables the power-on password.
func (m *Model) SetPassword(v uint32) error {
	if v > MaxPassword {
		return invalid("password", v, "above %d", MaxPassword)
	}
	if !m.Features().PowerOnPassword {
		return invalid("password", v, "not supported by the firmware")
	}
	w := writer{img: m.img}
	w.u32(memmap.Field("password"), v)
	return w.err
}

// ClearPassword disables the power-on password.
func (m *Model) ClearPassword() error {
	w := writer{img: m.img}
	w.u32(memmap.Field("password"), passwordDisabled)
	return w.err
}

package model

import (
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

// Setting describes one scalar global setting.
type Setting struct {
	Name string
	Max  uint32
	// Needs reports whether the firmware supports the setting, nil when
	// always supported.
	Needs func(FeatureFlags) bool
}

// SettingValue is a decoded setting.
type SettingValue struct {
	Setting
	Value     uint32
	Supported bool
}

func needVOX(f FeatureFlags) bool   { return f.VOX }
func needNOAA(f FeatureFlags) bool  { return f.NOAA }
func needVoice(f FeatureFlags) bool { return f.Voice }
func needAlarm(f FeatureFlags) bool { return f.Alarm }
func needAMFix(f FeatureFlags) bool { return f.AMFix }

// SettingTable lists the scalar settings with their upper bounds.
var SettingTable = []Setting{
	{Name: "call_channel", Max: memmap.UserChannels - 1},
	{Name: "squelch", Max: 9},
	{Name: "max_talk_time", Max: 15},
	{Name: "noaa_autoscan", Max: 1, Needs: needNOAA},
	{Name: "key_lock", Max: 1},
	{Name: "vox_switch", Max: 1, Needs: needVOX},
	{Name: "vox_level", Max: 9, Needs: needVOX},
	{Name: "mic_gain", Max: 4},
	{Name: "backlight_min", Max: 9},
	{Name: "backlight_max", Max: 10},
	{Name: "channel_display_mode", Max: 3},
	{Name: "crossband", Max: 2},
	{Name: "battery_save", Max: 4},
	{Name: "dual_watch", Max: 2},
	{Name: "backlight_time", Max: 61},
	{Name: "ste", Max: 1},
	{Name: "freq_mode_allowed", Max: 1},
	{Name: "screen_channel_a", Max: memmap.ChannelCount - 1},
	{Name: "mr_channel_a", Max: memmap.UserChannels - 1},
	{Name: "freq_channel_a", Max: memmap.ChannelCount - 1},
	{Name: "screen_channel_b", Max: memmap.ChannelCount - 1},
	{Name: "mr_channel_b", Max: memmap.UserChannels - 1},
	{Name: "freq_channel_b", Max: memmap.ChannelCount - 1},
	{Name: "noaa_channel_a", Max: 0xff, Needs: needNOAA},
	{Name: "noaa_channel_b", Max: 0xff, Needs: needNOAA},
	{Name: "keym_longpress_action", Max: 0x7f},
	{Name: "button_beep", Max: 1},
	{Name: "key1_shortpress_action", Max: 0xff},
	{Name: "key1_longpress_action", Max: 0xff},
	{Name: "key2_shortpress_action", Max: 0xff},
	{Name: "key2_longpress_action", Max: 0xff},
	{Name: "scan_resume_mode", Max: 2},
	{Name: "auto_keypad_lock", Max: 1},
	{Name: "power_on_dispmode", Max: 3},
	{Name: "voice", Max: 2, Needs: needVoice},
	{Name: "s0_level", Max: 0xff},
	{Name: "s9_level", Max: 0xff},
	{Name: "alarm_mode", Max: 1, Needs: needAlarm},
	{Name: "roger_beep", Max: 2},
	{Name: "rp_ste", Max: 10},
	{Name: "tx_vfo", Max: 1},
	{Name: "battery_type", Max: 2},
	{Name: "int_flock", Max: 0xff},
	{Name: "int_350tx", Max: 1},
	{Name: "int_killed", Max: 1},
	{Name: "int_200tx", Max: 1},
	{Name: "int_500tx", Max: 1},
	{Name: "int_350en", Max: 1},
	{Name: "int_scren", Max: 1},
	{Name: "backlight_on_tx_rx", Max: 3},
	{Name: "am_fix", Max: 1, Needs: needAMFix},
	{Name: "mic_bar", Max: 1},
	{Name: "battery_text", Max: 2},
	{Name: "live_dtmf_decoder", Max: 1},
}

func lookupSetting(name string) (Setting, bool) {
	for _, s := range SettingTable {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

// Settings decodes every scalar setting.
func (m *Model) Settings() ([]SettingValue, error) {
	features := m.Features()
	r := reader{img: m.img}
	values := make([]SettingValue, 0, len(SettingTable))
	for _, s := range SettingTable {
		values = append(values, SettingValue{
			Setting:   s,
			Value:     r.u32(memmap.Field(s.Name)),
			Supported: s.Needs == nil || s.Needs(features),
		})
	}
	if r.err != nil {
		return nil, r.err
	}
	return values, nil
}

// Setting decodes one setting by name.
func (m *Model) Setting(name string) (uint32, error) {
	s, ok := lookupSetting(name)
	if !ok {
		return 0, invalid("setting", name, "unknown")
	}
	r := reader{img: m.img}
	v := r.u32(memmap.Field(s.Name))
	return v, r.err
}

// SetSetting stores one setting after checking its range and that the
// firmware supports it.
func (m *Model) SetSetting(name string, v uint32) error {
	s, ok := lookupSetting(name)
	if !ok {
		return invalid("setting", name, "unknown")
	}
	if v > s.Max {
		return invalid(name, v, "above %d", s.Max)
	}
	if s.Needs != nil && !s.Needs(m.Features()) {
		return invalid(name, v, "not supported by the firmware")
	}
	w := writer{img: m.img}
	w.u32(memmap.Field(name), v)
	return w.err
}

// Package memmap declares the EEPROM layout of UV-K5 radios running
// egzumer firmware.
//
// Bitfields of the channel attribute table are declared LSB-first, every
// other group MSB-first, the way the bytes were reverse engineered. The
// map is a file format: images saved by older versions must still decode.
package memmap

import (
	"github.com/robotalks/uvk5.go/pkg/layout"
)

// Version of the layout.
const Version = 1

// Sizes and counts.
const (
	Size           = 0x2000
	ChannelCount   = 214
	UserChannels   = 200
	FirstVFO       = UserChannels
	FMPresetCount  = 20
	ContactCount   = 16
	ChannelNameLen = 16
	// NameDisplayLen is how many name characters the radio shows.
	NameDisplayLen = 10
)

// Array names.
const (
	Channels     = "channel"
	ChannelAttrs = "ch_attr"
	FMPresets    = "fm_preset"
	ChannelNames = "channel_name"
	DTMFContacts = "dtmf_contact"
)

// Region offsets.
const (
	ChannelBase     = 0x0000
	ChannelAttrBase = 0x0d60
	FMBase          = 0x0e40
	SettingsBase    = 0x0e70
	DTMFBase        = 0x0ed0
	ScanListBase    = 0x0f18
	HiddenBase      = 0x0f40
	ChannelNameBase = 0x0f50
	ContactBase     = 0x1c00
	CalibrationBase = 0x1e00
	CalibrationLen  = 0x018c
	BuildOptions    = 0x1ff0
)

// ChannelRecord is one 16 byte channel slot.
var ChannelRecord = layout.Record{
	Name: Channels,
	Size: 16,
	Fields: []layout.FieldSpec{
		layout.U32("freq", 0),
		layout.U32("offset", 4),
		layout.U8("rxcode", 8),
		layout.U8("txcode", 9),
		layout.MSB.Field("txcodeflag", 10, 0, 4),
		layout.MSB.Field("rxcodeflag", 10, 4, 4),
		layout.MSB.Field("modulation", 11, 0, 4),
		layout.MSB.Field("offset_dir", 11, 4, 4),
		layout.MSB.Flag("busy_lockout", 12, 3),
		layout.MSB.Field("txpower", 12, 4, 2),
		layout.MSB.Flag("bandwidth", 12, 6),
		layout.MSB.Flag("freq_reverse", 12, 7),
		layout.MSB.Field("dtmf_pttid", 13, 4, 3),
		layout.MSB.Flag("dtmf_decode", 13, 7),
		layout.U8("step", 14),
		layout.U8("scrambler", 15),
	},
}

// ChannelAttrRecord is the attribute byte of a user channel.
var ChannelAttrRecord = layout.Record{
	Name: ChannelAttrs,
	Size: 1,
	Fields: []layout.FieldSpec{
		layout.LSB.Field("band", 0, 0, 3),
		layout.LSB.Flag("is_free", 0, 3),
		layout.LSB.Field("compander", 0, 4, 2),
		layout.LSB.Flag("is_scanlist2", 0, 6),
		layout.LSB.Flag("is_scanlist1", 0, 7),
	},
}

// ContactRecord is a DTMF contact.
var ContactRecord = layout.Record{
	Name: DTMFContacts,
	Size: 16,
	Fields: []layout.FieldSpec{
		layout.Chars("name", 0, 8, 0x00),
		layout.Chars("number", 8, 3, 0xff),
		layout.ReservedBlock("unused", 11, 5),
	},
}

// Schema is the validated UV-K5 layout.
var Schema = newSchema().MustValidate()

// Field returns a top-level field, panicking on unknown names.
func Field(name string) layout.FieldSpec {
	return Schema.MustField(name)
}

// Array returns an array, panicking on unknown names.
func Array(name string) layout.Array {
	return Schema.MustArray(name)
}

func newSchema() *layout.Schema {
	s := &layout.Schema{
		Name:    "uvk5-egzumer",
		Version: Version,
		Size:    Size,
		Arrays: []layout.Array{
			{Record: ChannelRecord, Base: ChannelBase, Count: ChannelCount},
			{Record: ChannelAttrRecord, Base: ChannelAttrBase, Count: UserChannels},
			{Record: layout.Record{Name: FMPresets, Size: 2, Fields: []layout.FieldSpec{layout.U16("freq", 0)}}, Base: FMBase, Count: FMPresetCount},
			{Record: layout.Record{Name: ChannelNames, Size: ChannelNameLen, Fields: []layout.FieldSpec{layout.Chars("name", 0, ChannelNameLen, 0x00)}}, Base: ChannelNameBase, Count: UserChannels},
			{Record: ContactRecord, Base: ContactBase, Count: ContactCount},
		},
	}
	s.Fields = append(s.Fields, reservedFields()...)
	s.Fields = append(s.Fields, settingsFields()...)
	s.Fields = append(s.Fields, dtmfFields()...)
	s.Fields = append(s.Fields, hiddenFields()...)
	s.Fields = append(s.Fields, calibrationFields()...)
	s.Fields = append(s.Fields, buildOptionFields()...)
	return s
}

func reservedFields() []layout.FieldSpec {
	return []layout.FieldSpec{
		layout.ReservedBlock("reserved_ch_attr", 0x0e28, 0x18),
		layout.ReservedBlock("reserved_fm", 0x0e68, 8),
		layout.ReservedBlock("reserved_mr", 0x0e88, 8),
		layout.ReservedBlock("reserved_password", 0x0e9c, 4),
		layout.ReservedBlock("reserved_voice", 0x0ea3, 5),
		layout.ReservedBlock("reserved_alarm", 0x0ead, 3),
		layout.ReservedBlock("reserved_dtmf", 0x0edb, 5),
		layout.ReservedBlock("reserved_scanlist", 0x0f1f, 0x21),
		layout.ReservedBlock("reserved_names", 0x1bd0, 0x30),
		layout.ReservedBlock("unprogrammed", 0x1d00, 0x100),
	}
}

func settingsFields() []layout.FieldSpec {
	return []layout.FieldSpec{
		layout.U8("call_channel", 0x0e70),
		layout.U8("squelch", 0x0e71),
		layout.U8("max_talk_time", 0x0e72),
		layout.U8("noaa_autoscan", 0x0e73),
		layout.U8("key_lock", 0x0e74),
		layout.U8("vox_switch", 0x0e75),
		layout.U8("vox_level", 0x0e76),
		layout.U8("mic_gain", 0x0e77),
		layout.MSB.Field("backlight_min", 0x0e78, 0, 4),
		layout.MSB.Field("backlight_max", 0x0e78, 4, 4),
		layout.U8("channel_display_mode", 0x0e79),
		layout.U8("crossband", 0x0e7a),
		layout.U8("battery_save", 0x0e7b),
		layout.U8("dual_watch", 0x0e7c),
		layout.U8("backlight_time", 0x0e7d),
		layout.U8("ste", 0x0e7e),
		layout.U8("freq_mode_allowed", 0x0e7f),

		layout.U8("screen_channel_a", 0x0e80),
		layout.U8("mr_channel_a", 0x0e81),
		layout.U8("freq_channel_a", 0x0e82),
		layout.U8("screen_channel_b", 0x0e83),
		layout.U8("mr_channel_b", 0x0e84),
		layout.U8("freq_channel_b", 0x0e85),
		layout.U8("noaa_channel_a", 0x0e86),
		layout.U8("noaa_channel_b", 0x0e87),

		layout.MSB.Field("keym_longpress_action", 0x0e90, 0, 7),
		layout.MSB.Flag("button_beep", 0x0e90, 7),
		layout.U8("key1_shortpress_action", 0x0e91),
		layout.U8("key1_longpress_action", 0x0e92),
		layout.U8("key2_shortpress_action", 0x0e93),
		layout.U8("key2_longpress_action", 0x0e94),
		layout.U8("scan_resume_mode", 0x0e95),
		layout.U8("auto_keypad_lock", 0x0e96),
		layout.U8("power_on_dispmode", 0x0e97),
		layout.U32("password", 0x0e98),

		layout.U8("voice", 0x0ea0),
		layout.U8("s0_level", 0x0ea1),
		layout.U8("s9_level", 0x0ea2),

		layout.U8("alarm_mode", 0x0ea8),
		layout.U8("roger_beep", 0x0ea9),
		layout.U8("rp_ste", 0x0eaa),
		layout.U8("tx_vfo", 0x0eab),
		layout.U8("battery_type", 0x0eac),

		layout.Chars("logo_line1", 0x0eb0, 16, 0x00),
		layout.Chars("logo_line2", 0x0ec0, 16, 0x00),

		layout.U8("sl_default", 0x0f18),
		layout.U8("sl1_prior_enab", 0x0f19),
		layout.U8("sl1_prior_ch1", 0x0f1a),
		layout.U8("sl1_prior_ch2", 0x0f1b),
		layout.U8("sl2_prior_enab", 0x0f1c),
		layout.U8("sl2_prior_ch1", 0x0f1d),
		layout.U8("sl2_prior_ch2", 0x0f1e),
	}
}

func dtmfFields() []layout.FieldSpec {
	return []layout.FieldSpec{
		layout.U8("dtmf_side_tone", 0x0ed0),
		layout.Chars("dtmf_separate_code", 0x0ed1, 1, 0xff),
		layout.Chars("dtmf_group_call_code", 0x0ed2, 1, 0xff),
		layout.U8("dtmf_decode_response", 0x0ed3),
		layout.U8("dtmf_auto_reset_time", 0x0ed4),
		layout.U8("dtmf_preload_time", 0x0ed5),
		layout.U8("dtmf_first_code_persist_time", 0x0ed6),
		layout.U8("dtmf_hash_persist_time", 0x0ed7),
		layout.U8("dtmf_code_persist_time", 0x0ed8),
		layout.U8("dtmf_code_interval_time", 0x0ed9),
		layout.U8("dtmf_permit_remote_kill", 0x0eda),

		layout.Chars("dtmf_local_code", 0x0ee0, 3, 0xff),
		layout.ReservedBlock("reserved_local_code", 0x0ee3, 5),
		layout.Chars("dtmf_kill_code", 0x0ee8, 5, 0xff),
		layout.ReservedBlock("reserved_kill_code", 0x0eed, 3),
		layout.Chars("dtmf_revive_code", 0x0ef0, 5, 0xff),
		layout.ReservedBlock("reserved_revive_code", 0x0ef5, 3),
		layout.Chars("dtmf_up_code", 0x0ef8, 16, 0xff),
		layout.Chars("dtmf_down_code", 0x0f08, 16, 0xff),
	}
}

func hiddenFields() []layout.FieldSpec {
	return []layout.FieldSpec{
		layout.U8("int_flock", 0x0f40),
		layout.U8("int_350tx", 0x0f41),
		layout.U8("int_killed", 0x0f42),
		layout.U8("int_200tx", 0x0f43),
		layout.U8("int_500tx", 0x0f44),
		layout.U8("int_350en", 0x0f45),
		layout.U8("int_scren", 0x0f46),
		layout.MSB.Field("backlight_on_tx_rx", 0x0f47, 0, 2),
		layout.MSB.Flag("am_fix", 0x0f47, 2),
		layout.MSB.Flag("mic_bar", 0x0f47, 3),
		layout.MSB.Field("battery_text", 0x0f47, 4, 2),
		layout.MSB.Flag("live_dtmf_decoder", 0x0f47, 6),
		layout.ReservedBlock("reserved_hidden", 0x0f48, 8),
	}
}

// calibrationFields keeps the calibration tables opaque. They are
// interpreted by the model package.
func calibrationFields() []layout.FieldSpec {
	return []layout.FieldSpec{
		layout.Block("cal_squelch_band4_7", 0x1e00, 0x60),
		layout.Block("cal_squelch_band1_3", 0x1e60, 0x60),
		layout.Block("cal_rssi_band4_7", 0x1ec0, 8),
		layout.Block("cal_rssi_band1_3", 0x1ec8, 8),
		layout.Block("cal_txp", 0x1ed0, 7*16),
		layout.Block("cal_battery", 0x1f40, 16),
		layout.Block("cal_vox1", 0x1f50, 24),
		layout.Block("cal_vox0", 0x1f68, 24),
		layout.Block("cal_mic", 0x1f80, 8),
		layout.I16("cal_xtal_freq_low", 0x1f88),
		layout.U8("cal_volume_gain", 0x1f8a),
		layout.U8("cal_dac_gain", 0x1f8b),
	}
}

func buildOptionFields() []layout.FieldSpec {
	return []layout.FieldSpec{
		layout.MSB.Flag("enable_dtmf_calling", 0x1ff0, 0),
		layout.MSB.Flag("enable_pwron_password", 0x1ff0, 1),
		layout.MSB.Flag("enable_tx1750", 0x1ff0, 2),
		layout.MSB.Flag("enable_alarm", 0x1ff0, 3),
		layout.MSB.Flag("enable_vox", 0x1ff0, 4),
		layout.MSB.Flag("enable_voice", 0x1ff0, 5),
		layout.MSB.Flag("enable_noaa", 0x1ff0, 6),
		layout.MSB.Flag("enable_fmradio", 0x1ff0, 7),
		layout.MSB.Flag("enable_am_fix", 0x1ff1, 3),
		layout.MSB.Flag("enable_blmin_tmp_off", 0x1ff1, 4),
		layout.MSB.Flag("enable_raw_demodulators", 0x1ff1, 5),
		layout.MSB.Flag("enable_wide_rx", 0x1ff1, 6),
		layout.MSB.Flag("enable_flashlight", 0x1ff1, 7),
	}
}

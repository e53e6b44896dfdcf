package model

import "github.com/robotalks/uvk5.go/pkg/uvk5/memmap"

// FeatureFlags are the build options of the firmware that wrote the image.
type FeatureFlags struct {
	DTMFCalling     bool
	PowerOnPassword bool
	TX1750          bool
	Alarm           bool
	VOX             bool
	Voice           bool
	NOAA            bool
	FMRadio         bool
	AMFix           bool
	BacklightMinTmp bool
	RawDemodulators bool
	WideRX          bool
	Flashlight      bool
}

// Features decodes the build options. Erased memory reads as everything
// enabled.
func (m *Model) Features() FeatureFlags {
	r := reader{img: m.img}
	flag := func(name string) bool {
		return r.flag(memmap.Field(name))
	}
	return FeatureFlags{
		DTMFCalling:     flag("enable_dtmf_calling"),
		PowerOnPassword: flag("enable_pwron_password"),
		TX1750:          flag("enable_tx1750"),
		Alarm:           flag("enable_alarm"),
		VOX:             flag("enable_vox"),
		Voice:           flag("enable_voice"),
		NOAA:            flag("enable_noaa"),
		FMRadio:         flag("enable_fmradio"),
		AMFix:           flag("enable_am_fix"),
		BacklightMinTmp: flag("enable_blmin_tmp_off"),
		RawDemodulators: flag("enable_raw_demodulators"),
		WideRX:          flag("enable_wide_rx"),
		Flashlight:      flag("enable_flashlight"),
	}
}

// Names lists the enabled features.
func (f FeatureFlags) Names() []string {
	var names []string
	for _, feat := range []struct {
		name string
		on   bool
	}{
		{"DTMF_CALLING", f.DTMFCalling},
		{"PWRON_PASSWORD", f.PowerOnPassword},
		{"TX1750", f.TX1750},
		{"ALARM", f.Alarm},
		{"VOX", f.VOX},
		{"VOICE", f.Voice},
		{"NOAA", f.NOAA},
		{"FMRADIO", f.FMRadio},
		{"AM_FIX", f.AMFix},
		{"BLMIN_TMP_OFF", f.BacklightMinTmp},
		{"RAW_DEMODULATORS", f.RawDemodulators},
		{"WIDE_RX", f.WideRX},
		{"FLASHLIGHT", f.Flashlight},
	} {
		if feat.on {
			names = append(names, feat.name)
		}
	}
	return names
}

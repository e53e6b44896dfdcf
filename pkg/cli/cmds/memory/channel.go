package memory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
)

// channelView is the printed form of a channel.
type channelView struct {
	Slot       int    `json:"slot"`
	Number     string `json:"number"`
	Name       string `json:"name,omitempty"`
	Freq       string `json:"freq"`
	Offset     string `json:"offset,omitempty"`
	RxTone     string `json:"rx_tone"`
	TxTone     string `json:"tx_tone"`
	Mode       string `json:"mode"`
	Power      string `json:"power"`
	Narrow     bool   `json:"narrow"`
	Step       string `json:"step"`
	Scrambler  int    `json:"scrambler,omitempty"`
	Band       int    `json:"band"`
	ScanLists  string `json:"scan_lists,omitempty"`
	Free       bool   `json:"free,omitempty"`
	BusyLock   bool   `json:"busy_lockout,omitempty"`
	Reverse    bool   `json:"reverse,omitempty"`
	DTMFDecode bool   `json:"dtmf_decode,omitempty"`
}

func viewChannel(ch *model.Channel) channelView {
	v := channelView{
		Slot:       ch.Index,
		Number:     ch.Number(),
		Name:       ch.Name,
		Freq:       ch.Freq.String(),
		RxTone:     ch.RxTone.String(),
		TxTone:     ch.TxTone.String(),
		Mode:       ch.Modulation.String(),
		Power:      ch.Power.String(),
		Narrow:     ch.Narrow,
		Step:       "?",
		Scrambler:  ch.Scrambler,
		Band:       ch.Band + 1,
		Free:       ch.Free,
		BusyLock:   ch.BusyLockout,
		Reverse:    ch.Reverse,
		DTMFDecode: ch.DTMFDecode,
	}
	if ch.OffsetDir != model.OffsetNone {
		v.Offset = ch.OffsetDir.String() + ch.Offset.String()
	}
	if ch.Step >= 0 && ch.Step < len(model.Steps) {
		v.Step = formatKHz(model.Steps[ch.Step])
	}
	if ch.ScanList1 {
		v.ScanLists += "1"
	}
	if ch.ScanList2 {
		v.ScanLists += "2"
	}
	return v
}

func formatKHz(f model.Frequency) string {
	return strconv.FormatFloat(float64(f)/float64(model.KHz), 'f', -1, 64)
}

// parseSlot parses a 1-based channel number or a VFO name like "VFO3".
func parseSlot(s string) (int, error) {
	if upper := strings.ToUpper(s); strings.HasPrefix(upper, "VFO") {
		n, err := strconv.Atoi(upper[3:])
		if err != nil || n < 1 || n > memmap.ChannelCount-memmap.FirstVFO {
			return 0, fmt.Errorf("invalid VFO %q", s)
		}
		return memmap.FirstVFO + n - 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > memmap.UserChannels {
		return 0, fmt.Errorf("invalid channel %q, want 1-%d or VFO1-VFO%d",
			s, memmap.UserChannels, memmap.ChannelCount-memmap.FirstVFO)
	}
	return n - 1, nil
}

// newChannel returns the defaults of a freshly programmed slot.
func newChannel(slot int) *model.Channel {
	return &model.Channel{
		Index: slot,
		Power: model.PowerHigh,
		Step:  stepIndex(12500),
	}
}

func stepIndex(hz model.Frequency) int {
	for n, step := range model.Steps {
		if step == hz {
			return n
		}
	}
	return -1
}

// parseOffset parses a signed shift in MHz, "+0.6", "-5" or "0".
func parseOffset(s string) (model.OffsetDir, model.Frequency, error) {
	dir := model.OffsetPlus
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		dir, s = model.OffsetMinus, s[1:]
	}
	f, err := model.ParseFrequency(s)
	if err != nil {
		return 0, 0, err
	}
	if f == 0 {
		return model.OffsetNone, 0, nil
	}
	return dir, f, nil
}

func parseBool(key, s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: invalid value %q", key, s)
	}
	return v, nil
}

// applyChannelArgs sets channel properties from KEY=VALUE arguments. A
// bare KEY sets a boolean property.
func applyChannelArgs(ch *model.Channel, args []string) error {
	for _, arg := range args {
		key, val := arg, "true"
		if n := strings.IndexByte(arg, '='); n >= 0 {
			key, val = arg[:n], arg[n+1:]
		}
		var err error
		switch strings.ToLower(key) {
		case "name":
			ch.Name = val
		case "offset":
			ch.OffsetDir, ch.Offset, err = parseOffset(val)
		case "rx":
			ch.RxTone, err = model.ParseTone(val)
		case "tx":
			ch.TxTone, err = model.ParseTone(val)
		case "tone":
			if ch.TxTone, err = model.ParseTone(val); err == nil {
				ch.RxTone = ch.TxTone
			}
		case "mode":
			ch.Modulation, err = model.ParseModulation(val)
		case "power":
			ch.Power, err = model.ParsePower(val)
		case "narrow":
			ch.Narrow, err = parseBool(key, val)
		case "step":
			var khz float64
			if khz, err = strconv.ParseFloat(val, 64); err == nil {
				if ch.Step = stepIndex(model.Frequency(math.Round(khz * 1000))); ch.Step < 0 {
					err = fmt.Errorf("step: unsupported %s kHz", val)
				}
			}
		case "scrambler":
			ch.Scrambler, err = strconv.Atoi(val)
		case "compander":
			ch.Compander, err = strconv.Atoi(val)
		case "scan1":
			ch.ScanList1, err = parseBool(key, val)
		case "scan2":
			ch.ScanList2, err = parseBool(key, val)
		case "busy":
			ch.BusyLockout, err = parseBool(key, val)
		case "reverse":
			ch.Reverse, err = parseBool(key, val)
		case "dtmf":
			ch.DTMFDecode, err = parseBool(key, val)
		default:
			return fmt.Errorf("unknown property %q", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

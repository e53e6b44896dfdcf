package model

import (
	"fmt"

	"github.com/robotalks/uvk5.go/pkg/framework"
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

// Modulation of a channel.
type Modulation int

// Modulations. BYP and RAW need firmware built with raw demodulators.
const (
	ModFM Modulation = iota
	ModAM
	ModUSB
	ModBYP
	ModRAW
)

var modulationNames = []string{"FM", "AM", "USB", "BYP", "RAW"}

// String implements fmt.Stringer.
func (m Modulation) String() string {
	if m >= 0 && int(m) < len(modulationNames) {
		return modulationNames[m]
	}
	return fmt.Sprintf("mod(%d)", int(m))
}

// ParseModulation parses a modulation name.
func ParseModulation(s string) (Modulation, error) {
	n, err := lookupName(modulationNames, s)
	return Modulation(n), err
}

// OffsetDir is the repeater shift direction.
type OffsetDir int

// Offset directions.
const (
	OffsetNone OffsetDir = iota
	OffsetPlus
	OffsetMinus
)

var offsetDirNames = []string{"", "+", "-"}

// String implements fmt.Stringer.
func (d OffsetDir) String() string {
	if d >= 0 && int(d) < len(offsetDirNames) {
		return offsetDirNames[d]
	}
	return fmt.Sprintf("dir(%d)", int(d))
}

// Power is the transmit power level.
type Power int

// Power levels.
const (
	PowerLow Power = iota
	PowerMid
	PowerHigh
)

var powerNames = []string{"Low", "Mid", "High"}

// String implements fmt.Stringer.
func (p Power) String() string {
	if p >= 0 && int(p) < len(powerNames) {
		return powerNames[p]
	}
	return fmt.Sprintf("power(%d)", int(p))
}

// ParsePower parses a power level name.
func ParsePower(s string) (Power, error) {
	n, err := lookupName(powerNames, s)
	return Power(n), err
}

// PTTID selects when the DTMF id is sent.
type PTTID int

// PTT id modes.
const (
	PTTIDOff PTTID = iota
	PTTIDBegin
	PTTIDEnd
	PTTIDBoth
	PTTIDApollo
)

var pttidNames = []string{"OFF", "BOT", "EOT", "BOTH", "APOLLO"}

// String implements fmt.Stringer.
func (p PTTID) String() string {
	if p >= 0 && int(p) < len(pttidNames) {
		return pttidNames[p]
	}
	return fmt.Sprintf("pttid(%d)", int(p))
}

// Compander modes.
const (
	CompanderOff = iota
	CompanderTX
	CompanderRX
	CompanderTXRX
)

// MaxScrambler is the highest scrambler setting, 0 is off.
const MaxScrambler = 10

// Steps lists the tuning steps in Hz by step index.
var Steps = []Frequency{
	2500, 5000, 6250, 10000, 12500, 25000, 8330, 10,
	50, 100, 250, 500, 1000, 1250, 9000, 15000,
	20000, 30000, 50000, 100000, 125000, 200000, 250000, 500000,
}

// Channel is the semantic view of one memory slot. Slots 0-199 are user
// channels, 200-213 hold the VFO state per band.
type Channel struct {
	Index       int
	Name        string
	Freq        Frequency
	Offset      Frequency
	OffsetDir   OffsetDir
	RxTone      Tone
	TxTone      Tone
	Modulation  Modulation
	Power       Power
	Narrow      bool
	BusyLockout bool
	Reverse     bool
	PTTID       PTTID
	DTMFDecode  bool
	Step        int
	Scrambler   int

	// Attributes, user channels only.
	Band      int
	Free      bool
	Compander int
	ScanList1 bool
	ScanList2 bool
}

// IsVFO tells whether the slot is a VFO rather than a user channel.
func (c *Channel) IsVFO() bool {
	return c.Index >= memmap.FirstVFO
}

// Blank tells whether the frequency was never programmed.
func (c *Channel) Blank() bool {
	return c.Freq == 0 || c.Freq == fromRaw(blankRaw)
}

// TxFreq returns the transmit frequency after the repeater shift.
func (c *Channel) TxFreq() Frequency {
	switch c.OffsetDir {
	case OffsetPlus:
		return c.Freq + c.Offset
	case OffsetMinus:
		if c.Offset > c.Freq {
			return 0
		}
		return c.Freq - c.Offset
	}
	return c.Freq
}

// Number returns the 1-based channel number shown by the radio, or the
// VFO name.
func (c *Channel) Number() string {
	if c.IsVFO() {
		return fmt.Sprintf("VFO%d", c.Index-memmap.FirstVFO+1)
	}
	return fmt.Sprintf("%d", c.Index+1)
}

// Validate checks every value against what the radio accepts.
func (c *Channel) Validate(bands Bands, features FeatureFlags) error {
	if c.Index < 0 || c.Index >= memmap.ChannelCount {
		return invalid("channel", c.Index, "no such slot")
	}
	var errs framework.AggregatedError
	field := func(name string) string {
		return fmt.Sprintf("channel[%d].%s", c.Index, name)
	}
	if _, ok := c.Freq.raw(); !ok {
		errs.Add(invalid(field("freq"), c.Freq, "not representable in 10 Hz units"))
	} else if _, ok := bands.Find(c.Freq); !ok {
		errs.Add(invalid(field("freq"), c.Freq, "outside every band"))
	}
	_, offsetOK := c.Offset.raw()
	if !offsetOK {
		errs.Add(invalid(field("offset"), c.Offset, "not representable in 10 Hz units"))
	}
	switch {
	case c.OffsetDir < OffsetNone || c.OffsetDir > OffsetMinus:
		errs.Add(invalid(field("offset_dir"), int(c.OffsetDir), "unknown direction"))
	case !offsetOK || len(errs.Errors) > 0:
	case c.OffsetDir == OffsetMinus && c.Offset >= c.Freq:
		errs.Add(invalid(field("offset"), c.Offset, "shifts transmit frequency below 0 Hz"))
	case !bands.CanTransmit(c.TxFreq()):
		errs.Add(invalid(field("tx_freq"), c.TxFreq(), "outside every transmit range"))
	}
	if err := c.RxTone.Validate(); err != nil {
		errs.Add(invalid(field("rx_tone"), c.RxTone, err.Error()))
	}
	if err := c.TxTone.Validate(); err != nil {
		errs.Add(invalid(field("tx_tone"), c.TxTone, err.Error()))
	}
	switch {
	case c.Modulation < ModFM || c.Modulation > ModRAW:
		errs.Add(invalid(field("modulation"), int(c.Modulation), "unknown modulation"))
	case c.Modulation >= ModBYP && !features.RawDemodulators:
		errs.Add(invalid(field("modulation"), c.Modulation, "needs firmware with raw demodulators"))
	}
	if c.Power < PowerLow || c.Power > PowerHigh {
		errs.Add(invalid(field("txpower"), int(c.Power), "unknown power level"))
	}
	if c.PTTID < PTTIDOff || c.PTTID > PTTIDApollo {
		errs.Add(invalid(field("dtmf_pttid"), int(c.PTTID), "unknown PTT id mode"))
	}
	if c.Step < 0 || c.Step >= len(Steps) {
		errs.Add(invalid(field("step"), c.Step, "unknown step"))
	}
	if c.Scrambler < 0 || c.Scrambler > MaxScrambler {
		errs.Add(invalid(field("scrambler"), c.Scrambler, "above %d", MaxScrambler))
	}
	if c.IsVFO() {
		if c.Name != "" {
			errs.Add(invalid(field("name"), c.Name, "VFO slots have no name"))
		}
		if c.Free {
			errs.Add(invalid(field("is_free"), c.Free, "VFO slots can't be freed"))
		}
		return errs.Aggregate()
	}
	if c.Compander < CompanderOff || c.Compander > CompanderTXRX {
		errs.Add(invalid(field("compander"), c.Compander, "unknown compander mode"))
	}
	if c.Band < 0 || c.Band >= MaxBands {
		errs.Add(invalid(field("band"), c.Band, "unknown band"))
	}
	if err := checkText(c.Name, memmap.NameDisplayLen, ""); err != nil {
		errs.Add(invalid(field("name"), c.Name, err.Error()))
	}
	return errs.Aggregate()
}

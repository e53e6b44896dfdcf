package model

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Band is an inclusive receive frequency range with the transmit range
// allowed in it. TxHigh 0 makes the band receive only.
type Band struct {
	Low    Frequency
	High   Frequency
	TxLow  Frequency
	TxHigh Frequency
}

func band(low, high Frequency) Band {
	return Band{Low: low, High: high, TxLow: low, TxHigh: high}
}

// Contains tests whether f is in the band.
func (b Band) Contains(f Frequency) bool {
	return f >= b.Low && f <= b.High
}

// CanTransmit tests whether transmitting on f is allowed in the band.
func (b Band) CanTransmit(f Frequency) bool {
	return b.TxHigh != 0 && f >= b.TxLow && f <= b.TxHigh
}

// String implements fmt.Stringer.
func (b Band) String() string {
	s := b.Low.String() + "-" + b.High.String()
	if b.TxHigh == 0 {
		return s + " rx only"
	}
	return s + " tx " + b.TxLow.String() + "-" + b.TxHigh.String()
}

// Bands are indexed by the band number stored in channel attributes.
type Bands []Band

// MaxBands is the number of bands a channel attribute can select.
const MaxBands = 7

// DefaultBands is the egzumer firmware band plan with wide receive and
// transmit unlocked on every band, as the firmware's "all" TX lock mode.
var DefaultBands = Bands{
	band(18*MHz, 108*MHz),
	band(108*MHz, 136*MHz+999990),
	band(137*MHz, 173*MHz+999990),
	band(174*MHz, 349*MHz+999990),
	band(350*MHz, 399*MHz+999990),
	band(400*MHz, 469*MHz+999990),
	band(470*MHz, 1300*MHz),
}

// Find returns the first band containing f.
func (b Bands) Find(f Frequency) (int, bool) {
	for i, band := range b {
		if band.Contains(f) {
			return i, true
		}
	}
	return -1, false
}

// CanTransmit tests whether f lies in the transmit range of any band.
func (b Bands) CanTransmit(f Frequency) bool {
	for _, band := range b {
		if band.CanTransmit(f) {
			return true
		}
	}
	return false
}

// LoadBands reads a band plan from an INI source (file name or []byte).
// Each band is a section [band.N] with keys low and high in MHz. The
// transmit range of band N is the section [tx.N] with the same keys, or
// "enabled = false" for a receive only band; without it the band
// transmits over its receive range. Bands not mentioned keep their
// default ranges.
func LoadBands(source interface{}) (Bands, error) {
	cfg, err := ini.Load(source)
	if err != nil {
		return nil, err
	}
	bands := append(Bands(nil), DefaultBands...)
	for i := range bands {
		b := bands[i]
		name := fmt.Sprintf("band.%d", i)
		if sec, err := cfg.GetSection(name); err == nil {
			if err := loadRange(sec, &b.Low, &b.High); err != nil {
				return nil, err
			}
			b.TxLow, b.TxHigh = b.Low, b.High
		}
		if sec, err := cfg.GetSection(fmt.Sprintf("tx.%d", i)); err == nil {
			enabled := true
			if sec.HasKey("enabled") {
				if enabled, err = sec.Key("enabled").Bool(); err != nil {
					return nil, fmt.Errorf("[%s] enabled: %w", sec.Name(), err)
				}
			}
			if !enabled {
				b.TxLow, b.TxHigh = 0, 0
			} else if err := loadRange(sec, &b.TxLow, &b.TxHigh); err != nil {
				return nil, err
			}
		}
		bands[i] = b
	}
	for _, sec := range cfg.Sections() {
		var n int
		for _, format := range []string{"band.%d", "tx.%d"} {
			if _, err := fmt.Sscanf(sec.Name(), format, &n); err == nil && (n < 0 || n >= len(bands)) {
				return nil, fmt.Errorf("[%s] unknown band, want 0-%d", sec.Name(), len(bands)-1)
			}
		}
	}
	return bands, nil
}

func loadRange(sec *ini.Section, low, high *Frequency) error {
	for _, k := range []struct {
		key string
		val *Frequency
	}{{"low", low}, {"high", high}} {
		if !sec.HasKey(k.key) {
			continue
		}
		f, err := ParseFrequency(sec.Key(k.key).String())
		if err != nil {
			return fmt.Errorf("[%s] %s: %w", sec.Name(), k.key, err)
		}
		*k.val = f
	}
	if *low > *high {
		return fmt.Errorf("[%s] low %v above high %v", sec.Name(), *low, *high)
	}
	return nil
}

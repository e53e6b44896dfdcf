package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Frequency in Hz.
type Frequency uint64

// Frequency units.
const (
	Hz  Frequency = 1
	KHz           = 1000 * Hz
	MHz           = 1000 * KHz
)

// rawUnit is the resolution of frequencies stored in channel records.
const rawUnit = 10 * Hz

// ParseFrequency parses a value in MHz, e.g. "145.525".
func ParseFrequency(s string) (Frequency, error) {
	s = strings.TrimSpace(s)
	whole, frac := s, ""
	if n := strings.IndexByte(s, '.'); n >= 0 {
		whole, frac = s[:n], s[n+1:]
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}
	if len(frac) > 6 {
		return 0, fmt.Errorf("invalid frequency %q: below 1 Hz resolution", s)
	}
	var mhz uint64
	if whole != "" {
		v, err := strconv.ParseUint(whole, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid frequency %q", s)
		}
		mhz = v
	}
	var hz uint64
	if frac != "" {
		v, err := strconv.ParseUint(frac+strings.Repeat("0", 6-len(frac)), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid frequency %q", s)
		}
		hz = v
	}
	return Frequency(mhz)*MHz + Frequency(hz), nil
}

// MHz returns the frequency in MHz.
func (f Frequency) MHz() float64 {
	return float64(f) / float64(MHz)
}

// String formats the frequency in MHz with 10 Hz resolution.
func (f Frequency) String() string {
	return fmt.Sprintf("%d.%05d", f/MHz, (f%MHz)/rawUnit)
}

// fromRaw converts a channel record value.
func fromRaw(v uint32) Frequency {
	return Frequency(v) * rawUnit
}

// raw converts to the channel record value.
func (f Frequency) raw() (uint32, bool) {
	if f%rawUnit != 0 || f/rawUnit > math.MaxUint32 {
		return 0, false
	}
	return uint32(f / rawUnit), true
}

// blankRaw is an erased frequency.
const blankRaw = 0xffffffff

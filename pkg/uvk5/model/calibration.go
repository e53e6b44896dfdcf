package model

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lunixbochs/struc"

	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

var calOptions = &struc.Options{Order: binary.LittleEndian}

// SquelchLevels holds one threshold per squelch level 0-9.
type SquelchLevels struct {
	Levels   [10]uint8
	Reserved [6]uint8
}

// SquelchCal is the squelch calibration of one band group.
type SquelchCal struct {
	OpenRSSI    SquelchLevels
	CloseRSSI   SquelchLevels
	OpenNoise   SquelchLevels
	CloseNoise  SquelchLevels
	OpenGlitch  SquelchLevels
	CloseGlitch SquelchLevels
}

// RSSICal maps S-meter readings of one band group.
type RSSICal struct {
	Levels [4]uint16
}

// TxPowerCal holds the PA bias per power level at three points of a band.
type TxPowerCal struct {
	Low      [3]uint8
	Mid      [3]uint8
	High     [3]uint8
	Reserved [7]uint8
}

// CalibrationTable is the factory calibration. The radio interprets it;
// here it's only decoded, range checked by type, and written back.
type CalibrationTable struct {
	SquelchBand4To7 SquelchCal
	SquelchBand1To3 SquelchCal
	RSSIBand4To7    RSSICal
	RSSIBand1To3    RSSICal
	TxPower         [7]TxPowerCal
	Battery         [6]uint16
	Reserved1       [4]uint8
	VOX1            [10]uint16
	Reserved2       [4]uint8
	VOX0            [10]uint16
	Reserved3       [4]uint8
	MicLevel        [5]uint8
	Reserved4       [3]uint8
	XtalFreqLow     int16
	VolumeGain      uint8
	DACGain         uint8
}

// Calibration decodes the calibration region.
func (m *Model) Calibration() (*CalibrationTable, error) {
	b, err := m.img.Slice(memmap.CalibrationBase, memmap.CalibrationLen)
	if err != nil {
		return nil, err
	}
	cal := &CalibrationTable{}
	if err := struc.UnpackWithOptions(bytes.NewReader(b), cal, calOptions); err != nil {
		return nil, fmt.Errorf("decode calibration: %w", err)
	}
	return cal, nil
}

// SetCalibration encodes cal into the calibration region. It only reaches
// the radio when calibration upload is enabled.
func (m *Model) SetCalibration(cal *CalibrationTable) error {
	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, cal, calOptions); err != nil {
		return fmt.Errorf("encode calibration: %w", err)
	}
	if buf.Len() != memmap.CalibrationLen {
		return fmt.Errorf("encode calibration: %d bytes, want %d", buf.Len(), memmap.CalibrationLen)
	}
	_, err := m.img.WriteAt(buf.Bytes(), memmap.CalibrationBase)
	return err
}

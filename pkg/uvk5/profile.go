package uvk5

import (
	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/link"
)

// Memory geometry of the UV-K5 EEPROM.
const (
	MemSize   = 0x2000
	ProgSize  = 0x1d00
	CalStart  = 0x1e00
	CalSize   = MemSize - CalStart
	BlockSize = 0x80
	Baud      = link.BaudRate
)

// Profile describes the memory geometry of one radio variant.
type Profile struct {
	Name      string
	MemSize   int
	ProgSize  int
	CalStart  int
	BlockSize int
}

// UVK5 is the profile of the UV-K5/K6 running egzumer firmware.
var UVK5 = Profile{
	Name:      "UV-K5 (egzumer)",
	MemSize:   MemSize,
	ProgSize:  ProgSize,
	CalStart:  CalStart,
	BlockSize: BlockSize,
}

// UploadRegions returns what an upload writes. Calibration data is left
// alone unless asked for.
func (p Profile) UploadRegions(calibration bool) []clone.Region {
	regions := []clone.Region{{Offset: 0, Length: p.ProgSize}}
	if calibration {
		regions = append(regions, clone.Region{Offset: p.CalStart, Length: p.MemSize - p.CalStart})
	}
	return regions
}

// EngineOptions returns the clone options matching the profile.
func (p Profile) EngineOptions(calibration bool) []clone.Option {
	return []clone.Option{
		clone.WithBlockSize(p.BlockSize),
		clone.WithRegions(p.UploadRegions(calibration)...),
	}
}

// NewEngine creates a sync engine for the radio using the profile geometry.
// Extra options are applied after the profile ones.
func (p Profile) NewEngine(r *Radio, calibration bool, opts ...clone.Option) *clone.Engine {
	return clone.New(r, p.MemSize, append(p.EngineOptions(calibration), opts...)...)
}

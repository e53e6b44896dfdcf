package model

import (
	"fmt"

	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/framework"
	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

// Model is the semantic view of one memory image.
type Model struct {
	img   *layout.Image
	bands Bands
}

// Option configures a Model.
type Option func(*Model)

// WithBands replaces the default band plan.
func WithBands(bands Bands) Option {
	return func(m *Model) {
		if len(bands) > 0 {
			m.bands = bands
		}
	}
}

// New wraps img, which must be a full UV-K5 image.
func New(img *layout.Image, opts ...Option) (*Model, error) {
	if img.Len() != memmap.Size {
		return nil, fmt.Errorf("image size %d, want %d", img.Len(), memmap.Size)
	}
	m := &Model{img: img, bands: DefaultBands}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Image returns the wrapped image.
func (m *Model) Image() *layout.Image {
	return m.img
}

// Bands returns the band plan in use.
func (m *Model) Bands() Bands {
	return m.bands
}

func checkIndex(i int) error {
	if i < 0 || i >= memmap.ChannelCount {
		return invalid("channel", i, "no such slot, want 0-%d", memmap.ChannelCount-1)
	}
	return nil
}

// Channel decodes slot i.
func (m *Model) Channel(i int) (*Channel, error) {
	if err := checkIndex(i); err != nil {
		return nil, err
	}
	r := reader{img: m.img}
	ch := &Channel{
		Index:       i,
		Freq:        fromRaw(r.u32(elem(channelArray, i, "freq"))),
		Offset:      fromRaw(r.u32(elem(channelArray, i, "offset"))),
		OffsetDir:   OffsetDir(r.num(elem(channelArray, i, "offset_dir"))),
		RxTone:      Tone{Kind: ToneKind(r.num(elem(channelArray, i, "rxcodeflag"))), Index: r.num(elem(channelArray, i, "rxcode"))},
		TxTone:      Tone{Kind: ToneKind(r.num(elem(channelArray, i, "txcodeflag"))), Index: r.num(elem(channelArray, i, "txcode"))},
		Modulation:  Modulation(r.num(elem(channelArray, i, "modulation"))),
		Power:       Power(r.num(elem(channelArray, i, "txpower"))),
		Narrow:      r.flag(elem(channelArray, i, "bandwidth")),
		BusyLockout: r.flag(elem(channelArray, i, "busy_lockout")),
		Reverse:     r.flag(elem(channelArray, i, "freq_reverse")),
		PTTID:       PTTID(r.num(elem(channelArray, i, "dtmf_pttid"))),
		DTMFDecode:  r.flag(elem(channelArray, i, "dtmf_decode")),
		Step:        r.num(elem(channelArray, i, "step")),
		Scrambler:   r.num(elem(channelArray, i, "scrambler")),
	}
	if !ch.IsVFO() {
		ch.Name = r.text(elem(nameArray, i, "name"))
		ch.Band = r.num(elem(attrArray, i, "band"))
		ch.Free = r.flag(elem(attrArray, i, "is_free"))
		ch.Compander = r.num(elem(attrArray, i, "compander"))
		ch.ScanList1 = r.flag(elem(attrArray, i, "is_scanlist1"))
		ch.ScanList2 = r.flag(elem(attrArray, i, "is_scanlist2"))
	}
	if r.err != nil {
		return nil, r.err
	}
	return ch, nil
}

// Channels decodes every slot.
func (m *Model) Channels() ([]*Channel, error) {
	chs := make([]*Channel, 0, memmap.ChannelCount)
	for i := 0; i < memmap.ChannelCount; i++ {
		ch, err := m.Channel(i)
		if err != nil {
			return nil, err
		}
		chs = append(chs, ch)
	}
	return chs, nil
}

// ActiveChannels returns user channels not marked free and VFO slots
// holding a frequency.
func (m *Model) ActiveChannels() ([]*Channel, error) {
	chs, err := m.Channels()
	if err != nil {
		return nil, err
	}
	active := chs[:0]
	for _, ch := range chs {
		if ch.IsVFO() && ch.Blank() || !ch.IsVFO() && ch.Free {
			continue
		}
		active = append(active, ch)
	}
	return active, nil
}

// SetChannel validates ch and stores it in slot ch.Index. The band of a
// user channel follows its frequency and the slot is marked in use.
func (m *Model) SetChannel(ch *Channel) error {
	c := *ch
	if !c.IsVFO() {
		c.Free = false
		if band, ok := m.bands.Find(c.Freq); ok {
			c.Band = band
		}
	}
	if err := c.Validate(m.bands, m.Features()); err != nil {
		return err
	}
	freq, _ := c.Freq.raw()
	offset, _ := c.Offset.raw()
	rxFlag, rxCode := c.RxTone.raw()
	txFlag, txCode := c.TxTone.raw()
	i := c.Index

	scratch := m.img.Clone()
	w := writer{img: scratch}
	w.u32(elem(channelArray, i, "freq"), freq)
	w.u32(elem(channelArray, i, "offset"), offset)
	w.num(elem(channelArray, i, "offset_dir"), int(c.OffsetDir))
	w.u32(elem(channelArray, i, "rxcodeflag"), rxFlag)
	w.u32(elem(channelArray, i, "rxcode"), rxCode)
	w.u32(elem(channelArray, i, "txcodeflag"), txFlag)
	w.u32(elem(channelArray, i, "txcode"), txCode)
	w.num(elem(channelArray, i, "modulation"), int(c.Modulation))
	w.num(elem(channelArray, i, "txpower"), int(c.Power))
	w.flag(elem(channelArray, i, "bandwidth"), c.Narrow)
	w.flag(elem(channelArray, i, "busy_lockout"), c.BusyLockout)
	w.flag(elem(channelArray, i, "freq_reverse"), c.Reverse)
	w.num(elem(channelArray, i, "dtmf_pttid"), int(c.PTTID))
	w.flag(elem(channelArray, i, "dtmf_decode"), c.DTMFDecode)
	w.num(elem(channelArray, i, "step"), c.Step)
	w.num(elem(channelArray, i, "scrambler"), c.Scrambler)
	if !c.IsVFO() {
		w.text(elem(nameArray, i, "name"), c.Name)
		w.num(elem(attrArray, i, "band"), c.Band)
		w.flag(elem(attrArray, i, "is_free"), false)
		w.num(elem(attrArray, i, "compander"), c.Compander)
		w.flag(elem(attrArray, i, "is_scanlist1"), c.ScanList1)
		w.flag(elem(attrArray, i, "is_scanlist2"), c.ScanList2)
	}
	if w.err != nil {
		return w.err
	}
	return m.img.CopyFrom(scratch)
}

// EraseChannel clears user channel i: the record is erased to 0xff, the
// name emptied and the attribute marked free.
func (m *Model) EraseChannel(i int) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if i >= memmap.FirstVFO {
		return invalid("channel", i, "VFO slots can't be erased")
	}
	off, err := channelArray.ElementOffset(i)
	if err != nil {
		return err
	}
	erased := make([]byte, channelArray.Size)
	for n := range erased {
		erased[n] = 0xff
	}
	scratch := m.img.Clone()
	if _, err := scratch.WriteAt(erased, int64(off)); err != nil {
		return err
	}
	if off, err = attrArray.ElementOffset(i); err != nil {
		return err
	}
	if _, err := scratch.WriteAt([]byte{0xff}, int64(off)); err != nil {
		return err
	}
	w := writer{img: scratch}
	w.text(elem(nameArray, i, "name"), "")
	if w.err != nil {
		return w.err
	}
	return m.img.CopyFrom(scratch)
}

// Validate checks every channel in use along with the other editable
// tables. All problems are reported in one aggregated error.
func (m *Model) Validate() error {
	features := m.Features()
	var errs framework.AggregatedError
	chs, err := m.Channels()
	if err != nil {
		return err
	}
	for _, ch := range chs {
		if ch.IsVFO() && ch.Blank() || !ch.IsVFO() && ch.Free {
			continue
		}
		errs.Merge(ch.Validate(m.bands, features))
	}
	errs.Merge(m.validateFMPresets())
	errs.Merge(m.validateContacts())
	errs.Merge(m.validateScanLists())
	return errs.Aggregate()
}

// Validator returns a clone.Validator checking images with the band plan.
func Validator(opts ...Option) clone.Validator {
	return clone.ValidateFunc(func(img *layout.Image) error {
		m, err := New(img, opts...)
		if err != nil {
			return err
		}
		return m.Validate()
	})
}

package model

import (
	"fmt"

	"github.com/robotalks/uvk5.go/pkg/framework"
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

// DTMF character sets.
const (
	DTMFChars      = "0123456789ABCD*#"
	DTMFSeparators = "ABCD*#"
)

// DTMFSettings holds the DTMF signalling options and codes.
type DTMFSettings struct {
	SideTone             bool
	SeparateCode         string
	GroupCallCode        string
	DecodeResponse       int
	AutoResetTime        int
	PreloadTime          int
	FirstCodePersistTime int
	HashPersistTime      int
	CodePersistTime      int
	CodeIntervalTime     int
	PermitRemoteKill     bool
	LocalCode            string
	KillCode             string
	ReviveCode           string
	UpCode               string
	DownCode             string
}

// DTMF decodes the DTMF settings.
func (m *Model) DTMF() (*DTMFSettings, error) {
	r := reader{img: m.img}
	f := memmap.Field
	d := &DTMFSettings{
		SideTone:             r.flag(f("dtmf_side_tone")),
		SeparateCode:         r.text(f("dtmf_separate_code")),
		GroupCallCode:        r.text(f("dtmf_group_call_code")),
		DecodeResponse:       r.num(f("dtmf_decode_response")),
		AutoResetTime:        r.num(f("dtmf_auto_reset_time")),
		PreloadTime:          r.num(f("dtmf_preload_time")),
		FirstCodePersistTime: r.num(f("dtmf_first_code_persist_time")),
		HashPersistTime:      r.num(f("dtmf_hash_persist_time")),
		CodePersistTime:      r.num(f("dtmf_code_persist_time")),
		CodeIntervalTime:     r.num(f("dtmf_code_interval_time")),
		PermitRemoteKill:     r.flag(f("dtmf_permit_remote_kill")),
		LocalCode:            r.text(f("dtmf_local_code")),
		KillCode:             r.text(f("dtmf_kill_code")),
		ReviveCode:           r.text(f("dtmf_revive_code")),
		UpCode:               r.text(f("dtmf_up_code")),
		DownCode:             r.text(f("dtmf_down_code")),
	}
	if r.err != nil {
		return nil, r.err
	}
	return d, nil
}

// Validate checks codes and timings. Times are in the radio's units
// (seconds for auto reset, 10 ms for the others).
func (d *DTMFSettings) Validate() error {
	var errs framework.AggregatedError
	text := func(name, s string, min, max int, charset string) {
		if len(s) < min {
			errs.Add(invalid("dtmf."+name, s, "shorter than %d characters", min))
			return
		}
		if err := checkText(s, max, charset); err != nil {
			errs.Add(invalid("dtmf."+name, s, err.Error()))
		}
	}
	text("separate_code", d.SeparateCode, 1, 1, DTMFSeparators)
	text("group_call_code", d.GroupCallCode, 1, 1, DTMFSeparators)
	text("local_code", d.LocalCode, 3, 3, DTMFChars)
	text("kill_code", d.KillCode, 5, 5, DTMFChars)
	text("revive_code", d.ReviveCode, 5, 5, DTMFChars)
	text("up_code", d.UpCode, 1, 16, DTMFChars)
	text("down_code", d.DownCode, 1, 16, DTMFChars)

	number := func(name string, v, min, max int) {
		if v < min || v > max {
			errs.Add(invalid("dtmf."+name, v, "outside %d-%d", min, max))
		}
	}
	number("decode_response", d.DecodeResponse, 0, 3)
	number("auto_reset_time", d.AutoResetTime, 5, 60)
	number("preload_time", d.PreloadTime, 3, 99)
	number("first_code_persist_time", d.FirstCodePersistTime, 3, 99)
	number("hash_persist_time", d.HashPersistTime, 3, 99)
	number("code_persist_time", d.CodePersistTime, 3, 99)
	number("code_interval_time", d.CodeIntervalTime, 3, 99)
	return errs.Aggregate()
}

// SetDTMF validates and stores the DTMF settings.
func (m *Model) SetDTMF(d *DTMFSettings) error {
	if err := d.Validate(); err != nil {
		return err
	}
	scratch := m.img.Clone()
	w := writer{img: scratch}
	f := memmap.Field
	w.flag(f("dtmf_side_tone"), d.SideTone)
	w.text(f("dtmf_separate_code"), d.SeparateCode)
	w.text(f("dtmf_group_call_code"), d.GroupCallCode)
	w.num(f("dtmf_decode_response"), d.DecodeResponse)
	w.num(f("dtmf_auto_reset_time"), d.AutoResetTime)
	w.num(f("dtmf_preload_time"), d.PreloadTime)
	w.num(f("dtmf_first_code_persist_time"), d.FirstCodePersistTime)
	w.num(f("dtmf_hash_persist_time"), d.HashPersistTime)
	w.num(f("dtmf_code_persist_time"), d.CodePersistTime)
	w.num(f("dtmf_code_interval_time"), d.CodeIntervalTime)
	w.flag(f("dtmf_permit_remote_kill"), d.PermitRemoteKill)
	w.text(f("dtmf_local_code"), d.LocalCode)
	w.text(f("dtmf_kill_code"), d.KillCode)
	w.text(f("dtmf_revive_code"), d.ReviveCode)
	w.text(f("dtmf_up_code"), d.UpCode)
	w.text(f("dtmf_down_code"), d.DownCode)
	if w.err != nil {
		return w.err
	}
	return m.img.CopyFrom(scratch)
}

// Contact is a DTMF contact. An empty name means the slot is unused.
type Contact struct {
	Name   string
	Number string
}

// Empty tells whether the slot is unused.
func (c Contact) Empty() bool {
	return c.Name == ""
}

// Validate checks the contact fits its slot.
func (c Contact) Validate(i int) error {
	if c.Empty() {
		if c.Number != "" {
			return invalid(fmt.Sprintf("contact[%d].name", i), c.Name, "is required with a number")
		}
		return nil
	}
	var errs framework.AggregatedError
	if err := checkText(c.Name, 8, ""); err != nil {
		errs.Add(invalid(fmt.Sprintf("contact[%d].name", i), c.Name, err.Error()))
	}
	if len(c.Number) != 3 {
		errs.Add(invalid(fmt.Sprintf("contact[%d].number", i), c.Number, "must be 3 characters"))
	} else if err := checkText(c.Number, 3, DTMFChars); err != nil {
		errs.Add(invalid(fmt.Sprintf("contact[%d].number", i), c.Number, err.Error()))
	}
	return errs.Aggregate()
}

// Contacts decodes the DTMF contact list.
func (m *Model) Contacts() ([]Contact, error) {
	r := reader{img: m.img}
	contacts := make([]Contact, memmap.ContactCount)
	for i := range contacts {
		contacts[i].Name = r.text(elem(contactArray, i, "name"))
		if contacts[i].Name != "" {
			contacts[i].Number = r.text(elem(contactArray, i, "number"))
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return contacts, nil
}

// SetContact validates and stores contact i.
func (m *Model) SetContact(i int, c Contact) error {
	if i < 0 || i >= memmap.ContactCount {
		return invalid("contact", i, "no such slot, want 0-%d", memmap.ContactCount-1)
	}
	if err := c.Validate(i); err != nil {
		return err
	}
	scratch := m.img.Clone()
	w := writer{img: scratch}
	w.text(elem(contactArray, i, "name"), c.Name)
	w.text(elem(contactArray, i, "number"), c.Number)
	if w.err != nil {
		return w.err
	}
	return m.img.CopyFrom(scratch)
}

func (m *Model) validateContacts() error {
	contacts, err := m.Contacts()
	if err != nil {
		return err
	}
	var errs framework.AggregatedError
	for i, c := range contacts {
		errs.Merge(c.Validate(i))
	}
	return errs.Aggregate()
}

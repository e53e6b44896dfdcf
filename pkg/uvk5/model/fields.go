package model

import (
	"fmt"
	"strings"

	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/uvk5/memmap"
)

var (
	channelArray = memmap.Array(memmap.Channels)
	attrArray    = memmap.Array(memmap.ChannelAttrs)
	nameArray    = memmap.Array(memmap.ChannelNames)
	fmArray      = memmap.Array(memmap.FMPresets)
	contactArray = memmap.Array(memmap.DTMFContacts)
)

// elem returns field name of element i. The index is checked by callers.
func elem(a layout.Array, i int, name string) layout.FieldSpec {
	f, err := a.Field(i, name)
	if err != nil {
		panic(err)
	}
	return f
}

// reader decodes a sequence of fields and keeps the first error.
type reader struct {
	img *layout.Image
	err error
}

func (r *reader) u32(f layout.FieldSpec) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := layout.DecodeUint(r.img, f)
	r.err = err
	return v
}

func (r *reader) num(f layout.FieldSpec) int {
	return int(r.u32(f))
}

func (r *reader) flag(f layout.FieldSpec) bool {
	return r.u32(f) != 0
}

func (r *reader) text(f layout.FieldSpec) string {
	if r.err != nil {
		return ""
	}
	t, err := layout.DecodeText(r.img, f)
	r.err = err
	return cleanText(t.Value)
}

func (r *reader) bytes(f layout.FieldSpec) []byte {
	if r.err != nil {
		return nil
	}
	b, err := layout.DecodeBytes(r.img, f)
	r.err = err
	return b
}

// writer encodes a sequence of fields and keeps the first error.
type writer struct {
	img *layout.Image
	err error
}

func (w *writer) u32(f layout.FieldSpec, v uint32) {
	if w.err == nil {
		w.err = layout.EncodeUint(w.img, f, v)
	}
}

func (w *writer) num(f layout.FieldSpec, v int) {
	if w.err != nil {
		return
	}
	if v < 0 || uint64(v) > uint64(f.MaxUint()) {
		w.err = &layout.RangeError{Field: f.Name, Value: v, Reason: "not representable"}
		return
	}
	w.u32(f, uint32(v))
}

func (w *writer) flag(f layout.FieldSpec, v bool) {
	if v {
		w.u32(f, 1)
	} else {
		w.u32(f, 0)
	}
}

func (w *writer) text(f layout.FieldSpec, s string) {
	if w.err == nil {
		w.err = layout.EncodeText(w.img, f, s)
	}
}

func (w *writer) bytes(f layout.FieldSpec, b []byte) {
	if w.err == nil {
		w.err = layout.EncodeBytes(w.img, f, b)
	}
}

// cleanText cuts text at the first erased (0xff) byte.
func cleanText(s string) string {
	if n := strings.IndexByte(s, 0xff); n >= 0 {
		s = s[:n]
	}
	return s
}

// checkText accepts printable ASCII of at most max characters, limited
// to charset when it's not empty.
func checkText(s string, max int, charset string) error {
	if len(s) > max {
		return fmt.Errorf("longer than %d characters", max)
	}
	for _, c := range []byte(s) {
		if c < 0x20 || c > 0x7e {
			return fmt.Errorf("has non-printable character 0x%02x", c)
		}
		if charset != "" && strings.IndexByte(charset, c) < 0 {
			return fmt.Errorf("has %q, want one of %q", c, charset)
		}
	}
	return nil
}

func lookupName(names []string, s string) (int, error) {
	for i, name := range names {
		if name != "" && strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q, want one of %s", s, strings.Join(names, ", "))
}

package layout

import (
	"fmt"
	"strings"
)

// Record is a sub-schema whose field offsets are relative to the record.
type Record struct {
	Name   string
	Size   int
	Fields []FieldSpec
}

// Lookup finds a field by name.
func (r Record) Lookup(name string) (FieldSpec, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Array repeats a Record Count times starting at Base.
type Array struct {
	Record
	Base  int
	Count int
	// Stride is the distance between elements, defaulting to Record.Size.
	Stride int
}

func (a Array) stride() int {
	if a.Stride > 0 {
		return a.Stride
	}
	return a.Size
}

// End returns the offset just past the last element.
func (a Array) End() int {
	if a.Count == 0 {
		return a.Base
	}
	return a.Base + (a.Count-1)*a.stride() + a.Size
}

// ElementOffset returns the absolute offset of element i.
func (a Array) ElementOffset(i int) (int, error) {
	if i < 0 || i >= a.Count {
		return 0, &BoundsError{
			Field:  fmt.Sprintf("%s[%d]", a.Name, i),
			Offset: a.Base + i*a.stride(),
			Size:   a.Size,
			Limit:  a.End(),
		}
	}
	return a.Base + i*a.stride(), nil
}

// Field returns the absolute spec of field name in element i.
func (a Array) Field(i int, name string) (FieldSpec, error) {
	base, err := a.ElementOffset(i)
	if err != nil {
		return FieldSpec{}, err
	}
	f, ok := a.Lookup(name)
	if !ok {
		return FieldSpec{}, &SpecError{Field: a.Name + "." + name, Reason: "no such field"}
	}
	f = f.At(base)
	f.Name = fmt.Sprintf("%s[%d].%s", a.Name, i, name)
	return f, nil
}

// Element returns the absolute specs of every field in element i.
func (a Array) Element(i int) ([]FieldSpec, error) {
	base, err := a.ElementOffset(i)
	if err != nil {
		return nil, err
	}
	fields := make([]FieldSpec, len(a.Fields))
	for n, f := range a.Fields {
		fields[n] = f.At(base)
		fields[n].Name = fmt.Sprintf("%s[%d].%s", a.Name, i, f.Name)
	}
	return fields, nil
}

// DecodeRecord decodes element i into a map keyed by field name.
// Reserved fields are skipped.
func DecodeRecord(img *Image, a Array, i int) (map[string]interface{}, error) {
	fields, err := a.Element(i)
	if err != nil {
		return nil, err
	}
	rec := make(map[string]interface{}, len(fields))
	for n, f := range fields {
		if f.Reserved {
			continue
		}
		v, err := Decode(img, f)
		if err != nil {
			return nil, err
		}
		rec[a.Fields[n].Name] = v
	}
	return rec, nil
}

// EncodeRecord writes the fields present in rec into element i. Fields
// missing from rec keep their current bits.
func EncodeRecord(img *Image, a Array, i int, rec map[string]interface{}) error {
	fields, err := a.Element(i)
	if err != nil {
		return err
	}
	for name := range rec {
		if _, ok := a.Lookup(name); !ok {
			return &SpecError{Field: a.Name + "." + name, Reason: "no such field"}
		}
	}
	scratch := img.Clone()
	for n, f := range fields {
		v, ok := rec[a.Fields[n].Name]
		if !ok || f.Reserved {
			continue
		}
		if err := Encode(scratch, f, v); err != nil {
			return err
		}
	}
	return img.CopyFrom(scratch)
}

// DecodeArray decodes every element.
func DecodeArray(img *Image, a Array) ([]map[string]interface{}, error) {
	recs := make([]map[string]interface{}, a.Count)
	for i := range recs {
		rec, err := DecodeRecord(img, a, i)
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}
	return recs, nil
}

// EncodeArray writes recs, which must hold exactly Count elements.
func EncodeArray(img *Image, a Array, recs []map[string]interface{}) error {
	if len(recs) != a.Count {
		return &RangeError{Field: a.Name, Value: len(recs), Reason: fmt.Sprintf("elements, want %d", a.Count)}
	}
	scratch := img.Clone()
	for i, rec := range recs {
		if err := EncodeRecord(scratch, a, i, rec); err != nil {
			return err
		}
	}
	return img.CopyFrom(scratch)
}

// Schema describes a whole image.
type Schema struct {
	Name    string
	Version int
	Size    int
	Fields  []FieldSpec
	Arrays  []Array
}

// Field finds a top-level field by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// MustField finds a top-level field or panics.
func (s *Schema) MustField(name string) FieldSpec {
	f, ok := s.Field(name)
	if !ok {
		panic(fmt.Sprintf("%s: no field %q", s.Name, name))
	}
	return f
}

// Array finds an array by name.
func (s *Schema) Array(name string) (Array, bool) {
	for _, a := range s.Arrays {
		if a.Name == name {
			return a, true
		}
	}
	return Array{}, false
}

// MustArray finds an array or panics.
func (s *Schema) MustArray(name string) Array {
	a, ok := s.Array(name)
	if !ok {
		panic(fmt.Sprintf("%s: no array %q", s.Name, name))
	}
	return a
}

// Validate checks that every spec is well formed, lies inside the image
// and that no two non-reserved specs claim the same bit.
func (s *Schema) Validate() error {
	owners := make([]string, s.Size*8)
	claim := func(f FieldSpec) error {
		if err := f.validate(s.Size); err != nil {
			return err
		}
		if f.Reserved {
			return nil
		}
		mask := f.bitMask()
		for off := f.Offset; off < f.End(); off++ {
			for bit := 0; bit < 8; bit++ {
				if mask&(1<<uint(bit)) == 0 {
					continue
				}
				idx := off*8 + bit
				if owner := owners[idx]; owner != "" {
					return &OverlapError{Field: f.Name, Other: owner, Offset: off, Bit: bit}
				}
				owners[idx] = f.Name
			}
		}
		return nil
	}
	names := make(map[string]bool)
	for _, f := range s.Fields {
		if names[f.Name] {
			return &SpecError{Field: f.Name, Reason: "declared twice"}
		}
		names[f.Name] = true
		if err := claim(f); err != nil {
			return err
		}
	}
	for _, a := range s.Arrays {
		if names[a.Name] {
			return &SpecError{Field: a.Name, Reason: "declared twice"}
		}
		names[a.Name] = true
		if a.stride() < a.Size {
			return &SpecError{Field: a.Name, Reason: fmt.Sprintf("stride %d below record size %d", a.stride(), a.Size)}
		}
		for _, f := range a.Fields {
			if err := f.validate(a.Size); err != nil {
				return fmt.Errorf("%s: %w", a.Name, err)
			}
		}
		for i := 0; i < a.Count; i++ {
			fields, _ := a.Element(i)
			for _, f := range fields {
				if err := claim(f); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// MustValidate panics if the schema is invalid.
func (s *Schema) MustValidate() *Schema {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// Coverage returns how many bytes have at least one bit claimed by a
// non-reserved spec.
func (s *Schema) Coverage() int {
	covered := make([]bool, s.Size)
	mark := func(f FieldSpec) {
		if f.Reserved {
			return
		}
		for off := f.Offset; off < f.End() && off < s.Size; off++ {
			if off >= 0 {
				covered[off] = true
			}
		}
	}
	for _, f := range s.Fields {
		mark(f)
	}
	for _, a := range s.Arrays {
		for i := 0; i < a.Count; i++ {
			fields, _ := a.Element(i)
			for _, f := range fields {
				mark(f)
			}
		}
	}
	n := 0
	for _, c := range covered {
		if c {
			n++
		}
	}
	return n
}

// Describe lists the top-level fields and arrays, one per line.
func (s *Schema) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%d (%d bytes)\n", s.Name, s.Version, s.Size)
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "  0x%04x %-24s %s[%d]", f.Offset, f.Name, f.Kind, f.Size)
		if f.IsBitfield() {
			fmt.Fprintf(&b, " bits %d+%d", f.Bit, f.Bits)
		}
		b.WriteByte('\n')
	}
	for _, a := range s.Arrays {
		fmt.Fprintf(&b, "  0x%04x %-24s %d x %d\n", a.Base, a.Name, a.Count, a.Size)
	}
	return b.String()
}

package layout

import "fmt"

// Kind is the element type of a field.
type Kind int

// Field kinds.
const (
	KindUint Kind = iota
	KindInt
	KindText
	KindBytes
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// BitOrder selects how bit offsets within a byte are counted.
type BitOrder int

const (
	// MSBFirst counts bit 0 as the most significant bit.
	MSBFirst BitOrder = iota
	// LSBFirst counts bit 0 as the least significant bit.
	LSBFirst
)

// FieldSpec describes where one typed value lives in the image.
// Integers are little-endian. A bitfield (Bits > 0) is an unsigned value
// of Bits bits starting at Bit within the single byte at Offset.
type FieldSpec struct {
	Name   string
	Offset int
	Kind   Kind
	Size   int
	Bit    int
	Bits   int
	Order  BitOrder
	// Pad fills unused trailing bytes of text fields.
	Pad byte
	// Reserved marks padding regions; they may overlap other specs and
	// are never written by the codec.
	Reserved bool
}

// U8 declares an unsigned byte.
func U8(name string, offset int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindUint, Size: 1}
}

// U16 declares a little-endian uint16.
func U16(name string, offset int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindUint, Size: 2}
}

// U32 declares a little-endian uint32.
func U32(name string, offset int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindUint, Size: 4}
}

// I8 declares a signed byte.
func I8(name string, offset int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindInt, Size: 1}
}

// I16 declares a little-endian two's-complement int16.
func I16(name string, offset int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindInt, Size: 2}
}

// Chars declares fixed-length text padded with pad.
func Chars(name string, offset, size int, pad byte) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindText, Size: size, Pad: pad}
}

// Block declares an opaque byte block.
func Block(name string, offset, size int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindBytes, Size: size}
}

// ReservedBlock declares a documented padding region.
func ReservedBlock(name string, offset, size int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindBytes, Size: size, Reserved: true}
}

// BitGroup declares bitfields that share a bit order.
type BitGroup struct {
	Order BitOrder
}

// MSB is the group for most-significant-bit-first fields.
var MSB = BitGroup{Order: MSBFirst}

// LSB is the group for least-significant-bit-first fields.
var LSB = BitGroup{Order: LSBFirst}

// Field declares a bitfield of width bits at bit within the byte at offset.
func (g BitGroup) Field(name string, offset, bit, bits int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Kind: KindUint, Size: 1, Bit: bit, Bits: bits, Order: g.Order}
}

// Flag declares a single-bit field.
func (g BitGroup) Flag(name string, offset, bit int) FieldSpec {
	return g.Field(name, offset, bit, 1)
}

// IsBitfield reports whether the spec addresses bits within a byte.
func (f FieldSpec) IsBitfield() bool {
	return f.Bits > 0
}

// At returns the spec rebased by base bytes.
func (f FieldSpec) At(base int) FieldSpec {
	f.Offset += base
	return f
}

// End returns the offset just past the field.
func (f FieldSpec) End() int {
	return f.Offset + f.Size
}

// shift is the position of the field's least significant bit.
func (f FieldSpec) shift() uint {
	if f.Order == LSBFirst {
		return uint(f.Bit)
	}
	return uint(8 - f.Bit - f.Bits)
}

func (f FieldSpec) mask() uint32 {
	return 1<<uint(f.Bits) - 1
}

// MaxUint returns the largest value an unsigned field can hold.
func (f FieldSpec) MaxUint() uint32 {
	if f.IsBitfield() {
		return f.mask()
	}
	if f.Size >= 4 {
		return 0xffffffff
	}
	return 1<<(8*uint(f.Size)) - 1
}

// IntRange returns the bounds of a signed field.
func (f FieldSpec) IntRange() (min, max int32) {
	bits := 8 * uint(f.Size)
	if bits >= 32 {
		return -1 << 31, 1<<31 - 1
	}
	return -1 << (bits - 1), 1<<(bits-1) - 1
}

// validate checks the spec is well formed and fits in limit bytes.
func (f FieldSpec) validate(limit int) error {
	switch f.Kind {
	case KindUint, KindInt:
		if f.Size != 1 && f.Size != 2 && f.Size != 4 {
			return &SpecError{Field: f.Name, Reason: fmt.Sprintf("integer size %d", f.Size)}
		}
	case KindText, KindBytes:
		if f.Size <= 0 {
			return &SpecError{Field: f.Name, Reason: fmt.Sprintf("size %d", f.Size)}
		}
	default:
		return &SpecError{Field: f.Name, Reason: "unknown kind " + f.Kind.String()}
	}
	if f.Bits != 0 {
		if f.Kind != KindUint || f.Size != 1 {
			return &SpecError{Field: f.Name, Reason: "bitfield must be a single unsigned byte"}
		}
		if f.Bits < 0 || f.Bit < 0 || f.Bit+f.Bits > 8 {
			return &SpecError{Field: f.Name, Reason: fmt.Sprintf("bits %d+%d cross the byte", f.Bit, f.Bits)}
		}
	}
	if f.Offset < 0 || f.End() > limit {
		return &BoundsError{Field: f.Name, Offset: f.Offset, Size: f.Size, Limit: limit}
	}
	return nil
}

// bitMask returns the physical bits (bit 0 = LSB) the spec owns in
// each byte it spans.
func (f FieldSpec) bitMask() byte {
	if !f.IsBitfield() {
		return 0xff
	}
	return byte(f.mask() << f.shift())
}

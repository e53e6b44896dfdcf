package layout

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Text is a decoded fixed-length text field.
type Text struct {
	// Value holds the bytes before the first NUL or pad byte.
	Value string
	// Terminated is set when a NUL or pad byte ended the value early.
	Terminated bool
	// Clean is set when every byte after the value equals the pad.
	Clean bool
}

// String implements fmt.Stringer.
func (t Text) String() string {
	return t.Value
}

func kindCheck(f FieldSpec, want Kind) error {
	if f.Kind != want {
		return &KindError{Field: f.Name, Want: want, Got: f.Kind}
	}
	return nil
}

// DecodeUint reads an unsigned integer or bitfield.
func DecodeUint(img *Image, f FieldSpec) (uint32, error) {
	if err := kindCheck(f, KindUint); err != nil {
		return 0, err
	}
	b, err := img.span(f)
	if err != nil {
		return 0, err
	}
	if f.IsBitfield() {
		return uint32(b[0]>>f.shift()) & f.mask(), nil
	}
	switch f.Size {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(b)), nil
	default:
		return binary.LittleEndian.Uint32(b), nil
	}
}

// EncodeUint writes an unsigned integer or bitfield. Bits of a shared
// byte outside the field are preserved.
func EncodeUint(img *Image, f FieldSpec, v uint32) error {
	if err := kindCheck(f, KindUint); err != nil {
		return err
	}
	b, err := img.span(f)
	if err != nil {
		return err
	}
	if v > f.MaxUint() {
		return &RangeError{Field: f.Name, Value: v, Reason: fmt.Sprintf("exceeds %d", f.MaxUint())}
	}
	if f.IsBitfield() {
		b[0] = b[0]&^f.bitMask() | byte(v<<f.shift())
		return nil
	}
	switch f.Size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	default:
		binary.LittleEndian.PutUint32(b, v)
	}
	return nil
}

// DecodeInt reads a two's-complement signed integer.
func DecodeInt(img *Image, f FieldSpec) (int32, error) {
	if err := kindCheck(f, KindInt); err != nil {
		return 0, err
	}
	b, err := img.span(f)
	if err != nil {
		return 0, err
	}
	switch f.Size {
	case 1:
		return int32(int8(b[0])), nil
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(b))), nil
	default:
		return int32(binary.LittleEndian.Uint32(b)), nil
	}
}

// EncodeInt writes a two's-complement signed integer.
func EncodeInt(img *Image, f FieldSpec, v int32) error {
	if err := kindCheck(f, KindInt); err != nil {
		return err
	}
	b, err := img.span(f)
	if err != nil {
		return err
	}
	if min, max := f.IntRange(); v < min || v > max {
		return &RangeError{Field: f.Name, Value: v, Reason: fmt.Sprintf("outside [%d, %d]", min, max)}
	}
	switch f.Size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	default:
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
	return nil
}

// DecodeText reads a fixed-length text field.
func DecodeText(img *Image, f FieldSpec) (Text, error) {
	if err := kindCheck(f, KindText); err != nil {
		return Text{}, err
	}
	b, err := img.span(f)
	if err != nil {
		return Text{}, err
	}
	n := 0
	for n < len(b) && b[n] != 0 && b[n] != f.Pad {
		n++
	}
	t := Text{Value: string(b[:n]), Terminated: n < len(b), Clean: true}
	for _, c := range b[n:] {
		if c != f.Pad {
			t.Clean = false
			break
		}
	}
	return t, nil
}

// EncodeText writes s followed by pad bytes up to the field size.
func EncodeText(img *Image, f FieldSpec, s string) error {
	if err := kindCheck(f, KindText); err != nil {
		return err
	}
	b, err := img.span(f)
	if err != nil {
		return err
	}
	if len(s) > len(b) {
		return &RangeError{Field: f.Name, Value: s, Reason: fmt.Sprintf("longer than %d bytes", len(b))}
	}
	if strings.IndexByte(s, 0) >= 0 || strings.IndexByte(s, f.Pad) >= 0 {
		return &RangeError{Field: f.Name, Value: s, Reason: "contains a terminator byte"}
	}
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = f.Pad
	}
	return nil
}

// DecodeBytes returns a copy of an opaque block.
func DecodeBytes(img *Image, f FieldSpec) ([]byte, error) {
	if err := kindCheck(f, KindBytes); err != nil {
		return nil, err
	}
	b, err := img.span(f)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// EncodeBytes overwrites an opaque block. Reserved blocks are read-only.
func EncodeBytes(img *Image, f FieldSpec, v []byte) error {
	if err := kindCheck(f, KindBytes); err != nil {
		return err
	}
	if f.Reserved {
		return &RangeError{Field: f.Name, Value: len(v), Reason: "reserved region is read-only"}
	}
	b, err := img.span(f)
	if err != nil {
		return err
	}
	if len(v) != len(b) {
		return &RangeError{Field: f.Name, Value: len(v), Reason: fmt.Sprintf("bytes, want %d", len(b))}
	}
	copy(b, v)
	return nil
}

// Decode reads any field, returning uint32, int32, Text or []byte.
func Decode(img *Image, f FieldSpec) (interface{}, error) {
	switch f.Kind {
	case KindUint:
		return DecodeUint(img, f)
	case KindInt:
		return DecodeInt(img, f)
	case KindText:
		return DecodeText(img, f)
	case KindBytes:
		return DecodeBytes(img, f)
	}
	return nil, &SpecError{Field: f.Name, Reason: "unknown kind " + f.Kind.String()}
}

// Encode writes any field. Integer kinds accept any Go integer type,
// text accepts string or Text.
func Encode(img *Image, f FieldSpec, v interface{}) error {
	switch f.Kind {
	case KindUint:
		u, ok := toInt64(v)
		if !ok || u < 0 || u > int64(f.MaxUint()) {
			return &RangeError{Field: f.Name, Value: v, Reason: "not representable"}
		}
		return EncodeUint(img, f, uint32(u))
	case KindInt:
		i, ok := toInt64(v)
		if min, max := f.IntRange(); !ok || i < int64(min) || i > int64(max) {
			return &RangeError{Field: f.Name, Value: v, Reason: "not representable"}
		}
		return EncodeInt(img, f, int32(i))
	case KindText:
		switch s := v.(type) {
		case string:
			return EncodeText(img, f, s)
		case Text:
			return EncodeText(img, f, s.Value)
		}
	case KindBytes:
		if b, ok := v.([]byte); ok {
			return EncodeBytes(img, f, b)
		}
	}
	return &RangeError{Field: f.Name, Value: v, Reason: fmt.Sprintf("has wrong type %T for %s", v, f.Kind)}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > 1<<62 {
			return 0, false
		}
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

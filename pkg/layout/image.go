package layout

import (
	"bytes"
	"fmt"
	"io"
)

// Image is a fixed-size memory image.
type Image struct {
	buf []byte
}

// NewImage creates a zero-filled image.
func NewImage(size int) *Image {
	return &Image{buf: make([]byte, size)}
}

// NewImageFrom creates an image holding a copy of b.
func NewImageFrom(b []byte) *Image {
	return &Image{buf: append([]byte(nil), b...)}
}

// ReadImage reads exactly size bytes from r.
func ReadImage(r io.Reader, size int) (*Image, error) {
	img := NewImage(size)
	if _, err := io.ReadFull(r, img.buf); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("read image: larger than %d bytes", size)
	}
	return img, nil
}

// Len returns the image size.
func (m *Image) Len() int {
	return len(m.buf)
}

// Bytes returns a copy of the image content.
func (m *Image) Bytes() []byte {
	return append([]byte(nil), m.buf...)
}

// Slice returns a copy of n bytes at off.
func (m *Image) Slice(off, n int) ([]byte, error) {
	if err := m.check(off, n); err != nil {
		return nil, err
	}
	return append([]byte(nil), m.buf[off:off+n]...), nil
}

// ReadAt implements io.ReaderAt. Reads never cross the image end.
func (m *Image) ReadAt(p []byte, off int64) (int, error) {
	if err := m.check(int(off), len(p)); err != nil {
		return 0, err
	}
	return copy(p, m.buf[off:]), nil
}

// WriteAt implements io.WriterAt.
func (m *Image) WriteAt(p []byte, off int64) (int, error) {
	if err := m.check(int(off), len(p)); err != nil {
		return 0, err
	}
	return copy(m.buf[off:], p), nil
}

// WriteTo writes the whole image.
func (m *Image) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.buf)
	return int64(n), err
}

// Fill sets every byte to b.
func (m *Image) Fill(b byte) {
	for i := range m.buf {
		m.buf[i] = b
	}
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	return NewImageFrom(m.buf)
}

// CopyFrom replaces the content with src, which must have the same size.
func (m *Image) CopyFrom(src *Image) error {
	if src.Len() != m.Len() {
		return fmt.Errorf("image size %d, want %d", src.Len(), m.Len())
	}
	copy(m.buf, src.buf)
	return nil
}

// Equal compares two images byte by byte.
func (m *Image) Equal(o *Image) bool {
	return o != nil && bytes.Equal(m.buf, o.buf)
}

// Diff returns the offsets of the first n differing bytes.
func (m *Image) Diff(o *Image, n int) []int {
	var offsets []int
	for i := 0; i < len(m.buf) && i < len(o.buf) && len(offsets) < n; i++ {
		if m.buf[i] != o.buf[i] {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

func (m *Image) check(off, n int) error {
	if off < 0 || n < 0 || off+n > len(m.buf) {
		return &BoundsError{Offset: off, Size: n, Limit: len(m.buf)}
	}
	return nil
}

func (m *Image) span(f FieldSpec) ([]byte, error) {
	if err := f.validate(len(m.buf)); err != nil {
		return nil, err
	}
	return m.buf[f.Offset:f.End()], nil
}

package layout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageFile(t *testing.T) {
	img := NewImage(8)
	_, err := img.WriteAt([]byte{1, 2, 3}, 5)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := img.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(8), n)

	loaded, err := ReadImage(bytes.NewReader(buf.Bytes()), 8)
	require.NoError(t, err)
	require.True(t, img.Equal(loaded))

	_, err = ReadImage(bytes.NewReader(buf.Bytes()[:7]), 8)
	require.Error(t, err)
	_, err = ReadImage(bytes.NewReader(append(buf.Bytes(), 0)), 8)
	require.Error(t, err)
}

func TestImageCopies(t *testing.T) {
	img := NewImageFrom([]byte{1, 2, 3, 4})
	clone := img.Clone()
	clone.Fill(9)
	require.Equal(t, []byte{1, 2, 3, 4}, img.Bytes())
	require.Equal(t, []int{0, 1}, img.Diff(clone, 2))

	b := img.Bytes()
	b[0] = 7
	require.Equal(t, byte(1), img.Bytes()[0])

	require.NoError(t, img.CopyFrom(clone))
	require.True(t, img.Equal(clone))
	require.Error(t, img.CopyFrom(NewImage(3)))

	p := make([]byte, 2)
	n, err := img.ReadAt(p, 2)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{9, 9}, p)
}

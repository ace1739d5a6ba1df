package keyfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/scramble.go/pkg/scramble"
)

func TestKeyfile_RoundTrip(t *testing.T) {
	p, err := scramble.NewPermutation(31, 17, 42)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p))
	assert.Equal(t, []byte("PXK1"), buf.Bytes()[:4])

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestKeyfile_File(t *testing.T) {
	p, err := scramble.NewPermutation(3, 2, 7)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.pxk")

	require.NoError(t, WriteFile(path, p))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, p.Positions, got.Positions)
	assert.Equal(t, uint32(7), got.Seed)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestKeyfile_EmptyPermutation(t *testing.T) {
	p, err := scramble.NewPermutation(0, 0, 1)
	require.NoError(t, err)
	data, err := Encode(p)
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestKeyfile_Corrupt(t *testing.T) {
	p, err := scramble.NewPermutation(4, 4, 9)
	require.NoError(t, err)
	data, err := Encode(p)
	require.NoError(t, err)

	t.Run("short header", func(t *testing.T) {
		_, err := Read(bytes.NewReader(data[:6]))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] = 'Z'
		_, err := Read(bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("truncated table", func(t *testing.T) {
		_, err := Read(bytes.NewReader(data[:len(data)-4]))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("wrong dimensions", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] = 3 // width 4 -> 3, table now too long
		_, err := Read(bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("repeated coordinate", func(t *testing.T) {
		dup := &scramble.Permutation{Width: 2, Height: 1, Positions: []scramble.Coord{{X: 0, Y: 0}, {X: 0, Y: 0}}}
		assert.ErrorIs(t, Write(&bytes.Buffer{}, dup), scramble.ErrDimensionMismatch)
	})
}

func TestKeyfile_ID(t *testing.T) {
	a, _ := scramble.NewPermutation(2, 2, 42)
	b, _ := scramble.NewPermutation(2, 2, 42)
	c, _ := scramble.NewPermutation(2, 2, 43)
	assert.Equal(t, ID(a), ID(b))
	assert.NotEqual(t, ID(a), ID(c))
	assert.Len(t, ID(a), 36)
}

func TestKeyfile_LargeHeaderShortBody(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("PXK1")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, [3]uint32{16384, 8192, 1}))
	buf.Write([]byte{0x28, 0xb5, 0x2f, 0xfd}) // zstd magic, frame cut off

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, err := Read(bytes.NewReader(buf.Bytes()))
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, ErrCorrupt)
	allocated := after.TotalAlloc - before.TotalAlloc
	assert.Less(t, allocated, uint64(64<<20), "allocated %d MiB for a %d byte input", allocated>>20, buf.Len())
}

func TestKeyfile_WriteFileLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.pxk")
	p, err := scramble.NewPermutation(5, 5, 3)
	require.NoError(t, err)

	require.NoError(t, WriteFile(path, p))
	require.NoError(t, WriteFile(path, p))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	bad := &scramble.Permutation{Width: 2, Height: 2}
	other := filepath.Join(dir, "bad.pxk")
	assert.Error(t, WriteFile(other, bad))
	assert.NoFileExists(t, other)

	missing := filepath.Join(dir, "no", "key.pxk")
	assert.Error(t, WriteFile(missing, p))
	assert.NoFileExists(t, missing)
}

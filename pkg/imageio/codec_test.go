package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func gradient(w, h int, alpha bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if alpha {
				a = uint8((x*31 + y*7) % 256)
			}
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 9), G: uint8(y * 13), B: uint8(x ^ y), A: a})
		}
	}
	return img
}

func TestCodec_PNGRoundTrip(t *testing.T) {
	for _, alpha := range []bool{false, true} {
		img := gradient(17, 9, alpha)
		data, err := Encode(img)
		require.NoError(t, err)

		decoded, format, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, img.Bounds(), decoded.Bounds())
		assert.Equal(t, img.Pix, decoded.Pix, "alpha=%v", alpha)
	}
}

func TestCodec_DecodeRegisteredFormats(t *testing.T) {
	src := gradient(8, 6, false)

	var b bytes.Buffer
	require.NoError(t, bmp.Encode(&b, src))
	img, format, err := Decode(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, src.Pix, img.Pix)

	b.Reset()
	require.NoError(t, tiff.Encode(&b, src, nil))
	img, format, err = Decode(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "tiff", format)
	assert.Equal(t, src.Pix, img.Pix)

	b.Reset()
	require.NoError(t, jpeg.Encode(&b, src, nil))
	img, format, err = Decode(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, src.Bounds(), img.Bounds())
}

func TestCodec_DecodeMalformed(t *testing.T) {
	_, _, err := Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecode)

	data, err := Encode(gradient(4, 4, false))
	require.NoError(t, err)
	_, _, err = Decode(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrDecode)
}

func TestCodec_EncodeErrors(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrEncode)

	_, err = Encode(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEncode)
}

func TestFile_WriteRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	img := gradient(5, 5, true)

	require.NoError(t, WriteFile(path, img))
	got, format, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, img.Pix, got.Pix)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := ReadFile(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrIO)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0644))
	_, _, err = ReadFile(bad)
	assert.ErrorIs(t, err, ErrDecode)

	err = WriteFile(filepath.Join(dir, "no", "such", "dir.png"), gradient(2, 2, false))
	assert.ErrorIs(t, err, ErrIO)

	target := filepath.Join(dir, "empty.png")
	err = WriteFile(target, image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEncode)
	assert.NoFileExists(t, target)
}

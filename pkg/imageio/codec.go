// Package imageio decodes images into straight-alpha RGBA buffers and writes
// them back out as PNG.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jpfielding/scramble.go/pkg/scramble"
)

var (
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")
	ErrIO     = errors.New("io error")
)

// Decode sniffs the container format and returns the pixels as an
// origin-anchored NRGBA buffer along with the format name.
func Decode(data []byte) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return scramble.ToNRGBA(img), format, nil
}

// Encode writes img as PNG.
func Encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEncode)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

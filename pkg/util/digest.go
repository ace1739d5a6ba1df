package util

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"

	"github.com/google/uuid"
)

// Md5ThenHex is a quick hasher
func Md5ThenHex(value []byte) string {
	hasher := md5.New()
	hasher.Write(value)
	return hex.EncodeToString(hasher.Sum(nil))
}

// PixelDigest hashes the bounds and pixel bytes of an NRGBA image, row by
// row, so sub-images with a wider stride hash the same as a tight copy.
func PixelDigest(img *image.NRGBA) string {
	b := img.Bounds()
	buf := make([]byte, 0, 16+4*b.Dx()*b.Dy())
	buf = fmt.Appendf(buf, "%dx%d:", b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		buf = append(buf, img.Pix[i:i+4*b.Dx()]...)
	}
	return Md5ThenHex(buf)
}

// HashUUID derives a stable UUID from the JSON encoding of value.
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	hasher := md5.New()
	hasher.Write(raw)
	hash := hasher.Sum(nil)
	id, err := uuid.FromBytes(hash[:16])
	if err != nil {
		return ""
	}
	return id.String()
}

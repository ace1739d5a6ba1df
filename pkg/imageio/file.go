package imageio

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/jpfielding/scramble.go/pkg/util"
)

// ReadFile reads and decodes the image at path.
func ReadFile(path string) (*image.NRGBA, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	img, format, err := Decode(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("decoded image", "path", path, "format", format, "bytes", len(raw), "bounds", img.Bounds().String())
	return img, format, nil
}

// WriteFile encodes img as PNG and replaces path with it. The encoded bytes
// go to a temp file in the same directory that is renamed into place, so a
// failure never leaves a partial image at path.
func WriteFile(path string, img image.Image) error {
	data, err := Encode(img)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := util.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	slog.Debug("wrote image", "path", path, "bytes", len(data))
	return nil
}

package imageio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrInvalidFilename = errors.New("invalid filename")

// Basename strips the extension from path, keeping any directory.
// A path without an extension is rejected.
func Basename(path string) (string, error) {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext == "" || ext == name || ext == "." {
		return "", fmt.Errorf("%w: %q has no extension", ErrInvalidFilename, path)
	}
	return strings.TrimSuffix(path, ext), nil
}

func ScrambledPath(base string) string   { return base + "-scrambled.png" }
func UnscrambledPath(base string) string { return base + "-unscrambled.png" }
func EncodedPath(base string) string     { return base + ".png" }

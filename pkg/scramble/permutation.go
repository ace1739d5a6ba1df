// Package scramble relocates the pixels of an NRGBA image according to a
// seed-derived permutation of its coordinates. The same permutation drives
// both directions, so Unscramble exactly reverses Scramble when the width,
// height and seed match.
//
// This is obfuscation, not encryption.
package scramble

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jpfielding/scramble.go/pkg/scramble/pcg"
)

var (
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Coord is a pixel position.
type Coord struct {
	X, Y int
}

// Permutation maps linear raster index idx to a source coordinate Positions[idx].
type Permutation struct {
	Width     int
	Height    int
	Seed      uint32
	Positions []Coord
}

// NewPermutation enumerates all coordinates column by column (x outer, y
// inner) and shuffles them with a generator seeded only by seed.
// Zero-area dimensions yield an empty permutation.
func NewPermutation(width, height int, seed uint32) (*Permutation, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	positions := make([]Coord, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			positions = append(positions, Coord{X: x, Y: y})
		}
	}

	rng := pcg.Seed(uint64(seed))
	rng.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})

	slog.Debug("generated permutation",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Any("seed", seed))
	return &Permutation{Width: width, Height: height, Seed: seed, Positions: positions}, nil
}

// Len returns the number of pixels covered.
func (p *Permutation) Len() int {
	return len(p.Positions)
}

// Raster returns the row-major coordinate of linear index idx. This is not
// the enumeration order used to build Positions.
func (p *Permutation) Raster(idx int) Coord {
	return Coord{X: idx % p.Width, Y: idx / p.Width}
}

// Validate checks that the table covers exactly Width*Height in-bounds
// coordinates, each once.
func (p *Permutation) Validate() error {
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, p.Width, p.Height)
	}
	if len(p.Positions) != p.Width*p.Height {
		return fmt.Errorf("%w: %d positions for %dx%d", ErrDimensionMismatch, len(p.Positions), p.Width, p.Height)
	}
	seen := make([]bool, len(p.Positions))
	for idx, c := range p.Positions {
		if c.X < 0 || c.X >= p.Width || c.Y < 0 || c.Y >= p.Height {
			return fmt.Errorf("%w: position %d (%d,%d) outside %dx%d", ErrDimensionMismatch, idx, c.X, c.Y, p.Width, p.Height)
		}
		k := c.Y*p.Width + c.X
		if seen[k] {
			return fmt.Errorf("%w: position %d (%d,%d) repeats", ErrDimensionMismatch, idx, c.X, c.Y)
		}
		seen[k] = true
	}
	return nil
}

// Package keyfile stores a generated permutation so an image can be
// unscrambled from the table itself instead of re-deriving it from the seed.
//
// Layout (little endian):
//
//	magic  [4]byte "PXK1"
//	width  uint32
//	height uint32
//	seed   uint32
//	zstd frame of width*height (x uint32, y uint32) pairs
package keyfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/jpfielding/scramble.go/pkg/scramble"
	"github.com/jpfielding/scramble.go/pkg/util"
)

var (
	ErrCorrupt = errors.New("corrupt key file")

	magic = [4]byte{'P', 'X', 'K', '1'}
)

// maxPixels bounds the table size accepted by Read.
const maxPixels = 1 << 30

type header struct {
	Magic  [4]byte
	Width  uint32
	Height uint32
	Seed   uint32
}

// Write serializes p to w.
func Write(w io.Writer, p *scramble.Permutation) error {
	if err := p.Validate(); err != nil {
		return err
	}
	h := header{Magic: magic, Width: uint32(p.Width), Height: uint32(p.Height), Seed: p.Seed}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	var pair [8]byte
	for _, c := range p.Positions {
		binary.LittleEndian.PutUint32(pair[0:], uint32(c.X))
		binary.LittleEndian.PutUint32(pair[4:], uint32(c.Y))
		if _, err := bw.Write(pair[:]); err != nil {
			enc.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read parses and validates a key file.
func Read(r io.Reader) (*scramble.Permutation, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, h.Magic[:])
	}
	n := uint64(h.Width) * uint64(h.Height)
	if n > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d too large", ErrCorrupt, h.Width, h.Height)
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	// The header is untrusted: grow the table only as decoded pairs arrive.
	br := bufio.NewReader(dec)
	positions := make([]scramble.Coord, 0, min(n, 1<<16))
	var pair [8]byte
	for i := uint64(0); i < n; i++ {
		if _, err := io.ReadFull(br, pair[:]); err != nil {
			return nil, fmt.Errorf("%w: table entry %d: %v", ErrCorrupt, i, err)
		}
		positions = append(positions, scramble.Coord{
			X: int(binary.LittleEndian.Uint32(pair[0:])),
			Y: int(binary.LittleEndian.Uint32(pair[4:])),
		})
	}
	extra, err := io.Copy(io.Discard, br)
	if err != nil {
		return nil, fmt.Errorf("%w: table: %v", ErrCorrupt, err)
	}
	if extra != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, extra)
	}

	p := &scramble.Permutation{
		Width:     int(h.Width),
		Height:    int(h.Height),
		Seed:      h.Seed,
		Positions: positions,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return p, nil
}

// Encode returns the serialized form of p.
func Encode(p *scramble.Permutation) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile stores p at path, replacing it only once fully written.
func WriteFile(path string, p *scramble.Permutation) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data, 0600)
}

// ReadFile loads a permutation from path.
func ReadFile(path string) (*scramble.Permutation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// ID is a stable identifier for the (width, height, seed) triple, suitable for logs.
func ID(p *scramble.Permutation) string {
	return util.HashUUID(struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Seed   uint32 `json:"seed"`
	}{p.Width, p.Height, p.Seed})
}

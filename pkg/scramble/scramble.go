package scramble

import (
	"fmt"
	"image"
	"image/draw"
)

// Scramble writes src[Positions[idx]] to raster position idx of a new image.
func (p *Permutation) Scramble(src *image.NRGBA) (*image.NRGBA, error) {
	if err := p.check(src); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for idx, from := range p.Positions {
		to := p.Raster(idx)
		copyPixel(dst, to, src, from)
	}
	return dst, nil
}

// Unscramble writes raster position idx of src back to Positions[idx] of a new image.
func (p *Permutation) Unscramble(src *image.NRGBA) (*image.NRGBA, error) {
	if err := p.check(src); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for idx, to := range p.Positions {
		from := p.Raster(idx)
		copyPixel(dst, to, src, from)
	}
	return dst, nil
}

func (p *Permutation) check(src *image.NRGBA) error {
	if src == nil {
		return fmt.Errorf("%w: nil image", ErrDimensionMismatch)
	}
	b := src.Bounds()
	if b.Dx() != p.Width || b.Dy() != p.Height {
		return fmt.Errorf("%w: image is %dx%d, permutation is %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), p.Width, p.Height)
	}
	if len(p.Positions) != p.Width*p.Height {
		return fmt.Errorf("%w: %d positions for %dx%d", ErrDimensionMismatch, len(p.Positions), p.Width, p.Height)
	}
	return nil
}

// copyPixel copies one NRGBA pixel; coordinates are relative to each image's origin.
func copyPixel(dst *image.NRGBA, to Coord, src *image.NRGBA, from Coord) {
	o := src.Rect.Min
	s := src.PixOffset(o.X+from.X, o.Y+from.Y)
	d := dst.PixOffset(to.X, to.Y)
	copy(dst.Pix[d:d+4], src.Pix[s:s+4])
}

// ToNRGBA returns img as an origin-anchored *image.NRGBA. Images that already
// are one are copied row by row so the caller's buffer is never shared and
// translucent pixels are not rounded through premultiplied color.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			s := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[s:s+4*b.Dx()])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Scramble converts img to NRGBA and scrambles it with the permutation for seed.
func Scramble(img image.Image, seed uint32) (*image.NRGBA, error) {
	src := ToNRGBA(img)
	p, err := NewPermutation(src.Rect.Dx(), src.Rect.Dy(), seed)
	if err != nil {
		return nil, err
	}
	return p.Scramble(src)
}

// Unscramble converts img to NRGBA and reverses Scramble for the same seed.
func Unscramble(img image.Image, seed uint32) (*image.NRGBA, error) {
	src := ToNRGBA(img)
	p, err := NewPermutation(src.Rect.Dx(), src.Rect.Dy(), seed)
	if err != nil {
		return nil, err
	}
	return p.Unscramble(src)
}

// Package pcg implements the PCG XSL-RR 128/64 generator (a 128-bit LCG with
// an xorshift-low, random-rotate output) together with the seed expansion and
// bounded sampling used to shuffle pixel positions. The streams are bit-for-bit
// identical to rand_pcg's Pcg64 seeded through seed_from_u64, which keeps
// permutations compatible with images scrambled by the earlier tool.
package pcg

import "math/bits"

// 128-bit LCG multiplier, split into halves.
const (
	mulHi = 0x2360ED051FC65DA4
	mulLo = 0x4385DF649FCCF645
)

// pcg32 constants for seed expansion
const (
	seedMul = 6364136223846793005
	seedInc = 11634580027462260723
)

// Pcg64 is a 128-bit state generator. The zero value is not useful; use New or Seed.
type Pcg64 struct {
	hi, lo       uint64 // state
	incHi, incLo uint64 // increment, always odd
}

// New returns the generator for an explicit state and stream selector.
// The increment is derived as stream<<1 | 1.
func New(stateHi, stateLo, streamHi, streamLo uint64) *Pcg64 {
	incHi := streamHi<<1 | streamLo>>63
	incLo := streamLo<<1 | 1
	return fromStateInc(stateHi, stateLo, incHi, incLo)
}

// Seed expands a 64-bit seed into a full 256-bit seed with a pcg32 stream,
// the first 128 bits becoming the state and the rest the increment.
func Seed(seed uint64) *Pcg64 {
	var words [8]uint32
	state := seed
	for i := range words {
		state = state*seedMul + seedInc
		xorshifted := uint32(((state >> 18) ^ state) >> 27)
		words[i] = bits.RotateLeft32(xorshifted, -int(state>>59))
	}
	u := func(i int) uint64 { return uint64(words[2*i]) | uint64(words[2*i+1])<<32 }
	return fromStateInc(u(1), u(0), u(3), u(2)|1)
}

func fromStateInc(hi, lo, incHi, incLo uint64) *Pcg64 {
	p := &Pcg64{hi: hi, lo: lo, incHi: incHi, incLo: incLo}
	var carry uint64
	p.lo, carry = bits.Add64(p.lo, p.incLo, 0)
	p.hi, _ = bits.Add64(p.hi, p.incHi, carry)
	p.step()
	return p
}

func (p *Pcg64) step() {
	// state = state*mul + inc (mod 2^128)
	hi, lo := bits.Mul64(p.lo, mulLo)
	hi += p.hi*mulLo + p.lo*mulHi
	var carry uint64
	p.lo, carry = bits.Add64(lo, p.incLo, 0)
	p.hi, _ = bits.Add64(hi, p.incHi, carry)
}

// Uint64 advances the generator and returns the next 64-bit output.
// Pcg64 satisfies math/rand/v2.Source.
func (p *Pcg64) Uint64() uint64 {
	p.step()
	return bits.RotateLeft64(p.hi^p.lo, -int(p.hi>>58))
}

// Uint32 returns the low half of the next 64-bit output.
func (p *Pcg64) Uint32() uint32 {
	return uint32(p.Uint64())
}

// IntN returns a value in [0, n) using widening multiplication with a
// conservative rejection zone. Bounds that fit in 32 bits consume one Uint32
// per attempt; larger bounds consume Uint64. n must be positive.
func (p *Pcg64) IntN(n int) int {
	if n <= 0 {
		panic("pcg: invalid argument to IntN")
	}
	if uint64(n) <= 1<<32-1 {
		rng := uint32(n)
		zone := rng<<bits.LeadingZeros32(rng) - 1
		for {
			m := uint64(p.Uint32()) * uint64(rng)
			if uint32(m) <= zone {
				return int(m >> 32)
			}
		}
	}
	rng := uint64(n)
	zone := rng<<bits.LeadingZeros64(rng) - 1
	for {
		hi, lo := bits.Mul64(p.Uint64(), rng)
		if lo <= zone {
			return int(hi)
		}
	}
}

// Shuffle performs a Fisher-Yates shuffle of n elements from the back,
// swapping i with IntN(i+1) for i = n-1 down to 1.
func (p *Pcg64) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, p.IntN(i+1))
	}
}

package main

const (
	rngModulus    = 0x7fffffff
	rngMultiplier = 0xbc8f
	rngRange      = 0x7ffffffe

	boolResolution = 1000000
)

// Rand is the minimal-standard multiplicative congruential generator used by
// the game (minstd_rand, multiplier 48271), with its rejection sampling on top.
// The zero value must be seeded before use.
type Rand struct {
	state uint64
}

// Seed resets the generator state.
func (r *Rand) Seed(seed uint32) {
	s := seed % rngModulus
	if s < 1 {
		s = 1
	}
	r.state = uint64(s)
}

// Int returns a uniform integer in [0, max], bounds included.
func (r *Rand) Int(max int) int {
	if max < 0 {
		panic("rng: negative bound")
	}
	if max == 0 {
		return 0
	}
	divisor := uint64(rngRange / (max + 1))
	for {
		r.state = (r.state * rngMultiplier) % rngModulus
		if v := (r.state - 1) / divisor; v <= uint64(max) {
			return int(v)
		}
	}
}

// Bool returns true with probability p. The threshold is computed in float32
// to match the game's truncation.
func (r *Rand) Bool(p float32) bool {
	return r.Int(boolResolution) <= int(p*boolResolution)
}

package bits

import "lukechampine.com/uint128"

// ScratchBits is the width of the scratch buffer.
const ScratchBits = 128

// Scratch is a 128-bit buffer in little-endian element order: bit i lives in
// byte i/8 with weight 1<<(i%8), so bit 0 is the least significant bit of the
// loaded value.
type Scratch [16]byte

func (s *Scratch) Bit(i int) bool {
	return s[i/8]&(1<<uint(i%8)) != 0
}

func (s *Scratch) Set(i int, v bool) {
	if v {
		s[i/8] |= 1 << uint(i%8)
		return
	}
	s[i/8] &^= 1 << uint(i%8)
}

// Complement flips every bit from index from through 127.
func (s *Scratch) Complement(from int) {
	for i := from; i < ScratchBits; i++ {
		s.Set(i, !s.Bit(i))
	}
}

// SignExtend treats bit width-1 as the sign bit and, when it is set,
// complements bits width..127. It reports whether the value is negative.
func (s *Scratch) SignExtend(width int) bool {
	if width <= 0 || width > ScratchBits {
		return false
	}
	if !s.Bit(width - 1) {
		return false
	}
	s.Complement(width)
	return true
}

// Load returns the buffer as a 128-bit pattern.
func (s *Scratch) Load() Uint128 {
	return uint128.FromBytes(s[:])
}

// FillFrom copies the first n bits of a left-aligned buffer so that source
// bit i lands on scratch bit i.
func (s *Scratch) FillFrom(buf []byte, n int) {
	for i := 0; i < n && i < ScratchBits; i++ {
		s.Set(i, BitAt(buf, i))
	}
}

// Package bits owns bit-level primitives for window decoding.
//
// Ownership boundary:
// - MSB-first bit extraction from byte windows
// - 128-bit scratch buffer (get/set/sign-extend/load)
// - 128-bit value formatting (decimal/hex/binary)
package bits

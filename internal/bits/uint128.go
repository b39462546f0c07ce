package bits

import (
	"fmt"
	"strconv"
	"strings"

	"lukechampine.com/uint128"
)

// Uint128 is a raw bit pattern of up to 128 bits. Narrower values occupy the
// low bits and are zero-extended.
type Uint128 = uint128.Uint128

// Load reads an aligned buffer of 1..16 bytes as an unsigned pattern in the
// requested byte order.
func Load(buf []byte, littleEndian bool) Uint128 {
	var full [16]byte
	n := min(len(buf), 16)
	if littleEndian {
		// widen at the most significant end
		copy(full[:n], buf[:n])
		return uint128.FromBytes(full[:])
	}
	copy(full[16-n:], buf[:n])
	return uint128.FromBytesBE(full[:])
}

// negative reports whether bit width-1 is set.
func negative(u Uint128, width int) bool {
	if width <= 0 || width > 128 {
		return false
	}
	if width > 64 {
		return u.Hi&(1<<uint(width-65)) != 0
	}
	return u.Lo&(1<<uint(width-1)) != 0
}

// FormatDecimal renders u as a width-bit integer.
func FormatDecimal(u Uint128, width int, signed bool) string {
	if width <= 64 && u.Hi == 0 {
		if !signed {
			return strconv.FormatUint(u.Lo, 10)
		}
		shift := uint(64 - width)
		return strconv.FormatInt(int64(u.Lo<<shift)>>shift, 10)
	}
	if !signed || !negative(u, width) {
		return u.String()
	}
	if width < 128 {
		u = u.Or(uint128.Max.Lsh(uint(width)))
	}
	return "-" + uint128.Zero.SubWrap(u).String()
}

// FormatHex renders 0x followed by at least two uppercase digits. The result
// is not padded to the operand width.
func FormatHex(u Uint128) string {
	if u.Hi == 0 {
		return fmt.Sprintf("0x%02X", u.Lo)
	}
	return fmt.Sprintf("0x%X%016X", u.Hi, u.Lo)
}

// FormatBin renders binary digits zero-padded to a whole number of bytes and
// grouped per byte.
func FormatBin(u Uint128) string {
	var digits string
	if u.Hi == 0 {
		digits = strconv.FormatUint(u.Lo, 2)
	} else {
		digits = strconv.FormatUint(u.Hi, 2) + fmt.Sprintf("%064b", u.Lo)
	}
	if pad := (8 - len(digits)%8) % 8; pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/8)
	for i := 0; i < len(digits); i += 8 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+8])
	}
	return b.String()
}

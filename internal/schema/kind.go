package schema

import "strings"

// Kind is the decoded type of a field.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBool1
	KindBool8
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindFloat32
	KindFloat64
	KindString
	KindArbInt
	KindArbUInt
	KindByteGap
	KindBitGap

	// KindCount bounds tables indexed by Kind.
	KindCount
)

var kindTokens = map[string]Kind{
	"bool1":   KindBool1,
	"bool8":   KindBool8,
	"u8":      KindUInt8,
	"u16":     KindUInt16,
	"u32":     KindUInt32,
	"u64":     KindUInt64,
	"u128":    KindUInt128,
	"i8":      KindInt8,
	"i16":     KindInt16,
	"i32":     KindInt32,
	"i64":     KindInt64,
	"i128":    KindInt128,
	"f32":     KindFloat32,
	"f64":     KindFloat64,
	"string":  KindString,
	"iarb":    KindArbInt,
	"uarb":    KindArbUInt,
	"bytegap": KindByteGap,
	"bitgap":  KindBitGap,
}

var kindNames = func() [KindCount]string {
	var names [KindCount]string
	names[KindUnknown] = "unknown"
	for tok, k := range kindTokens {
		names[k] = tok
	}
	return names
}()

// fixedBits is the width of kinds that do not take a length.
var fixedBits = [KindCount]int{
	KindBool1:   1,
	KindBool8:   8,
	KindUInt8:   8,
	KindInt8:    8,
	KindUInt16:  16,
	KindInt16:   16,
	KindUInt32:  32,
	KindInt32:   32,
	KindFloat32: 32,
	KindUInt64:  64,
	KindInt64:   64,
	KindFloat64: 64,
	KindUInt128: 128,
	KindInt128:  128,
}

// ParseKind maps a case-insensitive token to its kind.
func ParseKind(token string) Kind {
	if k, ok := kindTokens[strings.ToLower(strings.TrimSpace(token))]; ok {
		return k
	}
	return KindUnknown
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, KindCount-1)
	for k := KindBool1; k < KindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if k >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

func (k Kind) Known() bool {
	return k > KindUnknown && k < KindCount
}

// Width returns the declared bit width for a field of this kind.
func (k Kind) Width(length int) int {
	switch k {
	case KindString, KindByteGap:
		return length * 8
	case KindArbInt, KindArbUInt, KindBitGap:
		return length
	}
	if k >= KindCount {
		return 0
	}
	return fixedBits[k]
}

// Integer reports whether the kind is a fixed-width integer.
func (k Kind) Integer() bool {
	switch k {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128,
		KindInt8, KindInt16, KindInt32, KindInt64, KindInt128:
		return true
	}
	return false
}

func (k Kind) Signed() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindInt128, KindArbInt:
		return true
	}
	return false
}

// Format selects how fixed-width numbers are rendered.
type Format uint8

const (
	FormatNorm Format = iota
	FormatHex
	FormatBin
)

// ParseFormat maps a case-insensitive format token; anything unrecognized is
// FormatNorm.
func ParseFormat(token string) Format {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "h", "hex", "hexadecimal":
		return FormatHex
	case "b", "bin", "binary":
		return FormatBin
	default:
		return FormatNorm
	}
}

func (f Format) String() string {
	switch f {
	case FormatHex:
		return "hex"
	case FormatBin:
		return "bin"
	default:
		return "norm"
	}
}

package decode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/mview/internal/bits"
	"github.com/danmuck/mview/internal/schema"
)

// span is the in-range bit region of one field.
type span struct {
	window []byte
	start  int
	width  int
}

func (s span) aligned() ([]byte, error) {
	return bits.Extract(s.window, s.start, s.width)
}

type kindFunc func(d *Decoder, f schema.Field, s span) (string, error)

// kinds holds one decode operation per field kind.
var kinds = [schema.KindCount]kindFunc{
	schema.KindBool1:   decodeBool1,
	schema.KindBool8:   decodeBool8,
	schema.KindUInt8:   decodeInteger,
	schema.KindUInt16:  decodeInteger,
	schema.KindUInt32:  decodeInteger,
	schema.KindUInt64:  decodeInteger,
	schema.KindUInt128: decodeInteger,
	schema.KindInt8:    decodeInteger,
	schema.KindInt16:   decodeInteger,
	schema.KindInt32:   decodeInteger,
	schema.KindInt64:   decodeInteger,
	schema.KindInt128:  decodeInteger,
	schema.KindFloat32: decodeFloat,
	schema.KindFloat64: decodeFloat,
	schema.KindString:  decodeString,
	schema.KindArbInt:  decodeArbitrary,
	schema.KindArbUInt: decodeArbitrary,
	schema.KindByteGap: decodeGap,
	schema.KindBitGap:  decodeGap,
}

func lookup(k schema.Kind) kindFunc {
	if !k.Known() {
		return nil
	}
	return kinds[k]
}

func decodeBool1(_ *Decoder, _ schema.Field, s span) (string, error) {
	b, err := s.aligned()
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(bits.BitAt(b, 0)), nil
}

func decodeBool8(_ *Decoder, _ schema.Field, s span) (string, error) {
	b, err := s.aligned()
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(b[0] > 0), nil
}

func decodeInteger(d *Decoder, f schema.Field, s span) (string, error) {
	b, err := s.aligned()
	if err != nil {
		return "", err
	}
	u := bits.Load(b, d.opts.LittleEndian)
	switch f.Format {
	case schema.FormatHex:
		return bits.FormatHex(u), nil
	case schema.FormatBin:
		return bits.FormatBin(u), nil
	default:
		return bits.FormatDecimal(u, s.width, f.Kind.Signed()), nil
	}
}

func decodeFloat(d *Decoder, f schema.Field, s span) (string, error) {
	b, err := s.aligned()
	if err != nil {
		return "", err
	}
	u := bits.Load(b, d.opts.LittleEndian)
	if f.Kind == schema.KindFloat32 {
		return formatFloat(float64(math.Float32frombits(uint32(u.Lo))), 32), nil
	}
	return formatFloat(math.Float64frombits(u.Lo), 64), nil
}

func formatFloat(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, bitSize)
}

// decodeString maps every byte to the character with the same code point.
func decodeString(d *Decoder, f schema.Field, s span) (string, error) {
	b, err := s.aligned()
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.Grow(f.Length)
	for _, c := range b[:f.Length] {
		if c == '\n' && d.opts.FilterNewlines {
			continue
		}
		out.WriteRune(rune(c))
	}
	return out.String(), nil
}

func decodeArbitrary(_ *Decoder, f schema.Field, s span) (string, error) {
	if s.width > bits.ScratchBits {
		return "", ErrTooWide
	}
	b, err := s.aligned()
	if err != nil {
		return "", err
	}
	var scratch bits.Scratch
	scratch.FillFrom(b, s.width)
	if f.Kind == schema.KindArbUInt {
		return bits.FormatDecimal(scratch.Load(), bits.ScratchBits, false), nil
	}
	scratch.SignExtend(s.width)
	return bits.FormatDecimal(scratch.Load(), bits.ScratchBits, true), nil
}

func decodeGap(_ *Decoder, _ schema.Field, s span) (string, error) {
	return fmt.Sprintf("(gap of %d bit)", s.width), nil
}

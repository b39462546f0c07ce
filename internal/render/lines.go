package render

const (
	HexRowBytes = 16
	BinRowBytes = 8
	StatsLines  = 5
)

// Flags selects the optional blocks printed with each window.
type Flags struct {
	RawHex    bool
	RawBin    bool
	RawASCII  bool
	Timestamp bool
	Stats     bool
	BitPos    bool
}

// Header reports whether a header block and its separator line are printed.
func (f Flags) Header() bool {
	return f.RawBin || f.RawHex || f.Timestamp || f.Stats
}

func HexRows(n int) int {
	return rows(n, HexRowBytes)
}

func BinRows(n int) int {
	return rows(n, BinRowBytes)
}

func rows(n, per int) int {
	if n <= 0 {
		return 0
	}
	return (n + per - 1) / per
}

// LineCount is the number of terminal lines one window occupies: one line per
// rendered field plus the trailing blank line, and every enabled block.
func LineCount(fieldCount int, flags Flags, hexLines, binLines int) int {
	count := fieldCount + 1
	if flags.RawHex {
		count += hexLines
	}
	if flags.RawBin {
		count += binLines
	}
	if flags.RawASCII {
		count += hexLines
	}
	if flags.Timestamp {
		count++
	}
	if flags.Stats {
		count += StatsLines
	}
	if flags.BitPos {
		count += fieldCount
	}
	if flags.Header() {
		count++
	}
	return count
}

// WindowLines is LineCount for a window of n bytes.
func WindowLines(fieldCount int, flags Flags, n int) int {
	return LineCount(fieldCount, flags, HexRows(n), BinRows(n))
}

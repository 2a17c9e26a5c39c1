package pivot

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// NUMERIC PARSING + NATURAL KEY ORDERING
// ============================================================================

// ParseNumeric attempts to read a raw record value as a number.
// Strings parse via strconv after trimming; blanks, booleans, and nil fail.
func ParseNumeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, isFinite(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// naturalLess compares two strings with numeric awareness: digit runs
// compare as numbers, everything else case-insensitively byte-wise.
// "item2" < "item10", "Q2-2024" < "Q10-2024". Keys that fold equal
// (case, leading zeros) fall back to a raw byte compare so distinct keys
// always have one definite order.
func naturalLess(a, b string) bool {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ac, bc := a[ai], b[bi]
		if isDigit(ac) && isDigit(bc) {
			aStart, bStart := ai, bi
			for ai < len(a) && isDigit(a[ai]) {
				ai++
			}
			for bi < len(b) && isDigit(b[bi]) {
				bi++
			}
			aNum := strings.TrimLeft(a[aStart:ai], "0")
			bNum := strings.TrimLeft(b[bStart:bi], "0")
			if len(aNum) != len(bNum) {
				return len(aNum) < len(bNum)
			}
			if aNum != bNum {
				return aNum < bNum
			}
			continue
		}
		al, bl := lowerByte(ac), lowerByte(bc)
		if al != bl {
			return al < bl
		}
		ai++
		bi++
	}
	if restA, restB := len(a)-ai, len(b)-bi; restA != restB {
		return restA < restB
	}
	return a < b
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

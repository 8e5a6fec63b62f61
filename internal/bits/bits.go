// Package bits holds the small generic bit-twiddling helpers shared by the
// instruction decoder and emitters: sign extension and overflow detection
// for the widths MIPS64 arithmetic actually uses.
package bits

// SignExtend treats the low bitCount bits of x as a two's-complement value
// and extends the sign through the rest of T's width.
func SignExtend[T uint64 | uint32 | uint16 | uint8](x T, bitCount int) T {
	if bitCount <= 0 || bitCount >= bitWidth(x) {
		return x
	}
	if ((x >> (bitCount - 1)) & 1) == 1 {
		x |= ^T(0) << bitCount
	}
	return x
}

func bitWidth[T uint64 | uint32 | uint16 | uint8](x T) int {
	switch any(x).(type) {
	case uint64:
		return 64
	case uint32:
		return 32
	case uint16:
		return 16
	default:
		return 8
	}
}

// CheckAdditionOverflow reports whether a+b produced a signed overflow in sum.
func CheckAdditionOverflow[T int64 | int32](a, b, sum T) bool {
	return ((a > 0) && (b > 0) && (sum < 0)) || ((a < 0) && (b < 0) && (sum > 0))
}

// CheckSubtractionOverflow reports whether a-b produced a signed overflow in diff.
func CheckSubtractionOverflow[T int64 | int32](a, b, diff T) bool {
	return ((a < 0) && (b > 0) && (diff > 0)) || ((a > 0) && (b < 0) && (diff < 0))
}

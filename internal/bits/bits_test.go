package bits

import "testing"

func TestSignExtend(t *testing.T) {
	cases := []struct {
		x        uint64
		bitCount int
		want     uint64
	}{
		{0x7FFF, 16, 0x7FFF},
		{0x8000, 16, 0xFFFFFFFFFFFF8000},
		{0xFF, 8, 0xFFFFFFFFFFFFFFFF},
		{0x7F, 8, 0x7F},
	}
	for _, c := range cases {
		if got := SignExtend(c.x, c.bitCount); got != c.want {
			t.Errorf("SignExtend(%#x, %d) = %#x, want %#x", c.x, c.bitCount, got, c.want)
		}
	}
}

func TestSignExtendNoop(t *testing.T) {
	if got := SignExtend[uint32](0x12345678, 32); got != 0x12345678 {
		t.Errorf("SignExtend at full width changed the value: %#x", got)
	}
}

func TestCheckAdditionOverflow(t *testing.T) {
	var a, b int32 = 0x7FFFFFFF, 1
	if !CheckAdditionOverflow(a, b, a+b) {
		t.Error("expected overflow on INT32_MAX + 1")
	}
	a, b = 1, 2
	if CheckAdditionOverflow(a, b, a+b) {
		t.Error("unexpected overflow on 1 + 2")
	}
}

func TestCheckSubtractionOverflow(t *testing.T) {
	var a, b int32 = -0x7FFFFFFF - 1, 1
	if !CheckSubtractionOverflow(a, b, a-b) {
		t.Error("expected overflow on INT32_MIN - 1")
	}
}

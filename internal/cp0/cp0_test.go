package cp0

import "testing"

func TestRaiseExceptionVectorBEV(t *testing.T) {
	c := New(16)
	vec := c.RaiseException(ExcRI, 0x80001000, false)
	if vec != 0xFFFFFFFFBFC00200+0x180 {
		t.Errorf("unexpected BEV exception vector: %#x", vec)
	}
	if c.EPC() != 0x80001000 {
		t.Errorf("EPC = %#x, want faulting PC", c.EPC())
	}
	if c.Status()&statusEXL == 0 {
		t.Error("EXL should be set after RaiseException")
	}
}

func TestRaiseExceptionDelaySlotEPC(t *testing.T) {
	c := New(16)
	c.RaiseException(ExcOv, 0x80001004, true)
	if c.EPC() != 0x80001000 {
		t.Errorf("EPC in delay slot = %#x, want pc-4", c.EPC())
	}
	if c.Cause()&causeBD == 0 {
		t.Error("BD bit should be set when the faulting instruction is a delay slot")
	}
}

func TestERETRestoresEPC(t *testing.T) {
	c := New(16)
	c.RaiseException(ExcRI, 0x80002000, false)
	if pc := c.ERET(); pc != 0x80002000 {
		t.Errorf("ERET returned %#x, want %#x", pc, 0x80002000)
	}
	if c.Status()&statusEXL != 0 {
		t.Error("EXL should be cleared after ERET")
	}
}

func TestTLBWriteReadRoundTrip(t *testing.T) {
	c := New(4)
	const pfn0 = 0x12340 // a multiple of 64 so the PFN-field mask is a no-op
	c.Write(regEntryHi, 0, 0x0000000080001000)
	c.Write(regEntryLo0, 0, (pfn0<<6)|(3<<3)|(1<<2)|(1<<1))
	c.Write(regEntryLo1, 0, (pfn0<<6)|(3<<3)|(1<<2)|(1<<1))
	c.Write(regIndex, 0, 0)
	c.TLBWI()

	c.Write(regEntryHi, 0, 0)
	c.TLBR()
	if c.Read(regEntryLo0, 0)>>6 != pfn0 {
		t.Errorf("EntryLo0 PFN after TLBR = %#x, want %#x", c.Read(regEntryLo0, 0)>>6, pfn0)
	}
}

func TestTLBPFirstMatchNoUniquenessCheck(t *testing.T) {
	c := New(4)
	for _, idx := range []uint64{0, 1} {
		c.Write(regEntryHi, 0, 0x0000000080001000)
		c.Write(regEntryLo0, 0, (0x1000<<6)|(1<<1))
		c.Write(regEntryLo1, 0, (0x1001<<6)|(1<<1))
		c.Write(regIndex, 0, idx)
		c.TLBWI()
	}
	c.Write(regEntryHi, 0, 0x0000000080001000)
	c.TLBP()
	if c.Read(regIndex, 0) != 0 {
		t.Errorf("TLBP should report the first matching index (0), got %d", c.Read(regIndex, 0))
	}
}

func TestTickRaisesTimerInterrupt(t *testing.T) {
	c := New(4)
	c.Write(regCompare, 0, 100)
	c.Tick(100)
	if c.Cause()&causeTI == 0 {
		t.Error("Tick to Compare should set the TI cause bit")
	}
}

// EPC is not exported elsewhere; add a tiny accessor for the test via Read.
func (c *CP0) EPC() uint64 { return c.Read(regEPC, 0) }

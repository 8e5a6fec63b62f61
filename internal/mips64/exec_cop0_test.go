package mips64

import (
	"testing"

	"mipsjit/internal/cp0"
)

func encodeCop0(rs, rt, rd, sel uint8) uint32 {
	return uint32(opCOP0)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(rd)<<11 | uint32(sel)
}

const cop0RegStatus = 12

func TestMTC0MFC0RoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(4, 0x1) // Status.IE

	mtc0 := decode(0, encodeCop0(cp0MT, 4, cop0RegStatus, 0))
	buildExec(mtc0)(cpu)

	mfc0 := decode(0, encodeCop0(cp0MF, 5, cop0RegStatus, 0))
	buildExec(mfc0)(cpu)

	if got := cpu.GetReg(5); got != 1 {
		t.Errorf("MFC0 Status after MTC0 0x1 = %#x, want 1", got)
	}
}

func TestERETRestoresPCAndClearsLLBit(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.llBit = true
	cpu.raiseException(cp0.ExcRI, 0x80001000)
	cpu.trapped = false // simulate runBlock having already consumed the flag

	eret := decode(0, uint32(opCOP0)<<26|uint32(cp0CO)<<21|cp0fnERET)
	res := buildExec(eret)(cpu)

	if !res.isBranch || !res.taken {
		t.Fatal("ERET should report an unconditional taken branch")
	}
	if res.target != 0x80001000 {
		t.Errorf("ERET target = %#x, want the saved EPC %#x", res.target, 0x80001000)
	}
	if cpu.llBit {
		t.Error("ERET should clear the LL bit")
	}
}

package mips64

import "testing"

func encodeRType(rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(rs)<<21 | uint32(rt)<<16 | uint32(rd)<<11 | uint32(shamt)<<6 | uint32(funct)
}

func encodeIType(opcode, rs, rt uint8, imm uint16) uint32 {
	return uint32(opcode)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(imm)
}

func newTestCPU(t *testing.T) *CPU {
	t.Helper()
	cpu := newBareCPU(t)
	return cpu
}

func TestBuildSpecialExecADD(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(1, 2)
	cpu.SetReg(2, 3)
	d := decode(0, encodeRType(1, 2, 3, 0, fnADD))
	buildExec(d)(cpu)
	if got := cpu.GetReg(3); got != 5 {
		t.Errorf("ADD result = %d, want 5", got)
	}
}

func TestBuildSpecialExecADDOverflowTraps(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(1, 0x7FFFFFFF)
	cpu.SetReg(2, 1)
	d := decode(0x80001000, encodeRType(1, 2, 3, 0, fnADD))
	buildExec(d)(cpu)
	if !cpu.trapped {
		t.Fatal("expected ADD overflow to set trapped")
	}
	if cpu.GetReg(3) != 0 {
		t.Error("destination register should not be written when ADD overflows")
	}
}

func TestBuildSpecialExecDADDUWraps(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(1, ^uint64(0))
	cpu.SetReg(2, 2)
	d := decode(0, encodeRType(1, 2, 3, 0, fnDADDU))
	buildExec(d)(cpu)
	if got := cpu.GetReg(3); got != 1 {
		t.Errorf("DADDU wraparound result = %d, want 1", got)
	}
}

func TestBuildSpecialExecSLLSignExtends(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(1, 0x80000000)
	d := decode(0, encodeRType(0, 1, 2, 0, fnSLL)) // SLL r2, r1, 0
	buildExec(d)(cpu)
	if got := cpu.GetReg(2); got != 0xFFFFFFFF80000000 {
		t.Errorf("SLL by 0 result = %#x, want sign-extended %#x", got, uint64(0xFFFFFFFF80000000))
	}
}

func TestBuildSpecialExecDMULTU(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(1, ^uint64(0))
	cpu.SetReg(2, 2)
	d := decode(0, encodeRType(1, 2, 0, 0, fnDMULTU))
	buildExec(d)(cpu)
	wantLo := uint64(0xFFFFFFFFFFFFFFFE) // low 64 bits of (2^64-1)*2
	if cpu.LO != wantLo {
		t.Errorf("DMULTU LO = %#x, want %#x", cpu.LO, wantLo)
	}
}

func TestBuildSpecialExecDIVByZero(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(1, 10)
	cpu.SetReg(2, 0)
	d := decode(0, encodeRType(1, 2, 0, 0, fnDIV))
	buildExec(d)(cpu)
	if cpu.HI != 0 || cpu.LO != 0 {
		t.Error("DIV by zero should leave HI/LO as zero, not trap")
	}
}

func TestBuildImmExecADDIU(t *testing.T) {
	cpu := newTestCPU(t)
	d := decode(0, encodeIType(opADDIU, 0, 1, 0xFFFF)) // ADDIU r1, r0, -1
	buildExec(d)(cpu)
	if got := cpu.GetReg(1); got != ^uint64(0) {
		t.Errorf("ADDIU r0,-1 = %#x, want all-ones", got)
	}
}

func TestBuildImmExecLUI(t *testing.T) {
	cpu := newTestCPU(t)
	d := decode(0, encodeIType(opLUI, 0, 1, 0x8000))
	buildExec(d)(cpu)
	if got := cpu.GetReg(1); got != 0xFFFFFFFF80000000 {
		t.Errorf("LUI 0x8000 = %#x, want sign-extended upper half", got)
	}
}

func TestGetRegZeroAlwaysZero(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(0, 123)
	if cpu.GetReg(0) != 0 {
		t.Error("writes to r0 must be discarded")
	}
}

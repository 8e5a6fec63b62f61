package mips64

import (
	"mipsjit/internal/bits"
	"mipsjit/internal/cp0"
)

// buildSpecialExec covers every SPECIAL (opcode 0) instruction: the 32-bit
// and 64-bit ALU ops, shifts, multiply/divide, JR/JALR, and the trap family.
func buildSpecialExec(d Decoded) execFn {
	switch d.Funct {
	case fnADD:
		return func(cpu *CPU) branchResult {
			rs, rt := int32(cpu.GetReg(d.Rs)), int32(cpu.GetReg(d.Rt))
			sum := rs + rt
			if bits.CheckAdditionOverflow(rs, rt, sum) {
				cpu.raiseException(cp0.ExcOv, d.PC)
				return branchResult{}
			}
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(uint32(sum)), 32))
			return branchResult{}
		}
	case fnADDU:
		return func(cpu *CPU) branchResult {
			sum := uint32(cpu.GetReg(d.Rs)) + uint32(cpu.GetReg(d.Rt))
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(sum), 32))
			return branchResult{}
		}
	case fnDADD:
		return func(cpu *CPU) branchResult {
			rs, rt := int64(cpu.GetReg(d.Rs)), int64(cpu.GetReg(d.Rt))
			sum := rs + rt
			if bits.CheckAdditionOverflow(rs, rt, sum) {
				cpu.raiseException(cp0.ExcOv, d.PC)
				return branchResult{}
			}
			cpu.SetReg(d.Rd, uint64(sum))
			return branchResult{}
		}
	case fnDADDU:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rs)+cpu.GetReg(d.Rt))
			return branchResult{}
		}
	case fnSUB:
		return func(cpu *CPU) branchResult {
			rs, rt := int32(cpu.GetReg(d.Rs)), int32(cpu.GetReg(d.Rt))
			diff := rs - rt
			if bits.CheckSubtractionOverflow(rs, rt, diff) {
				cpu.raiseException(cp0.ExcOv, d.PC)
				return branchResult{}
			}
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(uint32(diff)), 32))
			return branchResult{}
		}
	case fnSUBU:
		return func(cpu *CPU) branchResult {
			diff := uint32(cpu.GetReg(d.Rs)) - uint32(cpu.GetReg(d.Rt))
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(diff), 32))
			return branchResult{}
		}
	case fnDSUB:
		return func(cpu *CPU) branchResult {
			rs, rt := int64(cpu.GetReg(d.Rs)), int64(cpu.GetReg(d.Rt))
			diff := rs - rt
			if bits.CheckSubtractionOverflow(rs, rt, diff) {
				cpu.raiseException(cp0.ExcOv, d.PC)
				return branchResult{}
			}
			cpu.SetReg(d.Rd, uint64(diff))
			return branchResult{}
		}
	case fnDSUBU:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rs)-cpu.GetReg(d.Rt))
			return branchResult{}
		}
	case fnAND:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rs)&cpu.GetReg(d.Rt))
			return branchResult{}
		}
	case fnOR:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rs)|cpu.GetReg(d.Rt))
			return branchResult{}
		}
	case fnXOR:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rs)^cpu.GetReg(d.Rt))
			return branchResult{}
		}
	case fnNOR:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, ^(cpu.GetReg(d.Rs) | cpu.GetReg(d.Rt)))
			return branchResult{}
		}
	case fnSLT:
		return func(cpu *CPU) branchResult {
			if int64(cpu.GetReg(d.Rs)) < int64(cpu.GetReg(d.Rt)) {
				cpu.SetReg(d.Rd, 1)
			} else {
				cpu.SetReg(d.Rd, 0)
			}
			return branchResult{}
		}
	case fnSLTU:
		return func(cpu *CPU) branchResult {
			if cpu.GetReg(d.Rs) < cpu.GetReg(d.Rt) {
				cpu.SetReg(d.Rd, 1)
			} else {
				cpu.SetReg(d.Rd, 0)
			}
			return branchResult{}
		}
	case fnSLL:
		return func(cpu *CPU) branchResult {
			v := uint32(cpu.GetReg(d.Rt)) << d.Shamt
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(v), 32))
			return branchResult{}
		}
	case fnSRL:
		return func(cpu *CPU) branchResult {
			v := uint32(cpu.GetReg(d.Rt)) >> d.Shamt
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(v), 32))
			return branchResult{}
		}
	case fnSRA:
		return func(cpu *CPU) branchResult {
			v := int32(uint32(cpu.GetReg(d.Rt))) >> d.Shamt
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(uint32(v)), 32))
			return branchResult{}
		}
	case fnSLLV:
		return func(cpu *CPU) branchResult {
			s := cpu.GetReg(d.Rs) & 0x1F
			v := uint32(cpu.GetReg(d.Rt)) << s
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(v), 32))
			return branchResult{}
		}
	case fnSRLV:
		return func(cpu *CPU) branchResult {
			s := cpu.GetReg(d.Rs) & 0x1F
			v := uint32(cpu.GetReg(d.Rt)) >> s
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(v), 32))
			return branchResult{}
		}
	case fnSRAV:
		return func(cpu *CPU) branchResult {
			s := cpu.GetReg(d.Rs) & 0x1F
			v := int32(uint32(cpu.GetReg(d.Rt))) >> s
			cpu.SetReg(d.Rd, bits.SignExtend(uint64(uint32(v)), 32))
			return branchResult{}
		}
	case fnDSLL:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rt)<<d.Shamt)
			return branchResult{}
		}
	case fnDSLL32:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rt)<<(uint(d.Shamt)+32))
			return branchResult{}
		}
	case fnDSRL:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rt)>>d.Shamt)
			return branchResult{}
		}
	case fnDSRL32:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rt)>>(uint(d.Shamt)+32))
			return branchResult{}
		}
	case fnDSRA:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, uint64(int64(cpu.GetReg(d.Rt))>>d.Shamt))
			return branchResult{}
		}
	case fnDSRA32:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rd, uint64(int64(cpu.GetReg(d.Rt))>>(uint(d.Shamt)+32)))
			return branchResult{}
		}
	case fnDSLLV:
		return func(cpu *CPU) branchResult {
			s := cpu.GetReg(d.Rs) & 0x3F
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rt)<<s)
			return branchResult{}
		}
	case fnDSRLV:
		return func(cpu *CPU) branchResult {
			s := cpu.GetReg(d.Rs) & 0x3F
			cpu.SetReg(d.Rd, cpu.GetReg(d.Rt)>>s)
			return branchResult{}
		}
	case fnDSRAV:
		return func(cpu *CPU) branchResult {
			s := cpu.GetReg(d.Rs) & 0x3F
			cpu.SetReg(d.Rd, uint64(int64(cpu.GetReg(d.Rt))>>s))
			return branchResult{}
		}
	case fnMOVN:
		return func(cpu *CPU) branchResult {
			if cpu.GetReg(d.Rt) != 0 {
				cpu.SetReg(d.Rd, cpu.GetReg(d.Rs))
			}
			return branchResult{}
		}
	case fnMOVZ:
		return func(cpu *CPU) branchResult {
			if cpu.GetReg(d.Rt) == 0 {
				cpu.SetReg(d.Rd, cpu.GetReg(d.Rs))
			}
			return branchResult{}
		}
	case fnMFHI:
		return func(cpu *CPU) branchResult { cpu.SetReg(d.Rd, cpu.HI); return branchResult{} }
	case fnMFLO:
		return func(cpu *CPU) branchResult { cpu.SetReg(d.Rd, cpu.LO); return branchResult{} }
	case fnMTHI:
		return func(cpu *CPU) branchResult { cpu.HI = cpu.GetReg(d.Rs); return branchResult{} }
	case fnMTLO:
		return func(cpu *CPU) branchResult { cpu.LO = cpu.GetReg(d.Rs); return branchResult{} }
	case fnMULT:
		return func(cpu *CPU) branchResult {
			prod := int64(int32(cpu.GetReg(d.Rs))) * int64(int32(cpu.GetReg(d.Rt)))
			cpu.LO = bits.SignExtend(uint64(uint32(prod)), 32)
			cpu.HI = bits.SignExtend(uint64(uint32(prod>>32)), 32)
			return branchResult{}
		}
	case fnMULTU:
		return func(cpu *CPU) branchResult {
			prod := uint64(uint32(cpu.GetReg(d.Rs))) * uint64(uint32(cpu.GetReg(d.Rt)))
			cpu.LO = bits.SignExtend(prod&0xFFFFFFFF, 32)
			cpu.HI = bits.SignExtend(prod>>32, 32)
			return branchResult{}
		}
	case fnDMULT:
		return func(cpu *CPU) branchResult {
			cpu.HI, cpu.LO = mul128Signed(int64(cpu.GetReg(d.Rs)), int64(cpu.GetReg(d.Rt)))
			return branchResult{}
		}
	case fnDMULTU:
		return func(cpu *CPU) branchResult {
			cpu.HI, cpu.LO = mul128Unsigned(cpu.GetReg(d.Rs), cpu.GetReg(d.Rt))
			return branchResult{}
		}
	case fnDIV:
		return func(cpu *CPU) branchResult {
			rs, rt := int32(cpu.GetReg(d.Rs)), int32(cpu.GetReg(d.Rt))
			if rt == 0 {
				cpu.LO, cpu.HI = 0, 0
				return branchResult{}
			}
			cpu.LO = bits.SignExtend(uint64(uint32(rs/rt)), 32)
			cpu.HI = bits.SignExtend(uint64(uint32(rs%rt)), 32)
			return branchResult{}
		}
	case fnDIVU:
		return func(cpu *CPU) branchResult {
			rs, rt := uint32(cpu.GetReg(d.Rs)), uint32(cpu.GetReg(d.Rt))
			if rt == 0 {
				cpu.LO, cpu.HI = 0, 0
				return branchResult{}
			}
			cpu.LO = bits.SignExtend(uint64(rs/rt), 32)
			cpu.HI = bits.SignExtend(uint64(rs%rt), 32)
			return branchResult{}
		}
	case fnDDIV:
		return func(cpu *CPU) branchResult {
			rs, rt := int64(cpu.GetReg(d.Rs)), int64(cpu.GetReg(d.Rt))
			if rt == 0 {
				cpu.LO, cpu.HI = 0, 0
				return branchResult{}
			}
			cpu.LO, cpu.HI = uint64(rs/rt), uint64(rs%rt)
			return branchResult{}
		}
	case fnDDIVU:
		return func(cpu *CPU) branchResult {
			rs, rt := cpu.GetReg(d.Rs), cpu.GetReg(d.Rt)
			if rt == 0 {
				cpu.LO, cpu.HI = 0, 0
				return branchResult{}
			}
			cpu.LO, cpu.HI = rs/rt, rs%rt
			return branchResult{}
		}
	case fnJR:
		return func(cpu *CPU) branchResult {
			return branchResult{isBranch: true, taken: true, target: cpu.GetReg(d.Rs)}
		}
	case fnJALR:
		return func(cpu *CPU) branchResult {
			target := cpu.GetReg(d.Rs)
			cpu.SetReg(d.Rd, d.PC+8)
			return branchResult{isBranch: true, taken: true, target: target}
		}
	case fnTEQ:
		return trapExec(d, func(rs, rt int64) bool { return rs == rt })
	case fnTNE:
		return trapExec(d, func(rs, rt int64) bool { return rs != rt })
	case fnTGE:
		return trapExec(d, func(rs, rt int64) bool { return rs >= rt })
	case fnTGEU:
		return trapExec(d, func(rs, rt int64) bool { return uint64(rs) >= uint64(rt) })
	case fnTLT:
		return trapExec(d, func(rs, rt int64) bool { return rs < rt })
	case fnTLTU:
		return trapExec(d, func(rs, rt int64) bool { return uint64(rs) < uint64(rt) })
	case fnSYSCALL:
		return func(cpu *CPU) branchResult {
			cpu.raiseException(cp0.ExcSys, d.PC)
			return branchResult{}
		}
	case fnBREAK:
		return func(cpu *CPU) branchResult {
			cpu.raiseException(cp0.ExcBp, d.PC)
			return branchResult{}
		}
	default:
		return buildUnknownExec(d)
	}
}

func trapExec(d Decoded, cond func(rs, rt int64) bool) execFn {
	return func(cpu *CPU) branchResult {
		if cond(int64(cpu.GetReg(d.Rs)), int64(cpu.GetReg(d.Rt))) {
			cpu.raiseException(cp0.ExcTr, d.PC)
		}
		return branchResult{}
	}
}

func mul128Signed(a, b int64) (hi, lo uint64) {
	hiU, loU := mul128Unsigned(uint64(a), uint64(b))
	if a < 0 {
		hiU -= uint64(b)
	}
	if b < 0 {
		hiU -= uint64(a)
	}
	return hiU, loU
}

func mul128Unsigned(a, b uint64) (hi, lo uint64) {
	aLo, aHi := a&0xFFFFFFFF, a>>32
	bLo, bHi := b&0xFFFFFFFF, b>>32

	t := aLo * bLo
	w0 := t & 0xFFFFFFFF
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & 0xFFFFFFFF
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	lo = (t << 32) | w0
	hi = aHi*bHi + w2 + k
	return hi, lo
}

// buildImmExec covers the immediate-operand ALU ops (opcodes outside
// SPECIAL/REGIMM/COP0/branches/memory): ADDI/ADDIU/SLTI/SLTIU/ANDI/ORI/XORI/
// LUI/DADDI/DADDIU.
func buildImmExec(d Decoded) execFn {
	switch d.Opcode {
	case opADDI:
		return func(cpu *CPU) branchResult {
			rs := int32(cpu.GetReg(d.Rs))
			imm := int32(int16(d.Imm))
			sum := rs + imm
			if bits.CheckAdditionOverflow(rs, imm, sum) {
				cpu.raiseException(cp0.ExcOv, d.PC)
				return branchResult{}
			}
			cpu.SetReg(d.Rt, bits.SignExtend(uint64(uint32(sum)), 32))
			return branchResult{}
		}
	case opADDIU:
		return func(cpu *CPU) branchResult {
			sum := uint32(cpu.GetReg(d.Rs)) + uint32(int32(int16(d.Imm)))
			cpu.SetReg(d.Rt, bits.SignExtend(uint64(sum), 32))
			return branchResult{}
		}
	case opDADDI:
		return func(cpu *CPU) branchResult {
			rs := int64(cpu.GetReg(d.Rs))
			imm := int64(int16(d.Imm))
			sum := rs + imm
			if bits.CheckAdditionOverflow(rs, imm, sum) {
				cpu.raiseException(cp0.ExcOv, d.PC)
				return branchResult{}
			}
			cpu.SetReg(d.Rt, uint64(sum))
			return branchResult{}
		}
	case opDADDIU:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rt, cpu.GetReg(d.Rs)+uint64(int64(int16(d.Imm))))
			return branchResult{}
		}
	case opSLTI:
		return func(cpu *CPU) branchResult {
			if int64(cpu.GetReg(d.Rs)) < int64(int16(d.Imm)) {
				cpu.SetReg(d.Rt, 1)
			} else {
				cpu.SetReg(d.Rt, 0)
			}
			return branchResult{}
		}
	case opSLTIU:
		return func(cpu *CPU) branchResult {
			if cpu.GetReg(d.Rs) < uint64(int64(int16(d.Imm))) {
				cpu.SetReg(d.Rt, 1)
			} else {
				cpu.SetReg(d.Rt, 0)
			}
			return branchResult{}
		}
	case opANDI:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rt, cpu.GetReg(d.Rs)&d.ImmZero())
			return branchResult{}
		}
	case opORI:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rt, cpu.GetReg(d.Rs)|d.ImmZero())
			return branchResult{}
		}
	case opXORI:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rt, cpu.GetReg(d.Rs)^d.ImmZero())
			return branchResult{}
		}
	case opLUI:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rt, bits.SignExtend(uint64(d.Imm)<<16, 32))
			return branchResult{}
		}
	default:
		return buildUnknownExec(d)
	}
}

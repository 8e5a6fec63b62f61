package mips64

import "mipsjit/internal/cp0"

// buildJumpExec covers J and JAL: unconditional, unconditionally-taken jumps
// whose target is formed from the top bits of PC+4 and the 26-bit target
// field shifted left two.
func buildJumpExec(d Decoded) execFn {
	linkPC := d.PC + 8
	target := (d.PC+4)&0xFFFFFFFFF0000000 | uint64(d.Target)<<2
	switch d.Opcode {
	case opJAL:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(31, linkPC)
			return branchResult{isBranch: true, taken: true, target: target}
		}
	default: // opJ
		return func(cpu *CPU) branchResult {
			return branchResult{isBranch: true, taken: true, target: target}
		}
	}
}

// buildBranchExec covers the PC-relative conditional branches, both the
// always-evaluate-delay-slot family (BEQ/BNE/BLEZ/BGTZ) and the "likely"
// family whose delay slot is nullified when the branch is not taken.
func buildBranchExec(d Decoded) execFn {
	target := d.PC + 4 + (d.ImmSign() << 2)
	likely := d.Opcode == opBEQL || d.Opcode == opBNEL || d.Opcode == opBLEZL || d.Opcode == opBGTZL

	var cond func(cpu *CPU) bool
	switch d.Opcode {
	case opBEQ, opBEQL:
		cond = func(cpu *CPU) bool { return cpu.GetReg(d.Rs) == cpu.GetReg(d.Rt) }
	case opBNE, opBNEL:
		cond = func(cpu *CPU) bool { return cpu.GetReg(d.Rs) != cpu.GetReg(d.Rt) }
	case opBLEZ, opBLEZL:
		cond = func(cpu *CPU) bool { return int64(cpu.GetReg(d.Rs)) <= 0 }
	default: // opBGTZ, opBGTZL
		cond = func(cpu *CPU) bool { return int64(cpu.GetReg(d.Rs)) > 0 }
	}

	return func(cpu *CPU) branchResult {
		taken := cond(cpu)
		return branchResult{isBranch: true, taken: taken, likely: likely, target: target}
	}
}

// buildRegimmExec covers the REGIMM (opcode 1) family: the zero-compare
// branches (with their "link" and "likely" variants) and the immediate-form
// traps.
func buildRegimmExec(d Decoded) execFn {
	target := d.PC + 4 + (d.ImmSign() << 2)
	linkPC := d.PC + 8

	switch d.Sub() {
	case riBLTZ, riBLTZL:
		return branchOnRs(d, target, d.Sub() == riBLTZL, false, func(v int64) bool { return v < 0 })
	case riBGEZ, riBGEZL:
		return branchOnRs(d, target, d.Sub() == riBGEZL, false, func(v int64) bool { return v >= 0 })
	case riBLTZAL, riBLTZALL:
		return branchOnRs(d, target, d.Sub() == riBLTZALL, true, func(v int64) bool { return v < 0 })
	case riBGEZAL, riBGEZALL:
		return branchOnRs(d, target, d.Sub() == riBGEZALL, true, func(v int64) bool { return v >= 0 })
	case riTGEI:
		return trapImmExec(d, func(rs, imm int64) bool { return rs >= imm })
	case riTGEIU:
		return trapImmExec(d, func(rs, imm int64) bool { return uint64(rs) >= uint64(imm) })
	case riTLTI:
		return trapImmExec(d, func(rs, imm int64) bool { return rs < imm })
	case riTLTIU:
		return trapImmExec(d, func(rs, imm int64) bool { return uint64(rs) < uint64(imm) })
	case riTEQI:
		return trapImmExec(d, func(rs, imm int64) bool { return rs == imm })
	case riTNEI:
		return trapImmExec(d, func(rs, imm int64) bool { return rs != imm })
	default:
		_ = linkPC
		return buildUnknownExec(d)
	}
}

// Sub returns the REGIMM rt-field sub-opcode; it is named distinctly from
// Rt because on this family rt is not a register number.
func (d Decoded) Sub() uint8 { return d.Rt }

func branchOnRs(d Decoded, target uint64, likely, link bool, test func(int64) bool) execFn {
	linkPC := d.PC + 8
	return func(cpu *CPU) branchResult {
		if link {
			cpu.SetReg(31, linkPC)
		}
		taken := test(int64(cpu.GetReg(d.Rs)))
		return branchResult{isBranch: true, taken: taken, likely: likely, target: target}
	}
}

func trapImmExec(d Decoded, cond func(rs, imm int64) bool) execFn {
	imm := int64(int16(d.Imm))
	return func(cpu *CPU) branchResult {
		if cond(int64(cpu.GetReg(d.Rs)), imm) {
			cpu.raiseException(cp0.ExcTr, d.PC)
		}
		return branchResult{}
	}
}

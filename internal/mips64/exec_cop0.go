package mips64

import "mipsjit/internal/bits"

// buildCOP0Exec covers the COP0 (opcode 0x10) family: MFC0/DMFC0/MTC0/DMTC0
// register moves and, when rs selects the "CO" function encoding, the
// TLB/ERET operations.
func buildCOP0Exec(d Decoded) execFn {
	if d.Rs == cp0CO {
		switch d.Funct {
		case cp0fnTLBR:
			return func(cpu *CPU) branchResult { cpu.CP0.TLBR(); return branchResult{} }
		case cp0fnTLBWI:
			return func(cpu *CPU) branchResult {
				idx := cpu.CP0.TLBWI()
				if idx >= 0 {
					cpu.MTS32.InvalidateTLBIndex(idx)
					cpu.MTS64.InvalidateTLBIndex(idx)
				}
				return branchResult{}
			}
		case cp0fnTLBWR:
			return func(cpu *CPU) branchResult {
				idx := cpu.CP0.TLBWR()
				if idx >= 0 {
					cpu.MTS32.InvalidateTLBIndex(idx)
					cpu.MTS64.InvalidateTLBIndex(idx)
				}
				return branchResult{}
			}
		case cp0fnTLBP:
			return func(cpu *CPU) branchResult { cpu.CP0.TLBP(); return branchResult{} }
		case cp0fnERET:
			return func(cpu *CPU) branchResult {
				target := cpu.CP0.ERET()
				cpu.llBit = false
				return branchResult{isBranch: true, taken: true, target: target}
			}
		default:
			return buildUnknownExec(d)
		}
	}

	switch d.Rs {
	case cp0MF:
		return func(cpu *CPU) branchResult {
			v := cpu.CP0.Read(int(d.Rd), int(d.Sel))
			cpu.SetReg(d.Rt, bits.SignExtend(v&0xFFFFFFFF, 32))
			return branchResult{}
		}
	case cp0DMF:
		return func(cpu *CPU) branchResult {
			cpu.SetReg(d.Rt, cpu.CP0.Read(int(d.Rd), int(d.Sel)))
			return branchResult{}
		}
	case cp0MT:
		return func(cpu *CPU) branchResult {
			cpu.CP0.Write(int(d.Rd), int(d.Sel), cpu.GetReg(d.Rt)&0xFFFFFFFF)
			return branchResult{}
		}
	case cp0DMT:
		return func(cpu *CPU) branchResult {
			cpu.CP0.Write(int(d.Rd), int(d.Sel), cpu.GetReg(d.Rt))
			return branchResult{}
		}
	default:
		return buildUnknownExec(d)
	}
}

package mips64

import "sync"

// ilt is the global instruction lookup table: a lazily-built, read-only map
// from a decoded instruction's family/opcode back to its emitter function.
// It is immutable once built (all 2^6 major opcodes are fixed at compile
// time), so one process-wide instance is shared by every CPU rather than
// rebuilt per guest page the way a literal per-block jump table would be.
var (
	iltOnce  sync.Once
	iltTable [64]func(Decoded) execFn
)

func buildILT() {
	for op := range iltTable {
		iltTable[op] = buildUnknownExec
	}
	iltTable[opSPECIAL] = buildSpecialExec
	iltTable[opREGIMM] = buildRegimmExec
	iltTable[opCOP0] = buildCOP0Exec
	iltTable[opJ] = buildJumpExec
	iltTable[opJAL] = buildJumpExec
	for _, op := range []uint8{opBEQ, opBNE, opBLEZ, opBGTZ, opBEQL, opBNEL, opBLEZL, opBGTZL} {
		iltTable[op] = buildBranchExec
	}
	for _, op := range []uint8{opLB, opLBU, opLH, opLHU, opLW, opLWU, opLD,
		opLWL, opLWR, opLDL, opLDR, opSB, opSH, opSW, opSD,
		opSWL, opSWR, opSDL, opSDR, opLL, opLLD, opSC, opSCD, opCACHE} {
		iltTable[op] = buildMemExec
	}
	for _, op := range []uint8{opADDI, opADDIU, opSLTI, opSLTIU, opANDI, opORI, opXORI, opLUI, opDADDI, opDADDIU} {
		iltTable[op] = buildImmExec
	}
}

// lookupILT resolves a decoded instruction to its execFn through the shared
// table, building the table on first use. This is the one indirection every
// other emitter call in the package goes through.
func lookupILT(d Decoded) execFn {
	iltOnce.Do(buildILT)
	return iltTable[d.Opcode](d)
}

// isBranchOrJumpOpcode reports whether an opcode ever produces a delay slot,
// the information compile() needs to know it must also decode and emit the
// following instruction before closing out a block early.
func isBranchOrJumpOpcode(op uint8) bool {
	switch op {
	case opJ, opJAL, opBEQ, opBNE, opBLEZ, opBGTZ, opBEQL, opBNEL, opBLEZL, opBGTZL, opREGIMM:
		return true
	}
	return false
}

// isSpecialBranch reports whether a SPECIAL-family instruction (JR/JALR) is
// itself a branch; buildExec's family dispatch doesn't distinguish this
// until decode, so compile() checks funct directly.
func isSpecialBranch(funct uint8) bool {
	return funct == fnJR || funct == fnJALR
}

// isCOP0Branch reports whether a COP0-family instruction (ERET) is a branch.
func isCOP0Branch(d Decoded) bool {
	return d.Rs == cp0CO && d.Funct == cp0fnERET
}

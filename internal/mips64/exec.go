package mips64

import "mipsjit/internal/cp0"

// branchResult is what a decoded instruction's execFn reports back about
// control flow; non-branch instructions return the zero value.
type branchResult struct {
	isBranch bool
	taken    bool
	likely   bool // delay slot runs only when taken
	target   uint64
}

// execFn is the pure, decode-time-fixed semantics of one instruction. It is
// built once per decoded word through the ILT and then invoked against
// whichever CPU actually runs it: runBlock calls it from a TCB's instruction
// slot, and buildExec hands it out for direct calls. The package has no
// separate single-step interpreter; compiled blocks are the only path that
// runs guest code.
type execFn func(cpu *CPU) branchResult

// buildExec decodes the instruction's family and returns its execFn. It is
// the per-instruction emitter the ILT's lookup(insn_word) resolves to.
func buildExec(d Decoded) execFn {
	return lookupILT(d)
}

// buildUnknownExec is the catch-all emitter the ILT's contract requires: it
// matches any instruction word no other case claimed and raises Reserved
// Instruction, never panicking the dispatcher.
func buildUnknownExec(d Decoded) execFn {
	return func(cpu *CPU) branchResult {
		cpu.raiseException(cp0.ExcRI, d.PC)
		return branchResult{}
	}
}

// raiseException forwards to CP0 and applies the resulting vector/EPC/BD
// bookkeeping to the CPU, the same sequence every trapping emitter needs.
func (c *CPU) raiseException(code uint8, pc uint64) {
	vec := c.CP0.RaiseException(code, pc, c.inDelay)
	c.PC = vec
	c.inDelay = false
	c.trapped = true
}

// raiseMemException is raiseException plus the BadVAddr bookkeeping that
// only address-translation faults carry.
func (c *CPU) raiseMemException(code uint8, pc, badAddr uint64) {
	c.CP0.SetBadVAddr(badAddr)
	c.raiseException(code, pc)
}

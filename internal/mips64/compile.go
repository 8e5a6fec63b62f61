package mips64

import (
	"fmt"

	"mipsjit/internal/execpage"
)

// compile decodes one guest page (GuestPageInsns instructions, fewer if
// mapped memory runs out first) starting at pc's page boundary, builds an
// execFn per instruction through the ILT, and returns a live TCB. The exec
// page itself only records how many bytes of "host code" this block would
// have consumed in a real JIT, charged per instruction against the page's
// byte budget the way real emitted machine code would be.
func (c *CPU) compile(pc uint64) (*TCB, error) {
	pageStart := pc &^ uint64(pageOffsetMask)

	page, err := c.acquireExecPage()
	if err != nil {
		return nil, err
	}

	tcb := &TCB{StartPC: pageStart, state: tcbEmitting, page: page}
	tcb.Insns = make([]hostInsn, 0, GuestPageInsns)

	const bytesPerInsn = 8 // notional host-code footprint charged per guest instruction
	for i := 0; i < GuestPageInsns; i++ {
		insnPC := pageStart + uint64(i)*4
		word, ok := c.fetchQuiet(insnPC)
		if !ok {
			break
		}
		if page.Remaining() < bytesPerInsn {
			break
		}
		page.Append(make([]byte, bytesPerInsn))

		d := decode(insnPC, word)
		hi := hostInsn{decoded: d, exec: lookupILT(d)}

		if target, ok := staticBranchTarget(d); ok && target&^uint64(pageOffsetMask) == pageStart {
			tcb.addPatch(i, target)
		}
		if isBranchOrJumpOpcode(d.Opcode) || (d.Opcode == opSPECIAL && isSpecialBranch(d.Funct)) || isCOP0Branch(d) {
			hi.hasDelay = true
		}
		tcb.Insns = append(tcb.Insns, hi)

		if hi.hasDelay && i == GuestPageInsns-1 {
			dsPC := insnPC + 4
			if dsWord, ok := c.fetchQuiet(dsPC); ok {
				ds := decode(dsPC, dsWord)
				tcb.Insns = append(tcb.Insns, hostInsn{decoded: ds, exec: lookupILT(ds)})
			}
			break
		}
	}

	if len(tcb.Insns) == 0 {
		c.Exec.Release(page)
		return nil, fmt.Errorf("mips64: compile: no mapped instructions at %#x", pageStart)
	}

	tcb.ApplyPatches()
	return tcb, nil
}

// acquireExecPage gets a page from the exec-page allocator, running the
// alternating partial/total flush policy on exhaustion before retrying once.
func (c *CPU) acquireExecPage() (*execpage.Page, error) {
	page, err := c.Exec.Acquire()
	if err == nil {
		return page, nil
	}

	if c.lastFlush == FlushPartial {
		c.Blocks.FlushTotal(c.Exec)
		c.lastFlush = FlushTotal
	} else {
		c.Blocks.FlushPartial(c.Exec)
		c.lastFlush = FlushPartial
	}

	page, err = c.Exec.Acquire()
	if err != nil {
		return nil, fmt.Errorf("mips64: exec page pool exhausted after flush: %w", err)
	}
	return page, nil
}

// fetchQuiet fetches a 32-bit instruction word without raising a CPU
// exception on miss; used only by the speculative compiler.
func (c *CPU) fetchQuiet(vaddr uint64) (uint32, bool) {
	paddr, ok := c.translateQuiet(vaddr)
	if !ok {
		return 0, false
	}
	b, err := c.Mem.HostPointer(paddr, 4)
	if err != nil {
		return 0, false
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), true
}

// staticBranchTarget returns the compile-time-constant branch target for
// every opcode whose destination doesn't depend on register contents (i.e.
// everything except JR/JALR/ERET, resolved only at dispatch time).
func staticBranchTarget(d Decoded) (uint64, bool) {
	switch d.Opcode {
	case opJ, opJAL:
		return (d.PC+4)&0xFFFFFFFFF0000000 | uint64(d.Target)<<2, true
	case opBEQ, opBNE, opBLEZ, opBGTZ, opBEQL, opBNEL, opBLEZL, opBGTZL:
		return d.PC + 4 + (d.ImmSign() << 2), true
	case opREGIMM:
		switch d.Sub() {
		case riBLTZ, riBGEZ, riBLTZL, riBGEZL, riBLTZAL, riBGEZAL, riBLTZALL, riBGEZALL:
			return d.PC + 4 + (d.ImmSign() << 2), true
		}
	}
	return 0, false
}

package mips64

import "mipsjit/internal/cp0"

// Segment bases for the kernel-mode identity-mapped windows. A real MIPS64
// CPU has xkphys/xkseg too; this core only ever runs kernel-mode guest code
// (the router firmware dynamips targets), so only kseg0/kseg1/useg matter.
const (
	kseg0Base = 0xFFFFFFFF80000000
	kseg1Base = 0xFFFFFFFFA0000000
	ksegEnd   = 0xFFFFFFFFC0000000
)

// translate resolves a guest virtual address to a physical one, the slow
// path behind both instruction fetch and every MTS cache miss. kseg0/kseg1
// are identity-mapped minus their base and never consult the TLB; anything
// else falls through to a linear TLB scan.
func (c *CPU) translate(pc, vaddr uint64, forStore bool) (paddr uint64, cached, writable bool, tlbIdx int, ok bool) {
	switch {
	case vaddr >= kseg0Base && vaddr < kseg1Base:
		return vaddr - kseg0Base, true, true, -1, true
	case vaddr >= kseg1Base && vaddr < ksegEnd:
		return vaddr - kseg1Base, false, true, -1, true
	}
	return c.tlbTranslate(pc, vaddr, forStore)
}

func (c *CPU) tlbTranslate(pc, vaddr uint64, forStore bool) (paddr uint64, cached, writable bool, tlbIdx int, ok bool) {
	asid := uint8(c.CP0.EntryHi() & 0xFF)
	for i := 0; i < c.CP0.TLBSize(); i++ {
		e := c.CP0.TLBEntryAt(i)
		pageSize := e.PageSize()
		pairSize := pageSize * 2
		vpn2 := vaddr &^ (pairSize - 1)
		if e.VPN2 != vpn2 {
			continue
		}
		if !e.G && e.ASID != asid {
			continue
		}
		odd := vaddr&pageSize != 0
		pfn, valid, dirty, c0 := e.PFN0, e.V0, e.D0, e.C0
		if odd {
			pfn, valid, dirty, c0 = e.PFN1, e.V1, e.D1, e.C1
		}
		if !valid {
			c.raiseMemException(tlbExcCode(forStore), pc, vaddr)
			return 0, false, false, -1, false
		}
		if forStore && !dirty {
			c.raiseMemException(cp0.ExcMod, pc, vaddr)
			return 0, false, false, -1, false
		}
		offset := vaddr & (pageSize - 1)
		return (pfn << 12) + offset, c0 != 2, dirty, i, true
	}
	c.raiseMemException(tlbExcCode(forStore), pc, vaddr)
	return 0, false, false, -1, false
}

// translateQuiet is translate without the exception side effects, for the
// compiler's speculative instruction prefetch: a page that runs off the end
// of mapped memory should simply compile shorter, not fault the CPU before
// it has even reached that instruction.
func (c *CPU) translateQuiet(vaddr uint64) (paddr uint64, ok bool) {
	switch {
	case vaddr >= kseg0Base && vaddr < kseg1Base:
		return vaddr - kseg0Base, true
	case vaddr >= kseg1Base && vaddr < ksegEnd:
		return vaddr - kseg1Base, true
	}
	asid := uint8(c.CP0.EntryHi() & 0xFF)
	for i := 0; i < c.CP0.TLBSize(); i++ {
		e := c.CP0.TLBEntryAt(i)
		pageSize := e.PageSize()
		vpn2 := vaddr &^ (pageSize*2 - 1)
		if e.VPN2 != vpn2 || (!e.G && e.ASID != asid) {
			continue
		}
		odd := vaddr&pageSize != 0
		pfn, valid := e.PFN0, e.V0
		if odd {
			pfn, valid = e.PFN1, e.V1
		}
		if !valid {
			return 0, false
		}
		return (pfn << 12) + vaddr&(pageSize-1), true
	}
	return 0, false
}

func tlbExcCode(forStore bool) uint8 {
	if forStore {
		return cp0.ExcTLBS
	}
	return cp0.ExcTLBL
}

package mips64

import (
	"mipsjit/internal/cp0"
	"mipsjit/internal/mts"
)

// mtsPageShift is the soft-MMU cache's page granularity: the real MIPS
// minimum TLB page size, independent of GuestPageSize (the compilation unit
// used for the block cache/TCB, a distinct concept).
const (
	mtsPageShift = 12
	mtsPageSize  = 1 << mtsPageShift
)

// is32BitAddr reports whether vaddr is a sign-extended 32-bit value, the
// compatibility-segment addressing this core's MTS32 cache backs.
func is32BitAddr(vaddr uint64) bool {
	top := vaddr >> 32
	return top == 0 || top == 0xFFFFFFFF
}

// resolve returns the host byte slice backing vaddr's physical page and the
// byte offset into it, consulting the soft-MMU cache first and falling back
// to translate() plus a host-pointer lookup on miss. Any failure has already
// raised the appropriate exception and redirected cpu.PC.
func (c *CPU) resolve(pc, vaddr uint64, forStore bool) ([]byte, int, bool) {
	if is32BitAddr(vaddr) {
		return resolveWidth(c, c.MTS32, uint32(vaddr), pc, vaddr, forStore)
	}
	return resolveWidth(c, c.MTS64, vaddr, pc, vaddr, forStore)
}

func resolveWidth[T uint32 | uint64](c *CPU, cache *mts.Cache[T], key T, pc, vaddr uint64, forStore bool) ([]byte, int, bool) {
	off := int(uint64(key) & (mtsPageSize - 1))
	if e, hit := cache.Lookup(key, mtsPageShift); hit {
		if !forStore || e.Flags&mts.FlagWritable != 0 {
			return e.Host, off, true
		}
	}

	paddr, cached, writable, tlbIdx, ok := c.translate(pc, vaddr, forStore)
	if !ok {
		return nil, 0, false
	}
	pageBase := paddr &^ (mtsPageSize - 1)
	hostPage, err := c.Mem.HostPointer(pageBase, mtsPageSize)
	if err != nil {
		excCode := uint8(cp0.ExcAdEL)
		if forStore {
			excCode = cp0.ExcAdES
		}
		c.raiseMemException(excCode, pc, vaddr)
		return nil, 0, false
	}

	var flags mts.Flags
	if writable {
		flags |= mts.FlagWritable
	}
	if cached {
		flags |= mts.FlagCached
	}
	cache.Install(key, mtsPageShift, mts.Entry[T]{
		Host:     hostPage,
		Paddr:    pageBase,
		Flags:    flags,
		TLBIndex: tlbIdx,
	})
	return hostPage, off, true
}

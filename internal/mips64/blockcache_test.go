package mips64

import (
	"testing"

	"mipsjit/internal/execpage"
)

func newTestBlockCacheAllocator(t *testing.T) *execpage.Allocator {
	t.Helper()
	alloc, err := execpage.New(4*execpage.DefaultPageSize, execpage.DefaultPageSize)
	if err != nil {
		t.Fatalf("execpage.New: %v", err)
	}
	t.Cleanup(func() { alloc.Close() })
	return alloc
}

func newLiveTCB(t *testing.T, alloc *execpage.Allocator, startPC uint64) *TCB {
	t.Helper()
	pg, err := alloc.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	tcb := &TCB{StartPC: startPC, page: pg}
	tcb.Insns = []hostInsn{{exec: func(*CPU) branchResult { return branchResult{} }}}
	tcb.ApplyPatches()
	return tcb
}

func TestBlockCacheInsertLookupMiss(t *testing.T) {
	alloc := newTestBlockCacheAllocator(t)
	bc := NewBlockCache()
	tcb := newLiveTCB(t, alloc, testPageBase)
	bc.Insert(tcb)

	if bc.Lookup(testPageBase) != tcb {
		t.Error("expected a hit for the inserted page's start PC")
	}
	if bc.Lookup(testPageBase+4) != tcb {
		t.Error("expected a hit for an address inside the same page")
	}
	if bc.Lookup(testPageBase+GuestPageSize) != nil {
		t.Error("expected a miss for the next page")
	}
}

func TestBlockCacheFlushTotalReleasesPages(t *testing.T) {
	alloc := newTestBlockCacheAllocator(t)
	bc := NewBlockCache()
	bc.Insert(newLiveTCB(t, alloc, testPageBase))
	bc.Insert(newLiveTCB(t, alloc, testPageBase+GuestPageSize))

	if alloc.InUse() != 2 {
		t.Fatalf("InUse before flush = %d, want 2", alloc.InUse())
	}
	bc.FlushTotal(alloc)
	if bc.Count() != 0 {
		t.Errorf("Count after FlushTotal = %d, want 0", bc.Count())
	}
	if alloc.InUse() != 0 {
		t.Errorf("InUse after FlushTotal = %d, want 0", alloc.InUse())
	}
}

func TestBlockCacheFlushPartialEvictsLRUHalf(t *testing.T) {
	alloc, err := execpage.New(8*execpage.DefaultPageSize, execpage.DefaultPageSize)
	if err != nil {
		t.Fatalf("execpage.New: %v", err)
	}
	t.Cleanup(func() { alloc.Close() })

	bc := NewBlockCache()
	var tcbs []*TCB
	for i := 0; i < 4; i++ {
		tcb := newLiveTCB(t, alloc, testPageBase+uint64(i)*GuestPageSize)
		tcbs = append(tcbs, tcb)
		bc.Insert(tcb)
	}

	bc.FlushPartial(alloc)
	if bc.Count() != 2 {
		t.Fatalf("Count after FlushPartial = %d, want 2", bc.Count())
	}
	// The two most recently inserted (most recently used) should survive.
	if bc.Lookup(tcbs[3].StartPC) == nil || bc.Lookup(tcbs[2].StartPC) == nil {
		t.Error("expected the most-recently-inserted pages to survive FlushPartial")
	}
	if bc.Lookup(tcbs[0].StartPC) != nil || bc.Lookup(tcbs[1].StartPC) != nil {
		t.Error("expected the least-recently-used pages to be evicted")
	}
}

func TestBlockCacheInvalidateRange(t *testing.T) {
	alloc := newTestBlockCacheAllocator(t)
	bc := NewBlockCache()
	tcb := newLiveTCB(t, alloc, testPageBase)
	bc.Insert(tcb)

	bc.InvalidateRange(alloc, testPageBase+4, testPageBase+8)
	if bc.Lookup(testPageBase) != nil {
		t.Error("expected InvalidateRange to evict a page whose range overlaps a store")
	}
}

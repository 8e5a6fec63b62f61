// Package mts implements the soft-MMU the spec calls MTS (Memory Translation
// Subsystem): a direct-mapped hash cache from guest virtual page to host
// page, derived from the guest TLB. It is generic over the guest address
// width so the same code backs both the 32-bit and 64-bit addressing-mode
// caches a CPU carries, the way this codebase's SignExtend is generic over
// operand width instead of duplicated per width.
package mts

// Size is the fixed entry count of each per-mode hash cache.
const Size = 4096

// Flags on an installed entry.
type Flags uint8

const (
	FlagWritable Flags = 1 << iota
	FlagCOW            // write must take the slow path even though the entry is present
	FlagCached
)

// Entry is one installed guest-virtual-page -> host-page mapping.
type Entry[T uint32 | uint64] struct {
	GVPA     T      // guest virtual page address (page-aligned)
	Host     []byte // backing host bytes for this guest page
	Paddr    uint64 // guest physical address the page maps to
	Flags    Flags
	TLBIndex int // back-pointer so a TLB rewrite can invalidate this entry
	valid    bool
}

// Cache is one addressing-mode's 4096-entry soft-MMU hash table.
type Cache[T uint32 | uint64] struct {
	entries [Size]Entry[T]
}

// New returns an empty cache.
func New[T uint32 | uint64]() *Cache[T] {
	return &Cache[T]{}
}

func index[T uint32 | uint64](vaddr T, pageShift uint) int {
	return int((uint64(vaddr) >> pageShift) & (Size - 1))
}

// Lookup is the inlined fast path: hash, index, tag-compare. No locking —
// each CPU owns its own caches.
func (c *Cache[T]) Lookup(vaddr T, pageShift uint) (*Entry[T], bool) {
	e := &c.entries[index(vaddr, pageShift)]
	if !e.valid {
		return nil, false
	}
	pageBase := vaddr &^ (T(1)<<pageShift - 1)
	if e.GVPA != pageBase {
		return nil, false
	}
	return e, true
}

// Install populates the slot for vaddr's page (evicting whatever collided).
func (c *Cache[T]) Install(vaddr T, pageShift uint, e Entry[T]) {
	pageBase := vaddr &^ (T(1)<<pageShift - 1)
	e.GVPA = pageBase
	e.valid = true
	c.entries[index(vaddr, pageShift)] = e
}

// InvalidateTLBIndex clears every entry derived from the given guest TLB
// slot — called by TLBWI/TLBWR before the new mapping is installed.
func (c *Cache[T]) InvalidateTLBIndex(tlbIndex int) {
	for i := range c.entries {
		if c.entries[i].valid && c.entries[i].TLBIndex == tlbIndex {
			c.entries[i] = Entry[T]{}
		}
	}
}

// Reset clears every entry (a global MTS reset, e.g. ASID change policy or
// full TLB flush).
func (c *Cache[T]) Reset() {
	for i := range c.entries {
		c.entries[i] = Entry[T]{}
	}
}

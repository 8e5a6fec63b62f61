package mips64

import "mipsjit/internal/execpage"

// tcbState is the translation control block's lifecycle: free -> allocated
// -> emitting -> live -> dead. A TCB is reachable from the block cache only
// once it reaches live; runBlock refuses to execute anything still in
// emitting.
type tcbState int

const (
	tcbFree tcbState = iota
	tcbAllocated
	tcbEmitting
	tcbLive
	tcbDead
)

// hostInsn is one compiled guest instruction: its execFn plus enough of the
// decode to know whether it opens a delay slot.
type hostInsn struct {
	decoded  Decoded
	exec     execFn
	hasDelay bool // this instruction's successor in program order is a delay slot
}

// Patch is a forward reference recorded during compile for a branch/jump
// target inside the same guest page. Host code here is an array of Go
// closures addressed by index rather than relocatable machine bytes, so a
// "patch" resolves to a slice index instead of a byte displacement — but
// ApplyPatches is still a real step the TCB must pass through before going
// live, matching the emitting -> live transition the state machine requires.
type Patch struct {
	HostSite  int // index of the branch instruction itself
	TargetPC  uint64
	resolved  bool
	targetIdx int
}

// TCB is one compiled guest page: up to 256 instruction slots (fewer at the
// very end of a memory region), plus one extra slot holding the delay slot
// from the next page when the page's last instruction is a branch, its
// forward-branch patch list, and the
// exec-page slab it was charged against for accounting purposes.
type TCB struct {
	StartPC uint64
	Insns   []hostInsn
	Patches []Patch

	state tcbState
	page  *execpage.Page

	hashNext *TCB // collision chain within the block cache bucket
	prev     *TCB // block cache LRU/flush doubly-linked list
	next     *TCB

	flushGen uint64 // the cache generation this TCB was compiled under
}

// pcIndex returns the in-page instruction slot for pc, and whether pc is
// actually inside this page.
func (t *TCB) pcIndex(pc uint64) (int, bool) {
	if pc < t.StartPC || pc >= t.StartPC+GuestPageSize {
		return 0, false
	}
	return int(pc-t.StartPC) >> 2, true
}

// addPatch records a same-page forward/backward branch target seen during
// compile; ApplyPatches resolves every entry once the whole page is decoded.
func (t *TCB) addPatch(hostSite int, targetPC uint64) {
	t.Patches = append(t.Patches, Patch{HostSite: hostSite, TargetPC: targetPC})
}

// ApplyPatches resolves every recorded patch to its slot index and marks the
// TCB live. Call exactly once, after the page's instructions are fully
// decoded.
func (t *TCB) ApplyPatches() {
	for i := range t.Patches {
		p := &t.Patches[i]
		if idx, ok := t.pcIndex(p.TargetPC); ok {
			p.targetIdx = idx
		} else {
			p.targetIdx = -1 // target falls outside this page; the dispatcher re-hashes
		}
		p.resolved = true
	}
	t.state = tcbLive
}

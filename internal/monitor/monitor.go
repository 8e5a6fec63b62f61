// Package monitor provides the breakpoint table and a gated debug-logging
// helper with one mask bit per core subsystem. The dispatcher, block cache
// and soft-MMU do not call Debugf; the dispatcher logs through the CPU's
// *log.Logger. The mask+level
// gating style (a module keeps a bitmask of what it wants to hear about, and
// callers check mask&enabled before formatting anything) is carried over
// from an IBM S/370 emulator this project's author also keeps handy
// (util/debug's Debugf); that repository is no longer available to cite
// file-and-line against in this tree, so treat the grounding as "the same
// idiom," not a byte-for-byte port — see DESIGN.md.
package monitor

import (
	"log"
	"sync"
)

// BreakpointTable is read by the CPU thread every dispatch and written by
// the control interface; writes take a mutex, reads are a single map probe
// under the same mutex since the table is expected to be small.
type BreakpointTable struct {
	mu  sync.Mutex
	set map[uint64]struct{}
}

// NewBreakpointTable returns an empty table.
func NewBreakpointTable() *BreakpointTable {
	return &BreakpointTable{set: make(map[uint64]struct{})}
}

func (b *BreakpointTable) Add(pc uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set[pc] = struct{}{}
}

func (b *BreakpointTable) Remove(pc uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.set, pc)
}

func (b *BreakpointTable) Hit(pc uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.set[pc]
	return ok
}

func (b *BreakpointTable) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.set)
}

// List returns a sorted-by-insertion-undefined snapshot of armed breakpoints.
func (b *BreakpointTable) List() []uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uint64, 0, len(b.set))
	for pc := range b.set {
		out = append(out, pc)
	}
	return out
}

// Mask is a bitmask of debug-log subsystems.
type Mask uint32

const (
	Dispatcher Mask = 1 << iota
	BlockCache
	MTS
	CP0
	Emit
)

var enabled Mask

// SetMask sets which subsystems' Debugf calls actually print.
func SetMask(m Mask) { enabled = m }

// Debugf prints format/a under logger l if mask is enabled. l may be nil, in
// which case the default logger is used, matching the rest of this module's
// plain log.Printf style.
func Debugf(l *log.Logger, mask Mask, format string, a ...interface{}) {
	if enabled&mask == 0 {
		return
	}
	if l == nil {
		log.Printf(format, a...)
		return
	}
	l.Printf(format, a...)
}

// Package mips64 is the MIPS64 dynamic binary translator core: the guest
// CPU state, the instruction decoder and per-opcode semantics, the
// instruction lookup table, the translation control blocks and block cache,
// and the dispatcher loop that glues them together. It keeps the shape this
// module's MIPS32 interpreter used — decoded-instruction structs, a *CPU
// receiver threaded through execution, NewCPU/Run/Stop lifecycle — widened
// to 64-bit registers and rebuilt around a compile-and-cache dispatcher
// instead of direct switch-per-instruction interpretation.
package mips64

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"mipsjit/internal/config"
	"mipsjit/internal/cp0"
	"mipsjit/internal/execpage"
	"mipsjit/internal/memmap"
	"mipsjit/internal/monitor"
	"mipsjit/internal/mts"
)

// NumGPR is the guest general-purpose register count.
const NumGPR = 32

// GuestPageSize is the unit of compilation: 1 KiB, 256 MIPS64 instructions.
const (
	GuestPageSize  = 1024
	GuestPageInsns = GuestPageSize / 4
	pageOffsetMask = GuestPageSize - 1
)

// FlushMode is the exec-page exhaustion policy, alternated per acquisition
// failure; the mode lives on the CPU struct rather than as package state so
// that two CPUs flushing independently don't perturb each other. The zero
// value is FlushTotal, so the first exhaustion runs a partial flush.
type FlushMode int

const (
	FlushTotal FlushMode = iota
	FlushPartial
)

// CPU is the process-wide-per-guest-CPU structure: registers, CP0, the two
// soft-MMU caches, the block cache, the exec-page allocator, idle/breakpoint
// state. It is created at VM bring-up and destroyed at VM teardown; it is
// mutated only by its own dispatcher thread except for IRQ injection, which
// goes through CP0's atomic Cause.IP bit-ops.
type CPU struct {
	GPR [NumGPR]uint64
	HI  uint64
	LO  uint64
	PC  uint64

	llBit    bool
	llAddr   uint64
	inDelay  bool
	returnPC uint64 // bookkeeping carried across delay-slot emission, per the data model
	trapped  bool   // set by raiseException so runBlock knows to exit the current TCB

	CP0   *cp0.CP0
	MTS32 *mts.Cache[uint32]
	MTS64 *mts.Cache[uint64]
	Mem   *memmap.Memory

	Blocks *BlockCache
	Exec   *execpage.Allocator

	Breakpoints *monitor.BreakpointTable

	cfg config.Config
	log *log.Logger

	idleCount int
	lastFlush FlushMode

	instrCount uint64 // per-block performance counter, when enabled

	running atomic.Bool
	halted  atomic.Bool

	timerMu   sync.Mutex
	timerStop chan struct{}
}

// NewCPU wires together a fresh guest CPU: CP0, both soft-MMU caches, the
// block cache, and an mmap-backed exec-page pool sized from cfg.
func NewCPU(mem *memmap.Memory, cfg config.Config, logger *log.Logger) (*CPU, error) {
	if logger == nil {
		logger = log.Default()
	}
	alloc, err := execpage.New(int(cfg.ExecAreaSizeMB)*1024*1024, execpage.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("mips64: NewCPU: %w", err)
	}
	return &CPU{
		CP0:         cp0.New(cfg.TLBSize),
		MTS32:       mts.New[uint32](),
		MTS64:       mts.New[uint64](),
		Mem:         mem,
		Blocks:      NewBlockCache(),
		Exec:        alloc,
		Breakpoints: monitor.NewBreakpointTable(),
		cfg:         cfg,
		log:         logger,
	}, nil
}

// GetReg returns GPR[i]; GPR[0] is wired to zero.
func (c *CPU) GetReg(i uint8) uint64 {
	return c.GPR[i&0x1F]
}

// SetReg writes GPR[i], silently discarding writes to GPR[0].
func (c *CPU) SetReg(i uint8, v uint64) {
	if i&0x1F == 0 {
		return
	}
	c.GPR[i&0x1F] = v
}

// SetIRQ and ClearIRQ are the core's IRQ-injection external interface,
// atomic on CP0's Cause.IP per the concurrency model.
func (c *CPU) SetIRQ(n int)   { c.CP0.SetHWInterrupt(n, true) }
func (c *CPU) ClearIRQ(n int) { c.CP0.SetHWInterrupt(n, false) }

// AddBreakpoint and RemoveBreakpoint are the breakpoint-management external
// interface.
func (c *CPU) AddBreakpoint(pc uint64)    { c.Breakpoints.Add(pc) }
func (c *CPU) RemoveBreakpoint(pc uint64) { c.Breakpoints.Remove(pc) }

// PhysRead and PhysWrite are the register/memory-inspection external
// interface's memory half.
func (c *CPU) PhysRead(addr uint64, length int) ([]byte, error) { return c.Mem.PhysRead(addr, length) }
func (c *CPU) PhysWrite(addr uint64, data []byte) error         { return c.Mem.PhysWrite(addr, data) }

// Running reports whether the dispatcher loop is currently executing.
func (c *CPU) Running() bool { return c.running.Load() }

// Halted reports whether the CPU stopped itself, on a fatal condition or on
// reaching an armed breakpoint, as distinct from a caller-requested Stop.
func (c *CPU) Halted() bool { return c.halted.Load() }

// Close releases the CPU's exec-page pool. Call after Run has returned.
func (c *CPU) Close() error {
	return c.Exec.Close()
}

// timerTicker runs on its own goroutine per guest CPU (the "separate thread
// services the timer tick" of the dispatcher design): every tick it
// advances the virtual Count register and lets CP0 assert the timer IRQ.
func (c *CPU) timerTicker(period time.Duration, stop <-chan struct{}) {
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.CP0.Tick(1)
		}
	}
}

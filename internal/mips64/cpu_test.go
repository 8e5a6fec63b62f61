package mips64

import (
	"io"
	"log"
	"testing"

	"mipsjit/internal/config"
	"mipsjit/internal/memmap"
)

// newBareCPU builds a CPU wired to a small flat memmap.Memory, discarding log
// output, for use by every test in this package.
func newBareCPU(t *testing.T) *CPU {
	t.Helper()
	cfg := config.Default()
	cfg.RAMSizeMB = 1
	cfg.ROMSizeMB = 1
	cfg.ExecAreaSizeMB = 1
	mem := memmap.New(cfg.RAMSizeMB<<20, cfg.ROMSizeMB<<20, 0x1FC00000)
	cpu, err := NewCPU(mem, cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewCPU: %v", err)
	}
	t.Cleanup(func() { cpu.Close() })
	return cpu
}

// storeWord writes a guest instruction word at a kseg0 (identity-mapped
// cached) virtual address, so the compiler's fetchQuiet can see it without
// any TLB setup.
func storeWord(t *testing.T, cpu *CPU, vaddr uint64, word uint32) {
	t.Helper()
	if err := cpu.Mem.StoreWord(vaddr-kseg0Base, word); err != nil {
		t.Fatalf("StoreWord at %#x: %v", vaddr, err)
	}
}

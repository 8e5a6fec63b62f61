// Package config is the option table from the external-interfaces section,
// registered on a flag.FlagSet the way cmd/mipsvm registered "-v" and
// "-memory" directly: one flag per option, parsed once at process start,
// no config-file format of its own.
package config

import (
	"flag"
	"time"
)

// Config is every option the core recognises.
type Config struct {
	RAMSizeMB          uint64
	ROMSizeMB          uint64
	ExecAreaSizeMB     uint64
	IdlePC             uint64
	IdleMax            int
	IdleSleep          time.Duration
	TimerIRQCheckItv   int
	JITUse             bool
	FastMemOp          bool
	ExecBlkDirectJump  bool
	BreakpointsEnabled bool
	TLBSize            int
	Verbose            bool
}

// Default returns the option set this core ships with out of the box.
func Default() Config {
	return Config{
		RAMSizeMB:          64,
		ROMSizeMB:          4,
		ExecAreaSizeMB:     64,
		IdlePC:             0,
		IdleMax:            64,
		IdleSleep:          30 * time.Millisecond,
		TimerIRQCheckItv:   1000,
		JITUse:             true,
		FastMemOp:          true,
		ExecBlkDirectJump:  true,
		BreakpointsEnabled: false,
		TLBSize:            48,
		Verbose:            false,
	}
}

// RegisterFlags wires cfg's fields onto fs, seeded with cfg's current values
// as defaults.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Uint64Var(&cfg.RAMSizeMB, "ram-size", cfg.RAMSizeMB, "megabytes of guest RAM")
	fs.Uint64Var(&cfg.ROMSizeMB, "rom-size", cfg.ROMSizeMB, "megabytes of guest ROM")
	fs.Uint64Var(&cfg.ExecAreaSizeMB, "exec-area-size", cfg.ExecAreaSizeMB, "megabytes reserved for JIT exec pages")
	fs.Uint64Var(&cfg.IdlePC, "idle-pc", cfg.IdlePC, "guest PC whose repeated observation triggers idle sleep")
	fs.IntVar(&cfg.IdleMax, "idle-max", cfg.IdleMax, "dispatch count at idle-pc before sleeping")
	fs.DurationVar(&cfg.IdleSleep, "idle-sleep", cfg.IdleSleep, "sleep duration once idle threshold is reached")
	fs.IntVar(&cfg.TimerIRQCheckItv, "timer-irq-check-itv", cfg.TimerIRQCheckItv, "block dispatches between timer IRQ polls")
	fs.BoolVar(&cfg.JITUse, "jit-use", cfg.JITUse, "not consulted: the dispatcher always compiles and runs whole blocks")
	fs.BoolVar(&cfg.FastMemOp, "fast-memop", cfg.FastMemOp, "not consulted: memory ops always try the soft-MMU cache first")
	fs.BoolVar(&cfg.ExecBlkDirectJump, "exec-blk-direct-jump", cfg.ExecBlkDirectJump, "enable inline block-to-block linking")
	fs.BoolVar(&cfg.BreakpointsEnabled, "breakpoints-enabled", cfg.BreakpointsEnabled, "emit a breakpoint check per instruction")
	fs.IntVar(&cfg.TLBSize, "tlb-size", cfg.TLBSize, "number of guest TLB entries")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "enable verbose logging")
}

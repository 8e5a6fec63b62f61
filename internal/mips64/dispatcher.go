package mips64

import (
	"time"

	"mipsjit/internal/cp0"
)

// timerPeriod is the host-side tick backing the virtual Count register; the
// dispatcher checks for a pending interrupt before every block and again
// after every TimerIRQCheckItv blocks, not on every single instruction.
const timerPeriod = 100 * time.Microsecond

// Run is the dispatcher loop: look up (or compile) the block for the
// current PC, run it, check for interrupts between blocks and for
// breakpoints before each instruction, and apply the idle-sleep heuristic
// when PC repeatedly lands on the configured idle address. It returns once
// Stop is called or the CPU halts itself on an unrecoverable condition or an
// armed breakpoint.
func (c *CPU) Run() {
	c.running.Store(true)
	defer c.running.Store(false)

	c.timerMu.Lock()
	c.timerStop = make(chan struct{})
	stop := c.timerStop
	c.timerMu.Unlock()
	go c.timerTicker(timerPeriod, stop)
	defer close(stop)

	blocks := 0
	for c.running.Load() {
		if c.CP0.PendingInterrupt() {
			c.raiseException(cp0.ExcInt, c.PC)
			c.trapped = false
		}

		if c.cfg.BreakpointsEnabled && c.Breakpoints.Hit(c.PC) {
			c.halted.Store(true)
			return
		}

		tcb := c.Blocks.Lookup(c.PC)
		if tcb == nil {
			var err error
			tcb, err = c.compile(c.PC)
			if err != nil {
				c.log.Printf("mips64: %v; halting", err)
				c.halted.Store(true)
				return
			}
			c.Blocks.Insert(tcb)
		}

		c.runBlock(tcb)

		blocks++
		if c.cfg.TimerIRQCheckItv > 0 && blocks%c.cfg.TimerIRQCheckItv == 0 {
			if c.CP0.PendingInterrupt() {
				c.raiseException(cp0.ExcInt, c.PC)
				c.trapped = false
			}
		}

		c.pollIdle()
	}
}

// Stop requests the dispatcher loop exit at its next block boundary.
func (c *CPU) Stop() {
	c.running.Store(false)
}

func (c *CPU) pollIdle() {
	if c.cfg.IdleMax <= 0 {
		return
	}
	if c.PC == c.cfg.IdlePC {
		c.idleCount++
		if c.idleCount >= c.cfg.IdleMax {
			time.Sleep(c.cfg.IdleSleep)
			c.idleCount = 0
		}
		return
	}
	c.idleCount = 0
}

// runBlock executes a compiled page starting at the CPU's current PC,
// following in-page branches inline (exec_blk_direct_jump) and returning to
// the outer loop only when control leaves the page, a branch targets
// somewhere this TCB doesn't cover, or an instruction raises an exception.
func (c *CPU) runBlock(tcb *TCB) {
	if tcb.state != tcbLive {
		return
	}
	idx, ok := tcb.pcIndex(c.PC)
	if !ok {
		return
	}

	for {
		// Stop before an armed breakpoint; Run halts on it at the top of
		// its next iteration.
		if c.cfg.BreakpointsEnabled && c.Breakpoints.Hit(c.PC) {
			return
		}
		res := tcb.Insns[idx].exec(c)
		if c.trapped {
			c.trapped = false
			return
		}

		if !res.isBranch {
			c.PC += 4
			idx++
			if idx >= len(tcb.Insns) {
				return
			}
			continue
		}

		c.CP0.Step()
		delayIdx := idx + 1
		runDelay := delayIdx < len(tcb.Insns) && (!res.likely || res.taken)
		if runDelay {
			c.inDelay = true
			tcb.Insns[delayIdx].exec(c)
			c.inDelay = false
			if c.trapped {
				c.trapped = false
				return
			}
		}

		if !res.taken {
			c.PC += 8
			idx += 2
			if idx >= len(tcb.Insns) {
				return
			}
			continue
		}

		c.PC = res.target
		if c.cfg.ExecBlkDirectJump {
			if nidx, within := tcb.pcIndex(res.target); within {
				idx = nidx
				continue
			}
		}
		return
	}
}

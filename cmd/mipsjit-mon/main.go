// Command mipsjit-mon is the interactive monitor: it builds a CPU from the
// command-line options (optionally loading a ROM image), lets an operator
// inspect registers and memory, arm/disarm breakpoints, and run the CPU
// briefly (about one millisecond) or free-run it, pausing again on any
// keypress.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"mipsjit/internal/config"
	"mipsjit/internal/memmap"
	"mipsjit/internal/mips64"
)

func main() {
	cfg := config.Default()
	cfg.BreakpointsEnabled = true
	config.RegisterFlags(flag.CommandLine, &cfg)
	romPath := flag.String("rom", "", "path to a ROM image to load at the ROM base address")
	romBase := flag.Uint64("rom-base", 0x1FC00000, "guest physical address the ROM region is based at")
	entryPC := flag.Uint64("entry-pc", 0xFFFFFFFFBFC00000, "initial guest PC")
	flag.Parse()

	mem := memmap.New(cfg.RAMSizeMB<<20, cfg.ROMSizeMB<<20, *romBase)
	if *romPath != "" {
		data, err := os.ReadFile(*romPath)
		if err != nil {
			log.Fatalf("reading ROM image: %v", err)
		}
		if err := mem.LoadROM(data); err != nil {
			log.Fatalf("loading ROM image: %v", err)
		}
	}

	cpu, err := mips64.NewCPU(mem, cfg, log.Default())
	if err != nil {
		log.Fatalf("creating CPU: %v", err)
	}
	defer cpu.Close()
	cpu.PC = *entryPC

	mon := &monitor{cpu: cpu, in: bufio.NewScanner(os.Stdin)}
	mon.banner()
	mon.repl()
}

type monitor struct {
	cpu     *mips64.CPU
	in      *bufio.Scanner
	running bool
}

func (m *monitor) banner() {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("mipsjit monitor — type 'help' for commands")
	} else {
		fmt.Println("mipsjit monitor (non-interactive stdin)")
	}
}

func (m *monitor) repl() {
	for {
		fmt.Print("mon> ")
		if !m.in.Scan() {
			return
		}
		fields := strings.Fields(m.in.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "help":
			m.help()
		case "regs":
			m.dumpRegs()
		case "mem":
			m.dumpMem(fields[1:])
		case "break":
			m.setBreak(fields[1:])
		case "delete":
			m.clearBreak(fields[1:])
		case "breaks":
			m.listBreaks()
		case "step":
			m.step()
		case "continue", "c":
			m.continueUntilKeypress()
		case "quit", "q":
			m.cpu.Stop()
			return
		default:
			fmt.Println("unknown command, try 'help'")
		}
	}
}

func (m *monitor) help() {
	fmt.Println(`commands:
  regs                 dump GPR/HI/LO/PC
  mem <addr> <len>     hex-dump <len> bytes of physical memory at <addr>
  break <addr>         arm a breakpoint at guest PC <addr>
  delete <addr>        disarm a breakpoint
  breaks               list armed breakpoints
  step                 run for about 1 ms, then stop (not a single block)
  continue             free-run until any key is pressed
  quit                 stop the CPU and exit`)
}

func (m *monitor) dumpRegs() {
	for i := 0; i < mips64.NumGPR; i += 4 {
		fmt.Printf("r%-2d=%016x r%-2d=%016x r%-2d=%016x r%-2d=%016x\n",
			i, m.cpu.GetReg(uint8(i)),
			i+1, m.cpu.GetReg(uint8(i+1)),
			i+2, m.cpu.GetReg(uint8(i+2)),
			i+3, m.cpu.GetReg(uint8(i+3)))
	}
	fmt.Printf("pc=%016x\n", m.cpu.PC)
}

func (m *monitor) dumpMem(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: mem <addr> <len>")
		return
	}
	addr, err1 := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 64)
	length, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || length <= 0 {
		fmt.Println("bad address or length")
		return
	}
	data, err := m.cpu.PhysRead(addr, length)
	if err != nil {
		fmt.Println(err)
		return
	}
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Printf("%016x: % x\n", addr+uint64(off), data[off:end])
	}
}

func (m *monitor) setBreak(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: break <addr>")
		return
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 64)
	if err != nil {
		fmt.Println("bad address")
		return
	}
	m.cpu.AddBreakpoint(addr)
}

func (m *monitor) clearBreak(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: delete <addr>")
		return
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 64)
	if err != nil {
		fmt.Println("bad address")
		return
	}
	m.cpu.RemoveBreakpoint(addr)
}

func (m *monitor) listBreaks() {
	fmt.Println("armed breakpoints:")
	fmt.Println(m.cpu.Breakpoints.List())
}

func (m *monitor) step() {
	go m.cpu.Run()
	time.Sleep(time.Millisecond)
	m.cpu.Stop()
}

// continueUntilKeypress free-runs the CPU and pauses again as soon as the
// operator hits any key, without requiring Enter.
func (m *monitor) continueUntilKeypress() {
	if err := keyboard.Open(); err != nil {
		fmt.Println("keyboard unavailable, running until breakpoint:", err)
		m.cpu.Run()
		return
	}
	defer keyboard.Close()

	done := make(chan struct{})
	go func() {
		m.cpu.Run()
		close(done)
	}()

	go func() {
		keyboard.GetKey()
		m.cpu.Stop()
	}()

	<-done
}

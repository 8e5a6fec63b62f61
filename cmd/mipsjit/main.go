package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mipsjit/internal/config"
	"mipsjit/internal/memmap"
	"mipsjit/internal/mips64"
)

func main() {
	cfg := config.Default()
	config.RegisterFlags(flag.CommandLine, &cfg)
	romPath := flag.String("rom", "", "path to a ROM image to load at the ROM base address")
	romBase := flag.Uint64("rom-base", 0x1FC00000, "guest physical address the ROM region is based at")
	entryPC := flag.Uint64("entry-pc", 0xFFFFFFFFBFC00000, "initial guest PC")
	flag.Parse()

	printIfVerbose(cfg.Verbose, "Starting MIPS64 JIT VM...")

	printIfVerbose(cfg.Verbose, "Allocating %d MiB RAM, %d MiB ROM...", cfg.RAMSizeMB, cfg.ROMSizeMB)
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

	printIfVerbose(cfg.Verbose, "Starting CPU...")
	cpu, err := mips64.NewCPU(mem, cfg, log.Default())
	if err != nil {
		log.Fatalf("creating CPU: %v", err)
	}
	defer cpu.Close()

	cpu.PC = *entryPC

	done := make(chan struct{})

	printIfVerbose(cfg.Verbose, "Running CPU...")
	start := time.Now()

	go func() {
		cpu.Run()
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		printIfVerbose(cfg.Verbose, "Signal received, stopping CPU...")
		cpu.Stop()
		<-done
	case <-done:
	}

	elapsed := time.Since(start)
	printIfVerbose(cfg.Verbose, "CPU stopped.")
	printIfVerbose(cfg.Verbose, "Total execution time: %s", elapsed)

	if cpu.Halted() {
		printIfVerbose(cfg.Verbose, "CPU halted on an unrecoverable condition.")
	}
}

func printIfVerbose(verbose bool, format string, v ...interface{}) {
	if verbose {
		log.Printf(format, v...)
	}
}

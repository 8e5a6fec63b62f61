// Package memmap is the guest physical memory map: the external collaborator
// the core consults for ROM/RAM byte access. It is intentionally minimal —
// device regions, the NVRAM blob, and the hypervisor-owned image loaders are
// out of scope — but it gives the soft-MMU and the CLI something concrete to
// back guest addresses with, the same role mips32's flat byte-slice Memory
// played for the MIPS32 interpreter, widened to 64-bit addresses and two
// regions (RAM, ROM) with big-endian guest semantics.
package memmap

import "fmt"

// Memory is a flat RAM region plus a ROM region based at romBase.
type Memory struct {
	ram     []byte
	rom     []byte
	romBase uint64
}

// New allocates a Memory with the given RAM size and a ROM region of romSize
// bytes based at romBase.
func New(ramSize, romSize, romBase uint64) *Memory {
	return &Memory{
		ram:     make([]byte, ramSize),
		rom:     make([]byte, romSize),
		romBase: romBase,
	}
}

func (m *Memory) region(addr uint64, size int) ([]byte, uint64, error) {
	if addr >= m.romBase && addr+uint64(size) <= m.romBase+uint64(len(m.rom)) {
		return m.rom, addr - m.romBase, nil
	}
	if addr+uint64(size) <= uint64(len(m.ram)) && addr+uint64(size) >= addr {
		return m.ram, addr, nil
	}
	return nil, 0, fmt.Errorf("memmap: address %#x (len %d) out of range", addr, size)
}

// HostPointer returns the backing slice for a size-byte window starting at
// addr, for the soft-MMU fast path and for the exec-page code that wants a
// direct host pointer instead of a call back into this package per access.
func (m *Memory) HostPointer(addr uint64, size int) ([]byte, error) {
	region, off, err := m.region(addr, size)
	if err != nil {
		return nil, err
	}
	return region[off : off+uint64(size) : off+uint64(size)], nil
}

// LoadByte/LoadHalf/LoadWord/LoadDword read big-endian guest values.
func (m *Memory) LoadByte(addr uint64) (uint8, error) {
	b, err := m.HostPointer(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *Memory) LoadHalf(addr uint64) (uint16, error) {
	b, err := m.HostPointer(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (m *Memory) LoadWord(addr uint64) (uint32, error) {
	b, err := m.HostPointer(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (m *Memory) LoadDword(addr uint64) (uint64, error) {
	b, err := m.HostPointer(addr, 8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// StoreByte/StoreHalf/StoreWord/StoreDword write big-endian guest values.
func (m *Memory) StoreByte(addr uint64, v uint8) error {
	b, err := m.HostPointer(addr, 1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (m *Memory) StoreHalf(addr uint64, v uint16) error {
	b, err := m.HostPointer(addr, 2)
	if err != nil {
		return err
	}
	b[0], b[1] = byte(v>>8), byte(v)
	return nil
}

func (m *Memory) StoreWord(addr uint64, v uint32) error {
	b, err := m.HostPointer(addr, 4)
	if err != nil {
		return err
	}
	b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
	return nil
}

func (m *Memory) StoreDword(addr uint64, v uint64) error {
	b, err := m.HostPointer(addr, 8)
	if err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> uint(56-8*i))
	}
	return nil
}

// LoadROM copies an opaque ROM image blob into the ROM region starting at
// its base. The core does not interpret the image's contents.
func (m *Memory) LoadROM(data []byte) error {
	if uint64(len(data)) > uint64(len(m.rom)) {
		return fmt.Errorf("memmap: ROM image (%d bytes) exceeds ROM region (%d bytes)", len(data), len(m.rom))
	}
	copy(m.rom, data)
	return nil
}

// RAMSize and ROMBase expose the region layout for callers building
// addresses (the monitor, tests).
func (m *Memory) RAMSize() uint64 { return uint64(len(m.ram)) }
func (m *Memory) ROMBase() uint64 { return m.romBase }
func (m *Memory) ROMSize() uint64 { return uint64(len(m.rom)) }

// PhysRead/PhysWrite are the external-interface bulk accessors
// (phys_mem_read/phys_mem_write) used by the monitor.
func (m *Memory) PhysRead(addr uint64, length int) ([]byte, error) {
	b, err := m.HostPointer(addr, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, b)
	return out, nil
}

func (m *Memory) PhysWrite(addr uint64, data []byte) error {
	b, err := m.HostPointer(addr, len(data))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

// Package execpage owns the single large executable, writable host memory
// region the JIT carves pages from. This is the "unsafe seam" the design
// notes call out: rather than hand-roll a raw-pointer slab, it maps a real
// RWX region with golang.org/x/sys/unix and carves it into fixed-size page
// slices, which is strategy (a) from those notes done with a real syscall
// instead of a fabricated stand-in.
package execpage

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultPageSize and DefaultPoolSize match the reference sizing: 32 KiB
// pages out of a 64 MiB pool.
const (
	DefaultPageSize = 32 * 1024
	DefaultPoolSize = 64 * 1024 * 1024
)

// ErrExhausted is returned by Acquire when the free list is empty; the
// caller is responsible for running a flush policy and retrying.
var ErrExhausted = errors.New("execpage: pool exhausted")

// Page is one fixed-size exec-page slab, carved out of the mmaped pool and
// linked onto the allocator's free list via next.
type Page struct {
	Data []byte
	used int
	next *Page
}

// Used returns how many bytes of this page have been written.
func (p *Page) Used() int { return p.used }

// Remaining returns how many bytes are left before the page is full.
func (p *Page) Remaining() int { return len(p.Data) - p.used }

// Append copies code into the page at the current write position and
// returns the offset it was written at. It never writes past len(Data);
// callers must check Remaining first.
func (p *Page) Append(code []byte) int {
	off := p.used
	n := copy(p.Data[off:], code)
	p.used += n
	return off
}

func (p *Page) reset() {
	p.used = 0
	p.next = nil
}

// Allocator owns the mmaped pool and the LIFO free list of pages carved
// from it. An allocator is only ever touched by its owning CPU's dispatcher
// thread, so — per the concurrency model — it needs no internal locking.
type Allocator struct {
	slab     []byte
	pageSize int
	free     *Page
	acquired int
}

// New mmaps a poolSize-byte RWX region (rounded down to a whole number of
// pageSize pages) and carves it into a free list of Pages.
func New(poolSize, pageSize int) (*Allocator, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	poolSize = (poolSize / pageSize) * pageSize
	if poolSize == 0 {
		poolSize = pageSize
	}

	slab, err := unix.Mmap(-1, 0, poolSize,
		unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("execpage: mmap %d bytes: %w", poolSize, err)
	}

	a := &Allocator{slab: slab, pageSize: pageSize}
	for off := 0; off+pageSize <= len(slab); off += pageSize {
		pg := &Page{Data: slab[off : off+pageSize : off+pageSize]}
		pg.next = a.free
		a.free = pg
	}
	return a, nil
}

// PageSize returns the configured page size.
func (a *Allocator) PageSize() int { return a.pageSize }

// Acquire pops a page off the free list, or returns ErrExhausted.
func (a *Allocator) Acquire() (*Page, error) {
	if a.free == nil {
		return nil, ErrExhausted
	}
	pg := a.free
	a.free = pg.next
	pg.reset()
	a.acquired++
	return pg, nil
}

// Release returns a page to the free list (O(1), LIFO).
func (a *Allocator) Release(pg *Page) {
	pg.reset()
	pg.next = a.free
	a.free = pg
	a.acquired--
}

// InUse reports how many pages are currently out on loan.
func (a *Allocator) InUse() int { return a.acquired }

// Close unmaps the pool. It must only be called after every page has been
// released and no TCB still references one.
func (a *Allocator) Close() error {
	return unix.Munmap(a.slab)
}

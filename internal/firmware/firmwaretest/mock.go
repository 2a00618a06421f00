// Package firmwaretest provides plain in-memory fakes for the
// internal/firmware collaborator interfaces, in the style the teacher uses
// throughout kernel/mem/pmm/allocator's tests: swap a package-level function
// variable or, here, hand a test a struct literal, rather than reach for a
// mocking framework.
package firmwaretest

import (
	"errors"

	"github.com/MercurOS/maia/internal/firmware"
)

// Console records every write; ClearScreen just appends a marker so tests can
// assert ordering against WriteString calls.
type Console struct {
	Lines []string
}

func (c *Console) WriteString(s string) { c.Lines = append(c.Lines, s) }
func (c *Console) ClearScreen()         { c.Lines = append(c.Lines, "\x00clear") }

// Region is one backing allocation tracked by Memory.
type Region struct {
	Base  uintptr
	Bytes []byte
}

// Memory is a fake firmware.Memory. NextBase is handed out by AllocatePages
// and then advanced by count pages, so callers can predict addresses without
// needing a real allocator. Pages can be preloaded with FailAfter to exercise
// the MemoryAllocationFailed path.
type Memory struct {
	NextBase   uintptr
	// FailAfter, when non-zero, allows the first FailAfter allocations to
	// succeed and fails every one after. AlwaysFail fails every
	// allocation outright, including the first.
	FailAfter  int
	AlwaysFail bool
	allocCount int
	Regions    []Region
	MapSnap    firmware.MemoryMapSnapshot
	MapErr     error
	Descs      []firmware.MemoryDescriptor
}

func (m *Memory) exhausted() bool {
	if m.AlwaysFail {
		return true
	}
	if m.FailAfter <= 0 {
		return false
	}
	m.allocCount++
	return m.allocCount > m.FailAfter
}

func (m *Memory) AllocatePages(count uint64) (uintptr, bool) {
	if m.exhausted() {
		return 0, false
	}
	base := m.NextBase
	buf := make([]byte, count*4096)
	m.Regions = append(m.Regions, Region{Base: base, Bytes: buf})
	m.NextBase += uintptr(count) * 4096
	return base, true
}

func (m *Memory) AllocatePagesAt(physAddr uintptr, count uint64) bool {
	if m.exhausted() {
		return false
	}
	buf := make([]byte, count*4096)
	m.Regions = append(m.Regions, Region{Base: physAddr, Bytes: buf})
	return true
}

func (m *Memory) PageBytes(base uintptr, count uint64) []byte {
	for _, r := range m.Regions {
		if r.Base == base {
			n := int(count * 4096)
			if n > len(r.Bytes) {
				n = len(r.Bytes)
			}
			return r.Bytes[:n]
		}
	}
	return nil
}

func (m *Memory) GetMemoryMap() (firmware.MemoryMapSnapshot, error) {
	if m.MapErr != nil {
		return firmware.MemoryMapSnapshot{}, m.MapErr
	}
	return m.MapSnap, nil
}

func (m *Memory) VisitMap(snap firmware.MemoryMapSnapshot, visit firmware.MemRegionVisitor) {
	for i := range m.Descs {
		if !visit(&m.Descs[i]) {
			return
		}
	}
}

// Configuration is a fake firmware.Configuration backed by a plain map.
type Configuration struct {
	Tables map[[16]byte]uintptr
}

func (c *Configuration) LookupTable(guid [16]byte) (uintptr, bool) {
	addr, ok := c.Tables[guid]
	return addr, ok
}

// Image is a fake firmware.Image. ErrStaleKey simulates the UEFI contract
// rejecting a memory map key that no longer matches the current map.
type Image struct {
	ExitCalls  []uintptr
	ErrStaleKey bool
}

var ErrStaleMapKey = errors.New("firmwaretest: stale memory map key")

func (im *Image) ExitBootServices(mapKey uintptr) error {
	im.ExitCalls = append(im.ExitCalls, mapKey)
	if im.ErrStaleKey {
		return ErrStaleMapKey
	}
	return nil
}

// Package runtimeshim patches the three Go runtime hooks gopher-os's
// kernel/goruntime/bootstrap.go patches — sysReserve, sysMap, sysAlloc — so
// the Go allocator can initialize on bare UEFI firmware with no host OS
// underneath it. This is the mechanism SPEC_FULL.md §0 leans on to justify a
// rich stdlib/third-party stack throughout the rest of the loader despite
// there being no OS: once Init has been called, runtime.mallocinit
// gets its backing pages from firmware.Memory.AllocatePages instead of a
// real mmap(2)/VirtualAlloc syscall, and everything above that point is
// ordinary Go.
//
// Where gopher-os's version maps through its own virtual memory manager
// (kernel/mem/vmm.Map establishing page-table entries, a concern this
// loader's domain has no equivalent of — spec.md §6 Non-goals excludes
// paging/MMU setup entirely), this version has no page tables to populate:
// UEFI already runs with an identity map, so sysMap/sysAlloc only need the
// physical pages themselves, not a separate mapping step.
package runtimeshim

import (
	"unsafe"

	"github.com/MercurOS/maia/internal/bootcfg"
	"github.com/MercurOS/maia/internal/firmware"
)

// firmwareMemory is set once by Init and consulted by every hook below. A
// package-level variable is unavoidable here — these functions are invoked
// by the Go runtime itself via go:linkname, with a fixed signature the
// runtime dictates, so there is no parameter list to thread firmware.Memory
// through. This is a deliberate, narrowly-scoped exception to the rest of
// this module's explicit-capability style.
var firmwareMemory firmware.Memory

// Init must be called after UEFI boot services are confirmed available and
// before any code that depends on the Go heap runs (map/slice growth,
// string concatenation, interface boxing, ...). It has no gopher-os
// equivalent function signature to adapt since gopher-os's goruntime.Init
// took no arguments (it only ever had one VMM instance, package-global);
// here Init must be handed the capability instead.
func Init(mem firmware.Memory) {
	firmwareMemory = mem
}

//go:linkname mSysStatInc runtime.mSysStatInc
func mSysStatInc(*uint64, uintptr)

func pageRound(size uintptr) uintptr {
	return (size + bootcfg.PageMask) &^ bootcfg.PageMask
}

// sysReserve reserves address space without allocating physical pages.
// There is no virtual/physical distinction pre-ExitBootServices (identity
// map), so "reserving" and "allocating" are the same AllocatePages call;
// this mirrors gopher-os's sysReserve/sysMap split in name only, to keep the
// three hooks easy to cross-reference against bootstrap.go.
//
//go:redirect-from runtime.sysReserve
//go:nosplit
func sysReserve(_ unsafe.Pointer, size uintptr, reserved *bool) unsafe.Pointer {
	pages := pageRound(size) >> bootcfg.PageShift
	base, ok := firmwareMemory.AllocatePages(uint64(pages))
	if !ok {
		*reserved = false
		return unsafe.Pointer(uintptr(0))
	}
	*reserved = true
	return unsafe.Pointer(base)
}

// sysMap is a no-op beyond accounting: the pages sysReserve obtained are
// already backed by firmware-allocated physical memory, so there is no
// separate mapping step to perform.
//
//go:redirect-from runtime.sysMap
//go:nosplit
func sysMap(virtAddr unsafe.Pointer, size uintptr, reserved bool, sysStat *uint64) unsafe.Pointer {
	if !reserved {
		panic("sysMap should only be called with reserved=true")
	}
	mSysStatInc(sysStat, uintptr(pageRound(size)))
	return virtAddr
}

// sysAlloc reserves and "maps" in one call, for paths in the runtime that
// skip the two-step sysReserve/sysMap protocol.
//
//go:redirect-from runtime.sysAlloc
//go:nosplit
func sysAlloc(size uintptr, sysStat *uint64) unsafe.Pointer {
	pages := pageRound(size) >> bootcfg.PageShift
	base, ok := firmwareMemory.AllocatePages(uint64(pages))
	if !ok {
		return unsafe.Pointer(uintptr(0))
	}
	mSysStatInc(sysStat, uintptr(pageRound(size)))
	return unsafe.Pointer(base)
}

// Unlike bootstrap.go, this package has no init() making dummy calls into
// sysReserve/sysMap/sysAlloc to keep the compiler from eliminating them:
// firmwareMemory is nil until Init runs, and a dummy call at package-init
// time (before main.go can call Init) would panic on the nil interface.
// The three hooks are marked with go:redirect-from (the teacher's
// redirect-tool annotation), not go:linkname; go:linkname is used only to
// reach runtime.mSysStatInc. Nothing in this module calls the hooks
// directly.

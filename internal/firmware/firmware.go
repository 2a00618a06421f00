// Package firmware declares the UEFI collaborator interfaces the boot
// pipeline is built against: Console, Memory, Configuration and Image.
// gopher-os reaches its platform services through package-level globals
// (hal.ActiveTerminal, hal/multiboot's package-level infoData); spec.md §9
// flags that idiom as "global mutable firmware state" and asks for it to be
// modeled as an explicit capability handle instead, so every boot-pipeline
// function below takes the collaborator it needs as a parameter rather than
// reaching for a package variable.
package firmware

// Console is the subset of the UEFI Simple Text Output Protocol the loader
// needs to print its boot trace (spec.md §6 Non-goals: "no graphics, no
// fonts" — text only).
type Console interface {
	WriteString(s string)
	ClearScreen()
}

// MemoryType classifies a descriptor in a UEFI memory map snapshot. Only the
// values the loader inspects are named; every other UEFI memory type is
// passed through as RawType on MemoryDescriptor.
type MemoryType uint32

const (
	MemoryTypeConventional MemoryType = iota
	MemoryTypeBootServicesCode
	MemoryTypeBootServicesData
	MemoryTypeLoaderCode
	MemoryTypeLoaderData
	MemoryTypeReserved
	MemoryTypeOther
)

// MemoryDescriptor mirrors one EFI_MEMORY_DESCRIPTOR entry.
type MemoryDescriptor struct {
	Type          MemoryType
	RawType       uint32
	PhysicalStart uintptr
	NumberOfPages uint64
}

// MemoryMapSnapshot is the memory map handle ExitBootServices requires,
// grounded on gopher-os's hal/multiboot.SetInfoPtr/VisitMemRegions pair: a
// map key plus descriptor size/version, obtained once and replayed back to
// ExitBootServices unmodified.
type MemoryMapSnapshot struct {
	Key            uintptr
	DescriptorSize uintptr
	Version        uint32

	// Buffer is the physical address of the descriptor array itself —
	// what register a1 points to on kernel entry (spec.md §6, "Kernel
	// entry"). Key is what ExitBootServices is called with; Buffer is
	// what the kernel reads afterwards. The two are distinct because the
	// UEFI contract only requires the key to still be valid, not the
	// buffer's contents, across the ExitBootServices call.
	Buffer uintptr
}

// MemRegionVisitor is invoked by Memory.VisitMap for each descriptor in the
// current map. Returning false aborts the scan early, the same contract as
// gopher-os's hal/multiboot.MemRegionVisitor.
type MemRegionVisitor func(desc *MemoryDescriptor) bool

// Memory is the subset of UEFI Boot Services the loader needs for physical
// page allocation (spec.md §4.3) and for obtaining the memory map that must
// accompany ExitBootServices (spec.md §4.6).
type Memory interface {
	// AllocatePages requests count contiguous 4KiB pages at any physical
	// address and returns the base address of the allocation. ok is false
	// on allocation failure (spec.md §7, MemoryAllocationFailed).
	AllocatePages(count uint64) (base uintptr, ok bool)

	// AllocatePagesAt requests count contiguous pages at a specific
	// physical address, used when the loader must place a static image at
	// its fixed link address (spec.md §4.3).
	AllocatePagesAt(physAddr uintptr, count uint64) (ok bool)

	// PageBytes returns a byte slice backed by the page range starting at
	// base, previously returned by AllocatePages/AllocatePagesAt. The
	// loader never assumes any particular address identity for the slice
	// header itself (spec.md §6 Non-goals list no MMU/paging), only that
	// writes through it land at the physical address implied by base.
	PageBytes(base uintptr, count uint64) []byte

	// GetMemoryMap captures the current memory map snapshot, required
	// immediately before ExitBootServices (spec.md §4.6).
	GetMemoryMap() (MemoryMapSnapshot, error)

	// VisitMap replays the descriptors of a previously captured snapshot.
	VisitMap(snap MemoryMapSnapshot, visit MemRegionVisitor)
}

// Configuration is the subset of the UEFI System Table the loader needs to
// locate the device-tree blob by GUID (spec.md §4.5).
type Configuration interface {
	// LookupTable returns the address registered under guid, and whether
	// an entry for that GUID exists at all.
	LookupTable(guid [16]byte) (addr uintptr, found bool)
}

// Image is the subset of UEFI Boot Services that governs the irreversible
// transition out of boot services (spec.md §4.6, "ExitBootServices is a
// one-way transition").
type Image interface {
	// ExitBootServices terminates boot services using the memory map key
	// captured by Memory.GetMemoryMap. A stale key (the map changed since
	// capture) must be surfaced as an error. internal/boot.Boot does not
	// re-snapshot or retry: it treats any error here as unrecoverable and
	// halts.
	ExitBootServices(mapKey uintptr) error
}

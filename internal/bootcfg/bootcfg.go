// Package bootcfg holds the build-time constants that the rest of the
// loader is built against: page geometry, the ELF64/RISC-V magic numbers
// spec.md §3 fixes, and the UEFI configuration-table GUID used to look up
// the device-tree blob. None of this is runtime configuration — a
// bootloader has no flags, no environment, no config file (spec.md §6) —
// so, unlike the teacher's per-arch mem/constants_amd64.go, there is a
// single constants file rather than one per build target.
package bootcfg

const (
	// PageSize is the UEFI page unit (spec.md §3, "Page").
	PageSize = 4096
	// PageShift is log2(PageSize), used for the ceil-divide in the loader's
	// extent computation.
	PageShift = 12
	// PageMask isolates the in-page offset of an address.
	PageMask = PageSize - 1
)

// ELF64/RISC-V identity, per spec.md §3 ("ELF File View").
const (
	ELFClass64      = 2
	ELFMachineRiscV = 0xF3
)

var ELFMagic = [4]byte{0x7F, 'E', 'L', 'F'}

// Program header segment types recognized by the loader (spec.md §3,
// "Program Header"). Other values are ignored silently.
const (
	PTLoad    = 1
	PTDynamic = 2
)

// Dynamic-tag array entries relevant to RELA discovery (spec.md §3,
// "Dynamic Tag Entry").
const (
	DTNull    = 0
	DTRela    = 7
	DTRelaSz  = 8
	DTRelaEnt = 9
)

// RRiscvRelative is the only relocation type the loader accepts (spec.md
// §3, "Relocation Entry RELA"). Any other info value fails the load.
const RRiscvRelative = 3

// DynEntrySize and RelaEntrySize are the on-disk sizes of a dynamic-tag
// entry and a default RELA record (spec.md §3).
const (
	DynEntrySize  = 16
	RelaEntrySize = 24
)

// EFIDevTreeTableGUID is the UEFI configuration-table GUID firmware uses to
// publish the device-tree blob pointer (EDK2's gFdtTableGuid,
// B1B621D5-F19C-41A5-830B-D9152C69AAE0). spec.md §4.5 step 3 calls this "UUID
// match"; we spell it out here rather than leaving it implicit in the
// firmware collaborator, since it is the one piece of the UEFI contract the
// loader itself must know the exact value of to find the right table.
type GUID [16]byte

var EFIDevTreeTableGUID = GUID{
	0xd5, 0x21, 0xb6, 0xb1, 0x9c, 0xf1, 0xa5, 0x41,
	0x83, 0x0b, 0xd9, 0x15, 0x2c, 0x69, 0xaa, 0xe0,
}

// FDTMagic is the big-endian magic word at the start of a flattened device
// tree blob, used by internal/dtb for the sanity check spec.md itself does
// not require but original_source's FIT-loading analogs perform.
const FDTMagic = 0xD00DFEED

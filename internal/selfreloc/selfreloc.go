// Package selfreloc implements C5, the bootloader's own self-relocation
// primitive (spec.md §4.4). It is invoked from the pre-main assembly
// trampoline before any other Go code runs, so it is held to a stricter rule
// than every other package in this module: no heap, no firmware calls, and
// no reference to any global or package-level variable, since the addresses
// of such things are exactly what relocation has not yet patched. For that
// reason it does not import internal/elf64 or internal/bootcfg — both are
// ordinary heap-using packages — and instead re-derives the handful of
// dynamic-tag constants it needs as untyped consts, matching
// original_source/src/relocate.rs's relocate() and dynamic.rs's
// find_relocations_inner(), translated from raw-pointer walking to
// unsafe.Pointer arithmetic.
package selfreloc

import "unsafe"

const (
	dtNull          = 0
	dtRela          = 7
	dtRelaSz        = 8
	dtRelaEnt       = 9
	rRiscvRelative  = 3
	dynEntrySize    = 16
	defaultRelaSize = 24
)

// Relocate walks the dynamic-tag array at dynAddr (the bootloader's own
// .dynamic section) and applies every R_RISCV_RELATIVE entry it finds,
// treating baseAddr as the bootloader's actual load address. Tags other than
// DT_RELA, DT_RELASZ and DT_RELAENT are skipped. It returns 0 on success
// (including when neither DT_RELA nor DT_RELASZ is present), -1 when only
// one of the two is present or DT_RELASZ is 0, and -2 on a relocation type
// other than R_RISCV_RELATIVE; the caller loops forever on failure.
//
//go:nosplit
func Relocate(baseAddr, dynAddr unsafe.Pointer) int32 {
	var (
		relaAddr    unsafe.Pointer
		relaSize    uintptr
		relaEntSize uintptr = defaultRelaSize
		haveRela    bool
		haveSize    bool
	)

	for entry := dynAddr; ; entry = unsafe.Pointer(uintptr(entry) + dynEntrySize) {
		tag := *(*int64)(entry)
		if tag == dtNull {
			break
		}
		val := *(*uint64)(unsafe.Pointer(uintptr(entry) + 8))

		switch tag {
		case dtRela:
			relaAddr = unsafe.Pointer(uintptr(baseAddr) + uintptr(val))
			haveRela = true
		case dtRelaSz:
			relaSize = uintptr(val)
			haveSize = true
		case dtRelaEnt:
			relaEntSize = uintptr(val)
		}
	}

	if !haveRela && !haveSize {
		return 0
	}
	if !haveRela || !haveSize || relaSize == 0 {
		return -1
	}

	for off := uintptr(0); off < relaSize; off += relaEntSize {
		rela := unsafe.Pointer(uintptr(relaAddr) + off)
		offset := *(*uint64)(rela)
		info := *(*uint64)(unsafe.Pointer(uintptr(rela) + 8))
		addend := *(*int64)(unsafe.Pointer(uintptr(rela) + 16))

		if info != rRiscvRelative {
			return -2
		}

		slot := (*uint64)(unsafe.Pointer(uintptr(baseAddr) + uintptr(offset)))
		*slot = uint64(int64(uintptr(baseAddr)) + addend)
	}

	return 0
}

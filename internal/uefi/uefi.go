// Package uefi is the narrow binding layer between the raw UEFI System
// Table pointer firmware hands the entry point and this module's
// internal/firmware collaborator interfaces.
//
// Calling a UEFI protocol method means indirecting through a function
// pointer that uses the platform's native ("efiapi") calling convention,
// which is not one Go can call directly without an assembly trampoline —
// the same category of "two tiny pieces of inline assembly" spec.md §9
// scopes out (a startup shim and the final jalr). Bind is declared here with
// no body for the same reason cpu.FenceRW/FenceI/Halt are: its
// implementation lives in the platform glue that also provides those, and
// is out of scope for this Go module (spec.md §6: "the UEFI abstraction,
// not respecified here").
//
// The struct layouts below exist purely as documentation of the offsets
// that glue layer must honor — nothing in this package reads through them
// directly — grounded on the UEFI Specification's EFI_SYSTEM_TABLE and
// EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL layouts, the same way original_source's
// uefi/types.rs carries EfiSystemTable/EfiStatus as the Rust-side mirror of
// the same ABI.
package uefi

import "github.com/MercurOS/maia/internal/firmware"

// SystemTableOffsets documents the byte offsets Bind's platform
// implementation reads from the raw EFI_SYSTEM_TABLE pointer it is given.
// Hdr is the 24-byte EFI_TABLE_HEADER every UEFI table begins with.
const (
	OffsetConOut               = 64  // EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL*
	OffsetBootServices         = 96  // EFI_BOOT_SERVICES*
	OffsetNumberOfTableEntries = 104
	OffsetConfigurationTable   = 112 // EFI_CONFIGURATION_TABLE*
)

// EFI_CONFIGURATION_TABLE entries are {EFI_GUID VendorGuid; VOID *VendorTable}
// pairs, 24 bytes each (16-byte GUID + 8-byte pointer).
const ConfigurationTableEntrySize = 24

// Bind constructs the four internal/firmware collaborators from a raw
// EFI_SYSTEM_TABLE pointer captured at the entry point. imageHandle is the
// firmware-supplied handle required by ExitBootServices.
func Bind(imageHandle, systemTable uintptr) (firmware.Console, firmware.Memory, firmware.Configuration, firmware.Image)

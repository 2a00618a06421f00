// Package elf64 is a read-only ELF64/RISC-V decoder: a file view over a
// borrowed byte slice, program-header iteration and segment-data slicing
// (C2), and a dynamic-section/RELA reader (C3). It is grounded on
// original_source/src/elf/{header,program_header,dynamic,elf_file}.rs.
// Every field is copied out of the byte slice with encoding/binary, rather
// than read through Rust's #[repr(packed)] struct casts or the unsafe.Pointer
// casts the teacher's kernel/hal/multiboot.go uses.
package elf64

import "errors"

// Decoder errors. These are collapsed into bootstatus.KindInvalidKernelImage
// by internal/boot (for Open) and internal/loader (for everything after
// Open), with the decoder error's text kept as the message (spec.md §7's
// propagation policy); the finer kinds below exist for this package's unit
// tests.
var (
	ErrInvalidFormat       = errors.New("elf64: invalid format")
	ErrIncompatibleMachine = errors.New("elf64: incompatible class or machine")
	ErrBufferOverflow      = errors.New("elf64: segment data out of bounds")
)

// Package payload exposes the embedded kernel image. spec.md §6 places the
// embedding mechanism itself out of scope ("the loader is produced by
// embedding a byte array of known length at 4096-byte alignment; the
// embedding mechanism is out of scope") but names go:embed nowhere — this
// package's use of it is a SPEC_FULL.md ambient-stack choice, grounded on
// the one go:embed precedent in the retrieval pack
// (tinyrange-rtg/tests/embedtest/main.go and std/compiler/stdlib_rtg.go),
// since it is the idiomatic Go replacement for the teacher's domain (an
// amd64 multiboot kernel launched by GRUB, not an embedded payload at all)
// having no direct analog to adapt.
//
// kernel.bin is a placeholder; the real build pipeline overwrites it with
// the compiled RISC-V64 kernel ELF image before building the bootloader.
//
// go:embed gives no alignment guarantee over the resulting []byte, unlike
// original_source's PageAligned<T> wrapper
// (#[repr(align(4096))]) — spec.md §3 calls for 4096-byte alignment "so
// file-offset = page-offset coincidences remain possible", which is a nice-
// to-have, not a correctness requirement, since internal/elf64 only ever
// reads fields through encoding/binary rather than casting raw pointers.
// KernelImage's alignment is therefore non-load-bearing for this loader.
package payload

import _ "embed"

//go:embed kernel.bin
var KernelImage []byte

// Package cpu declares the tiny set of RISC-V primitives the loader needs
// that cannot be expressed in portable Go. This mirrors the teacher's
// kernel/cpu/cpu_amd64.go: body-less function declarations backed by
// assembly that lives outside this package (the "low-level assembly shims"
// spec.md's PURPOSE & SCOPE explicitly places out of scope).
package cpu

// FenceRW issues a RISC-V "fence rw,rw" full memory barrier. The loader
// calls this after applying relocations (spec.md §5) to guarantee the
// written bytes are visible before control passes to the kernel.
func FenceRW()

// FenceI issues a RISC-V "fence.i" instruction-cache invalidation. The
// loader calls this immediately before transferring control to the kernel's
// entry point (spec.md §5), since the bytes being executed were written as
// data, not fetched as code, by the hart that is about to run them.
func FenceI()

// Halt parks the hart in an idle wait state. It is used by the boot
// orchestrator for the unrecoverable infinite loop spec.md §7 calls for
// after ExitBootServices has succeeded but the jump to the kernel somehow
// returns, and by the self-relocator's caller on relocation failure
// (spec.md §4.4). Halt never returns.
func Halt()

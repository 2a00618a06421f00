// Package boot implements C6, the boot orchestrator: the fixed sequence
// spec.md §4.5 lists from clearing the screen through the one-way transfer
// into the kernel. It is grounded on kernel/kmain/kmain.go's shape — a
// single linear function, error checks short-circuiting to a panic-
// equivalent path — adapted to this domain's recoverable, console-reporting
// error model (spec.md §7) rather than gopher-os's panic-and-halt, since
// every failure here except a post-ExitBootServices one is still in a state
// where returning a UEFI status code to the firmware is meaningful.
package boot

import (
	"github.com/MercurOS/maia/internal/bootstatus"
	"github.com/MercurOS/maia/internal/cpu"
	"github.com/MercurOS/maia/internal/dtb"
	"github.com/MercurOS/maia/internal/earlyfmt"
	"github.com/MercurOS/maia/internal/elf64"
	"github.com/MercurOS/maia/internal/firmware"
	"github.com/MercurOS/maia/internal/loader"
	"github.com/MercurOS/maia/internal/memsize"
)

// openKernel validates the embedded image, remapping any elf64 decoder
// error to bootstatus.KindInvalidKernelImage at the C6 boundary (spec.md §7's
// propagation policy).
func openKernel(buf []byte) (*elf64.File, error) {
	f, err := elf64.Open(buf)
	if err != nil {
		return nil, bootstatus.New(bootstatus.KindInvalidKernelImage, "boot", err.Error())
	}
	return f, nil
}

// haltFn is swapped out in tests, mirroring kernel/panic.go's cpuHaltFn
// indirection so the post-ExitBootServices infinite loop (spec.md §4.5 step
// 5, step 6) is observable without actually hanging the test process.
var haltFn = cpu.Halt

// Jump performs the final, one-way transfer of control into the kernel
// (spec.md §4.5 step 6, §6 "Kernel entry"): pc←entry, a0←dtbAddr,
// a1←memMapAddr. It is implemented in assembly (spec.md §9, "two tiny
// pieces [of inline assembly] are required ... the final jalr"); this
// package only ever calls it, never returns from it, and the placeholder
// declaration below exists so the rest of this package type-checks against
// the real symbol once the assembly is linked in.
func Jump(entry uint64, dtbAddr, memMapAddr uintptr)

// jumpFn is swapped out in tests; see haltFn above for the same idiom.
var jumpFn = Jump

// Options configures a Boot run. Verbose is a SPEC_FULL.md supplement
// (spec.md names no CLI/environment at all, per §6) — it exists purely so a
// developer build can print the step-by-step trace below, while a release
// build passes Verbose: false and prints only the banner plus, on failure,
// the single error line spec.md §7 calls for, without narrating success.
type Options struct {
	Verbose bool
}

// Boot runs the full C6 sequence against kernelImage, the embedded payload
// byte slice internal/payload exposes. On any failure before
// ExitBootServices it prints one line and returns the error (the caller maps
// it to a UEFI status via bootstatus.ToEFIStatus); on any failure after
// ExitBootServices succeeds it halts forever, per spec.md §4.5/§7 ("the
// firmware state is unrecoverable").
func Boot(console firmware.Console, mem firmware.Memory, cfg firmware.Configuration, img firmware.Image, kernelImage []byte, opts Options) error {
	console.ClearScreen()
	console.WriteString("maia bootloader\n")

	f, err := openKernel(kernelImage)
	if err != nil {
		report(console, err)
		return err
	}

	var trace loader.TraceFunc
	if opts.Verbose {
		trace = func(ph elf64.ProgramHeader, destAddr uint64, size memsize.Size) {
			earlyfmt.Printf(console, "segment type=%x dest=%x size=%s\n", ph.Type, destAddr, size.String())
		}
	}

	entry, err := loader.Load(f, mem, trace)
	if err != nil {
		report(console, err)
		return err
	}
	if opts.Verbose {
		earlyfmt.Printf(console, "loaded kernel, entry=%x\n", entry)
	}

	dtbAddr, err := dtb.Locate(cfg)
	if err != nil {
		report(console, err)
		return err
	}
	if opts.Verbose {
		earlyfmt.Printf(console, "device tree at %x\n", uint64(dtbAddr))
	}

	snap, err := mem.GetMemoryMap()
	if err != nil {
		wrapped := bootstatus.New(bootstatus.KindMemoryMapUnavailable, "boot", err.Error())
		report(console, wrapped)
		return wrapped
	}
	if opts.Verbose {
		mem.VisitMap(snap, func(desc *firmware.MemoryDescriptor) bool {
			earlyfmt.Printf(console, "region type=%d phys=%x pages=%d\n", uint32(desc.Type), uint64(desc.PhysicalStart), desc.NumberOfPages)
			return true
		})
	}

	if err := img.ExitBootServices(snap.Key); err != nil {
		// Firmware state is unrecoverable past this point (spec.md
		// §4.5 step 5); there is no console to report to reliably
		// either, so this only halts.
		haltFn()
		return nil
	}

	cpu.FenceRW()
	cpu.FenceI()

	jumpFn(entry, dtbAddr, snap.Buffer)

	// Jump never returns (spec.md §6). If control somehow lands back
	// here, spec.md §7 calls for an infinite loop.
	haltFn()
	return nil
}

func report(console firmware.Console, err error) {
	console.WriteString(err.Error() + "\n")
}

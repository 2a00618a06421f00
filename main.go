package main

import (
	"github.com/MercurOS/maia/internal/boot"
	"github.com/MercurOS/maia/internal/bootstatus"
	"github.com/MercurOS/maia/internal/payload"
	"github.com/MercurOS/maia/internal/runtimeshim"
	"github.com/MercurOS/maia/internal/uefi"
)

// entryImageHandle and entryStatus are package-level, mirroring
// stub.go's multibootInfoPtr: a global the compiler can see is live keeps it
// from inlining efiMain away and discarding the only path that reaches
// internal/boot.Boot.
var (
	entryImageHandle uintptr
	entrySystemTable uintptr
	entryStatus      uint64
)

// main is the trampoline kmain.Kmain played for gopher-os: the one Go
// symbol the startup shim calls after self-relocation (spec.md §4.4)
// completes. By this point internal/selfreloc has already run from the
// pre-main assembly stub and is not invoked again here.
func main() {
	entryStatus = efiMain(entryImageHandle, entrySystemTable)
}

// efiMain is the Go-side continuation of the UEFI entry point (spec.md §6):
// firmware calls a C-ABI function taking (image_handle, system_table) and
// returning a status; the startup shim receives that call, performs
// self-relocation, and then calls into this function with Go's calling
// convention restored.
func efiMain(imageHandle, systemTable uintptr) uint64 {
	console, mem, cfg, img := uefi.Bind(imageHandle, systemTable)

	runtimeshim.Init(mem)

	err := boot.Boot(console, mem, cfg, img, payload.KernelImage, boot.Options{Verbose: false})
	return bootstatus.ToEFIStatus(err)
}

package loader

import "github.com/MercurOS/maia/internal/bootcfg"

// extent is the Step-1 memory-extent computation result (spec.md §4.3).
type extent struct {
	lowestPageBase uint64
	highestVAddrEnd uint64
	totalPages      uint64
}

// computeExtent folds over every LOAD segment's (pageBase, vaddr+memsz)
// pair. It implements the *corrected* rounding spec.md §9 asks for —
// ceil((highestVAddrEnd-lowestPageBase)/4096) — not the source's
// segment-relative rounding the design notes flag as buggy (over- or
// under-allocating by one page whenever highest_vaddr isn't page-aligned).
func computeExtent(lowestPageBase, highestVAddrEnd uint64, sawAny bool) extent {
	if !sawAny {
		return extent{}
	}
	span := highestVAddrEnd - lowestPageBase
	pages := (span + bootcfg.PageMask) >> bootcfg.PageShift
	return extent{
		lowestPageBase:  lowestPageBase,
		highestVAddrEnd: highestVAddrEnd,
		totalPages:      pages,
	}
}

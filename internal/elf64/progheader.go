package elf64

import (
	"encoding/binary"

	"github.com/MercurOS/maia/internal/bootcfg"
)

// progHeaderSize is the fixed on-disk layout spec.md §3 names.
const progHeaderSize = 56

// ProgramHeader is the subset of an ELF64 program header the loader
// consumes. Flags and physical address are parsed by nothing here — spec.md
// §3 marks them unused — so they are not even represented.
type ProgramHeader struct {
	Type      uint32
	Offset    uint64
	VAddr     uint64
	FileSize  uint64
	MemSize   uint64
	Align     uint64
}

// PageBase is vaddr rounded down to the segment's own alignment, mirroring
// original_source's ProgramHeader::get_page_base.
func (p ProgramHeader) PageBase() uint64 {
	if p.Align == 0 {
		return p.VAddr
	}
	return p.VAddr &^ (p.Align - 1)
}

// AddressInSegment reports whether a is covered by this segment's virtual
// address range, per spec.md §3's address_in_segment derived property.
func (p ProgramHeader) AddressInSegment(a uint64) bool {
	return a >= p.VAddr && a < p.VAddr+p.MemSize
}

func parseProgramHeader(buf []byte) ProgramHeader {
	return ProgramHeader{
		Type:     binary.LittleEndian.Uint32(buf[0:4]),
		Offset:   binary.LittleEndian.Uint64(buf[8:16]),
		VAddr:    binary.LittleEndian.Uint64(buf[16:24]),
		FileSize: binary.LittleEndian.Uint64(buf[32:40]),
		MemSize:  binary.LittleEndian.Uint64(buf[40:48]),
		Align:    binary.LittleEndian.Uint64(buf[48:56]),
	}
}

// VisitProgramHeaders walks the program-header table, invoking visit for
// each entry until visit returns false or the table is exhausted. This is
// the visitor-callback idiom the teacher uses for
// hal/multiboot.VisitMemRegions, replacing original_source's
// ProgramHeaderIterator (a Rust Iterator has no equivalent as a plain Go
// range without an external iterator type; a callback keeps the table's
// bounds-checked access private to this package).
//
// Before the first callback it verifies, per spec.md §4.1: entry_size is a
// multiple of 8, and offset+count*entry_size fits within buf.
func VisitProgramHeaders(buf []byte, hdr Header, visit func(ProgramHeader) bool) error {
	if hdr.PhEntrySize%8 != 0 {
		return ErrInvalidFormat
	}

	tableEnd := hdr.PhOff + uint64(hdr.PhEntryCount)*uint64(hdr.PhEntrySize)
	if tableEnd > uint64(len(buf)) {
		return ErrInvalidFormat
	}

	var scratch [progHeaderSize]byte
	for i := uint16(0); i < hdr.PhEntryCount; i++ {
		offset := hdr.PhOff + uint64(i)*uint64(hdr.PhEntrySize)

		// entry_size may legitimately differ from progHeaderSize (a
		// larger value just means trailing per-entry bytes this
		// loader ignores); copy into a zeroed scratch buffer so a
		// smaller-than-expected entry_size never reads past what
		// tableEnd already proved is in bounds.
		n := uint64(progHeaderSize)
		if avail := uint64(hdr.PhEntrySize); avail < n {
			n = avail
		}
		for i := range scratch {
			scratch[i] = 0
		}
		copy(scratch[:n], buf[offset:offset+n])

		if !visit(parseProgramHeader(scratch[:])) {
			return nil
		}
	}
	return nil
}

// Recognized segment types (spec.md §3); anything else is ignored silently
// by callers, never rejected here.
const (
	PTLoad    = bootcfg.PTLoad
	PTDynamic = bootcfg.PTDynamic
)

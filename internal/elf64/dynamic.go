package elf64

import (
	"encoding/binary"

	"github.com/MercurOS/maia/internal/bootcfg"
)

// RelaTable is the opaque relocation-table handle spec.md §3 describes:
// {address, size_bytes, entry_size}. Unlike original_source's
// dynamic.rs::RelocationTable (which borrows the image via a raw pointer
// with a lifetime the FIXME in elf_file.rs admits is unsound — "this breaks
// lifetime guarantees"), RelaTable stores the byte slice itself, so its
// lifetime is tied to the Go slice it holds rather than to an unenforced raw
// address. This is the fix spec.md §9 asks for: "parameterizing the handle
// over the view's lifetime, or copying the triple out eagerly" — here it is
// the former, expressed as a slice instead of a pointer+lifetime.
type RelaTable struct {
	data      []byte
	entrySize uint64
}

// Rela is one decoded RELA record (spec.md §3).
type Rela struct {
	Offset uint64
	Info   uint64
	Addend int64
}

// ReadDynamicTags scans a dynamic-tag array starting at segData, stopping at
// the first DT_NULL, per spec.md §4.2. fileBuf is the whole ELF image buffer
// the resulting RelaTable's entries are offsets into — original_source's
// find_relocations_inner computes rel_addr as
// base_address.add(entry.val), where base_address is &raw_buffer[0], not
// the dynamic segment's own start, a detail spec.md itself leaves implicit.
//
// Outcome policy (spec.md §4.2): neither DT_RELA nor DT_RELASZ present
// returns (nil, nil) — "no relocations", not an error. Exactly one present
// (or DT_RELASZ == 0 while DT_RELA is set) is ErrInvalidFormat. Both present
// returns a table.
func ReadDynamicTags(fileBuf, segData []byte) (*RelaTable, error) {
	var (
		relaOffset  uint64
		relaSize    uint64
		relaEntSize uint64
		haveRela    bool
		haveSize    bool
	)

	for pos := 0; pos+16 <= len(segData); pos += 16 {
		tag := int64(binary.LittleEndian.Uint64(segData[pos : pos+8]))
		val := binary.LittleEndian.Uint64(segData[pos+8 : pos+16])

		if tag == bootcfg.DTNull {
			break
		}

		switch tag {
		case bootcfg.DTRela:
			relaOffset, haveRela = val, true
		case bootcfg.DTRelaSz:
			relaSize, haveSize = val, true
		case bootcfg.DTRelaEnt:
			relaEntSize = val
		}
	}

	switch {
	case !haveRela && !haveSize:
		return nil, nil
	case !haveRela || !haveSize || relaSize == 0:
		return nil, ErrInvalidFormat
	}

	if relaEntSize == 0 {
		relaEntSize = bootcfg.RelaEntrySize
	}

	end := relaOffset + relaSize
	if end > uint64(len(fileBuf)) {
		return nil, ErrInvalidFormat
	}

	return &RelaTable{data: fileBuf[relaOffset:end], entrySize: relaEntSize}, nil
}

// Visit walks the table by entrySize (not sizeof(Rela)), tolerating
// entry_size > 24 by ignoring the trailing bytes of each record, per
// spec.md §4.2. Returning false from visit stops the walk early.
func (t *RelaTable) Visit(visit func(Rela) bool) {
	if t == nil {
		return
	}
	for pos := uint64(0); pos+24 <= uint64(len(t.data)); pos += t.entrySize {
		entry := t.data[pos : pos+24]
		r := Rela{
			Offset: binary.LittleEndian.Uint64(entry[0:8]),
			Info:   binary.LittleEndian.Uint64(entry[8:16]),
			Addend: int64(binary.LittleEndian.Uint64(entry[16:24])),
		}
		if !visit(r) {
			return
		}
	}
}

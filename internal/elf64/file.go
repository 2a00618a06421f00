package elf64

// File is a borrowed byte slice plus its validated header (spec.md §3, "ELF
// File View"). It never copies buf; every accessor slices back into it.
type File struct {
	buf []byte
	hdr Header
}

// Open validates magic, class and machine and projects the header, per
// spec.md §4.1. No copy: File.buf aliases buf for its entire lifetime, so
// the image passed in (internal/payload's embedded kernel, as opened by
// internal/boot) must stay unmodified for as long as any File built from it
// is in use.
func Open(buf []byte) (*File, error) {
	hdr, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	return &File{buf: buf, hdr: hdr}, nil
}

// Header returns the validated header.
func (f *File) Header() Header { return f.hdr }

// VisitProgramHeaders walks the program-header table; see
// VisitProgramHeaders for the contract.
func (f *File) VisitProgramHeaders(visit func(ProgramHeader) bool) error {
	return VisitProgramHeaders(f.buf, f.hdr, visit)
}

// SegmentData returns buf[offset:offset+filesz] for ph, or ErrBufferOverflow
// if that range exceeds the file buffer (spec.md §4.1).
func (f *File) SegmentData(ph ProgramHeader) ([]byte, error) {
	end := ph.Offset + ph.FileSize
	if end > uint64(len(f.buf)) {
		return nil, ErrBufferOverflow
	}
	return f.buf[ph.Offset:end], nil
}

// RelocationTable finds the first DYNAMIC segment and decodes its RELA
// table, per spec.md §4.1/§4.2. Returns (nil, nil) if there is no DYNAMIC
// segment at all, or if one exists but declares no relocations.
//
// Grounded on original_source/src/elf/elf_file.rs's relocation_table, which
// returns on the first DYNAMIC segment found rather than validating there is
// exactly one; this loader keeps that behavior.
func (f *File) RelocationTable() (*RelaTable, error) {
	var (
		table   *RelaTable
		dynErr  error
		found   bool
	)
	err := f.VisitProgramHeaders(func(ph ProgramHeader) bool {
		if ph.Type != PTDynamic {
			return true
		}
		found = true
		segData, serr := f.SegmentData(ph)
		if serr != nil {
			dynErr = serr
			return false
		}
		table, dynErr = ReadDynamicTags(f.buf, segData)
		return false
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return table, dynErr
}

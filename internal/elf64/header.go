package elf64

import (
	"encoding/binary"

	"github.com/MercurOS/maia/internal/bootcfg"
)

// headerSize is the fixed on-disk layout spec.md §3 names: 16-byte identity
// prefix followed by the fields this loader actually consumes.
const headerSize = 64

// Header is the subset of the ELF64 header the loader consumes: entry point,
// and the program-header table descriptor. Open also checks magic, class
// and machine; every other field (section headers, flags, ABI byte, ...) is
// neither validated nor retained.
type Header struct {
	Entry         uint64
	PhOff         uint64
	PhEntrySize   uint16
	PhEntryCount  uint16
}

// parseHeader projects the first 64 bytes of buf as a Header, validating
// magic, class and machine per spec.md §4.1. It never retains a reference to
// buf itself; every field is copied out via encoding/binary, avoiding the
// alignment hazard original_source's #[repr(packed)] pointer cast carries
// (the teacher's hal/multiboot.go relies on Go's guaranteed struct alignment
// for the same reason, casting instead of copying — here the need to support
// arbitrary embed alignment for the embedded kernel image leads us to the
// stricter byte-copy approach).
func parseHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, ErrInvalidFormat
	}

	var magic [4]byte
	copy(magic[:], buf[0:4])
	if magic != bootcfg.ELFMagic {
		return Header{}, ErrInvalidFormat
	}

	class := buf[4]
	if class != bootcfg.ELFClass64 {
		return Header{}, ErrIncompatibleMachine
	}

	machine := binary.LittleEndian.Uint16(buf[18:20])
	if machine != bootcfg.ELFMachineRiscV {
		return Header{}, ErrIncompatibleMachine
	}

	return Header{
		Entry:        binary.LittleEndian.Uint64(buf[24:32]),
		PhOff:        binary.LittleEndian.Uint64(buf[32:40]),
		PhEntrySize:  binary.LittleEndian.Uint16(buf[54:56]),
		PhEntryCount: binary.LittleEndian.Uint16(buf[56:58]),
	}, nil
}

package loader

import (
	"encoding/binary"
	"testing"

	"github.com/MercurOS/maia/internal/elf64"
	"github.com/MercurOS/maia/internal/firmware/firmwaretest"
	"github.com/MercurOS/maia/internal/memsize"
)

func putHeader(buf []byte, entry, phoff uint64, phEntSize, phNum uint16) {
	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = 2 // ELFCLASS64
	binary.LittleEndian.PutUint16(buf[18:20], 0xF3)
	binary.LittleEndian.PutUint64(buf[24:32], entry)
	binary.LittleEndian.PutUint64(buf[32:40], phoff)
	binary.LittleEndian.PutUint16(buf[54:56], phEntSize)
	binary.LittleEndian.PutUint16(buf[56:58], phNum)
}

func putProgHeader(buf []byte, off int, typ uint32, offset, vaddr, filesz, memsz, align uint64) {
	p := buf[off : off+56]
	binary.LittleEndian.PutUint32(p[0:4], typ)
	binary.LittleEndian.PutUint64(p[8:16], offset)
	binary.LittleEndian.PutUint64(p[16:24], vaddr)
	binary.LittleEndian.PutUint64(p[32:40], filesz)
	binary.LittleEndian.PutUint64(p[40:48], memsz)
	binary.LittleEndian.PutUint64(p[48:56], align)
}

// Scenario 1 (spec.md §8): static, single LOAD.
func TestLoadStaticSingleLoad(t *testing.T) {
	buf := make([]byte, 0x1200)
	putHeader(buf, 0x80200000, 64, 56, 1)
	putProgHeader(buf, 64, elf64.PTLoad, 0x1000, 0x80200000, 0x200, 0x400, 0x1000)
	for i := 0; i < 0x200; i++ {
		buf[0x1000+i] = 0xAB
	}

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{}

	entry, err := Load(f, mem, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entry != 0x80200000 {
		t.Fatalf("entry = %#x, want 0x80200000", entry)
	}
	if len(mem.Regions) != 1 || mem.Regions[0].Base != 0x80200000 {
		t.Fatalf("unexpected allocation: %+v", mem.Regions)
	}
	page := mem.Regions[0].Bytes
	if page[0] != 0xAB || page[0x1FF] != 0xAB {
		t.Error("segment bytes not copied")
	}
	for i := 0x200; i < 0x400; i++ {
		if page[i] != 0 {
			t.Fatalf("byte %d in zero tail = %#x, want 0", i, page[i])
		}
	}
}

// Scenario 2: static, two LOADs with a gap between them.
func TestLoadStaticTwoLoadsWithGap(t *testing.T) {
	buf := make([]byte, 0x3000)
	putHeader(buf, 0x80200000, 64, 56, 2)
	putProgHeader(buf, 64, elf64.PTLoad, 0x1000, 0x80200000, 0x1000, 0x1000, 0x1000)
	putProgHeader(buf, 64+56, elf64.PTLoad, 0x2000, 0x80204000, 0x1000, 0x1000, 0x1000)
	for i := 0; i < 0x1000; i++ {
		buf[0x1000+i] = 1
		buf[0x2000+i] = 2
	}

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{}

	if _, err := Load(f, mem, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mem.Regions) != 1 {
		t.Fatalf("expected one contiguous allocation, got %d", len(mem.Regions))
	}
	region := mem.Regions[0]
	if region.Base != 0x80200000 {
		t.Fatalf("base = %#x, want 0x80200000", region.Base)
	}
	wantPages := uint64(5)
	if uint64(len(region.Bytes)) != wantPages*4096 {
		t.Fatalf("allocated %d bytes, want %d", len(region.Bytes), wantPages*4096)
	}
	if region.Bytes[0] != 1 || region.Bytes[0x4000] != 2 {
		t.Fatal("segments not placed at expected offsets")
	}
}

// Scenario 3: dynamic image, one RELA entry.
func TestLoadDynamicOneRela(t *testing.T) {
	buf := make([]byte, 0x200)
	putHeader(buf, 0, 64, 56, 2)
	putProgHeader(buf, 64, elf64.PTLoad, 0, 0, 0, 0x2000, 0x1000)
	putProgHeader(buf, 64+56, elf64.PTDynamic, 0x100, 0, 0x30, 0x30, 8)

	dyn := buf[0x100:]
	binary.LittleEndian.PutUint64(dyn[0:8], 7)    // DT_RELA
	binary.LittleEndian.PutUint64(dyn[8:16], 0x140)
	binary.LittleEndian.PutUint64(dyn[16:24], 8) // DT_RELASZ
	binary.LittleEndian.PutUint64(dyn[24:32], 24)
	binary.LittleEndian.PutUint64(dyn[32:40], 9) // DT_RELAENT
	binary.LittleEndian.PutUint64(dyn[40:48], 24)

	rela := buf[0x140:]
	binary.LittleEndian.PutUint64(rela[0:8], 0x40)
	binary.LittleEndian.PutUint64(rela[8:16], 3) // R_RISCV_RELATIVE
	binary.LittleEndian.PutUint64(rela[16:24], 0x80)

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{NextBase: 0x90000000}

	entry, err := Load(f, mem, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entry != 0x90000000 {
		t.Fatalf("entry = %#x, want 0x90000000", entry)
	}

	region := mem.Regions[0]
	if region.Base != 0x90000000 {
		t.Fatalf("base = %#x, want 0x90000000", region.Base)
	}
	got := binary.LittleEndian.Uint64(region.Bytes[0x40:0x48])
	if got != 0x90000080 {
		t.Fatalf("relocated slot = %#x, want 0x90000080", got)
	}
}

// Scenario 4: unsupported relocation type (R_RISCV_64).
func TestLoadUnsupportedRelocation(t *testing.T) {
	buf := make([]byte, 0x200)
	putHeader(buf, 0, 64, 56, 2)
	putProgHeader(buf, 64, elf64.PTLoad, 0, 0, 0, 0x2000, 0x1000)
	putProgHeader(buf, 64+56, elf64.PTDynamic, 0x100, 0, 0x30, 0x30, 8)

	dyn := buf[0x100:]
	binary.LittleEndian.PutUint64(dyn[0:8], 7)
	binary.LittleEndian.PutUint64(dyn[8:16], 0x140)
	binary.LittleEndian.PutUint64(dyn[16:24], 8)
	binary.LittleEndian.PutUint64(dyn[24:32], 24)

	rela := buf[0x140:]
	binary.LittleEndian.PutUint64(rela[0:8], 0x40)
	binary.LittleEndian.PutUint64(rela[8:16], 2) // R_RISCV_64, unsupported
	binary.LittleEndian.PutUint64(rela[16:24], 0x80)

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{NextBase: 0x90000000}

	if _, err := Load(f, mem, nil); err == nil {
		t.Fatal("expected InvalidKernelImage for unsupported relocation")
	}
}

// Scenario 5: program-header table offset+extent exceeds buffer length.
func TestLoadTruncatedBuffer(t *testing.T) {
	buf := make([]byte, 128)
	putHeader(buf, 0x80200000, 64, 56, 10) // table extent exceeds 128 bytes

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{}

	if _, err := Load(f, mem, nil); err == nil {
		t.Fatal("expected InvalidKernelImage for truncated program header table")
	}
}

func TestLoadEntryOutsideSegments(t *testing.T) {
	buf := make([]byte, 0x1200)
	putHeader(buf, 0x80299000, 64, 56, 1) // entry well outside the LOAD segment below
	putProgHeader(buf, 64, elf64.PTLoad, 0x1000, 0x80200000, 0x200, 0x400, 0x1000)

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{}

	if _, err := Load(f, mem, nil); err == nil {
		t.Fatal("expected InvalidKernelImage for an entry point outside all LOAD segments")
	}
}

func TestLoadTraceCalledPerSegment(t *testing.T) {
	buf := make([]byte, 0x3000)
	putHeader(buf, 0x80200000, 64, 56, 2)
	putProgHeader(buf, 64, elf64.PTLoad, 0x1000, 0x80200000, 0x1000, 0x1000, 0x1000)
	putProgHeader(buf, 64+56, elf64.PTLoad, 0x2000, 0x80204000, 0x1000, 0x1000, 0x1000)

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{}

	var gotAddrs []uint64
	var gotSizes []memsize.Size
	trace := func(ph elf64.ProgramHeader, destAddr uint64, size memsize.Size) {
		gotAddrs = append(gotAddrs, destAddr)
		gotSizes = append(gotSizes, size)
	}

	if _, err := Load(f, mem, trace); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(gotAddrs) != 2 {
		t.Fatalf("trace called %d times, want 2", len(gotAddrs))
	}
	if gotAddrs[0] != 0x80200000 || gotAddrs[1] != 0x80204000 {
		t.Fatalf("trace dest addrs = %#x, want [0x80200000 0x80204000]", gotAddrs)
	}
	if gotSizes[0] != 0x1000 || gotSizes[1] != 0x1000 {
		t.Fatalf("trace sizes = %v, want [0x1000 0x1000]", gotSizes)
	}
}

func TestLoadMemoryAllocationFailed(t *testing.T) {
	buf := make([]byte, 0x1200)
	putHeader(buf, 0x80200000, 64, 56, 1)
	putProgHeader(buf, 64, elf64.PTLoad, 0x1000, 0x80200000, 0x200, 0x400, 0x1000)

	f, err := elf64.Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	mem := &firmwaretest.Memory{AlwaysFail: true}

	if _, err := Load(f, mem, nil); err == nil {
		t.Fatal("expected MemoryAllocationFailed")
	}
}

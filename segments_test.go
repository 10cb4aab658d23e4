package elf

import (
	"reflect"
	"testing"
)

func TestProgramHeaderRoundTrip64(t *testing.T) {
	s := Segment{
		Type: PTLoad, Flags: PFR | PFX, Offset: 0, Vaddr: 0x400000,
		Paddr: 0x400000, Filesz: 0x800, Memsz: 0x800, Align: 0x1000,
	}
	buf := encodeProgramHeader(&s, 64)
	if len(buf) != programHeaderSize(64) {
		t.Fatalf("expected %d bytes, got %d", programHeaderSize(64), len(buf))
	}
	got, err := decodeProgramHeader(buf, 0, 64)
	if err != nil {
		t.Fatalf("decodeProgramHeader: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestProgramHeaderRoundTrip32(t *testing.T) {
	s := Segment{Type: PTLoad, Offset: 0x54, Vaddr: 0x8048000, Paddr: 0x8048000,
		Filesz: 0x500, Memsz: 0x500, Flags: PFR | PFX, Align: 0x1000}
	buf := encodeProgramHeader(&s, 32)
	if len(buf) != programHeaderSize(32) {
		t.Fatalf("expected %d bytes, got %d", programHeaderSize(32), len(buf))
	}
	got, err := decodeProgramHeader(buf, 0, 32)
	if err != nil {
		t.Fatalf("decodeProgramHeader: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestProgramHeaderSizeDiffersByClass(t *testing.T) {
	if programHeaderSize(32) == programHeaderSize(64) {
		t.Fatalf("32-bit and 64-bit program header sizes should differ")
	}
}

func TestSegmentIsExecutableCombinedFlags(t *testing.T) {
	s := Segment{Flags: PFR | PFX}
	if !s.isExecutable() {
		t.Fatalf("PF_R|PF_X segment should report isExecutable() true")
	}
	ro := Segment{Flags: PFR}
	if ro.isExecutable() {
		t.Fatalf("PF_R-only segment should not report isExecutable() true")
	}
}

func TestSegmentContainsOffset(t *testing.T) {
	s := Segment{Offset: 0x100, Filesz: 0x50}
	if !s.containsOffset(0x120, 0x10) {
		t.Fatalf("expected [0x120,0x130) to be contained in [0x100,0x150)")
	}
	if s.containsOffset(0x140, 0x20) {
		t.Fatalf("expected [0x140,0x160) to exceed segment bounds")
	}
}

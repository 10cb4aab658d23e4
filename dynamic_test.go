package elf

import "testing"

func TestDynamicEntryRoundTrip(t *testing.T) {
	e := DynamicEntry{Tag: DTSymtab, Value: 0x4000}
	buf := encodeDynamicEntry(&e, 64)
	if len(buf) != dynamicEntrySize(64) {
		t.Fatalf("expected %d bytes, got %d", dynamicEntrySize(64), len(buf))
	}
	got, err := decodeDynamicEntry(buf, 0, 64)
	if err != nil {
		t.Fatalf("decodeDynamicEntry: %v", err)
	}
	if got != e {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestResolveDynamicOffsets(t *testing.T) {
	entries := []DynamicEntry{
		{Tag: DTSymtab, Value: 0x1000},
		{Tag: DTStrtab, Value: 0x2000},
		{Tag: DTStrsz, Value: 0x100},
		{Tag: DTSyment, Value: 24},
		{Tag: DTNull, Value: 0},
	}
	dyn, err := resolveDynamicOffsets(entries)
	if err != nil {
		t.Fatalf("resolveDynamicOffsets: %v", err)
	}
	if !dyn.hasSymtab || dyn.symtab != 0x1000 {
		t.Fatalf("expected symtab=0x1000, got %+v", dyn)
	}
	if !dyn.hasStrtab || dyn.strtab != 0x2000 {
		t.Fatalf("expected strtab=0x2000, got %+v", dyn)
	}
}

func TestResolveDynamicOffsetsDuplicateJmprelTag(t *testing.T) {
	entries := []DynamicEntry{
		{Tag: DTJmprel, Value: 0x1000},
		{Tag: DTJmprel, Value: 0x2000},
	}
	_, err := resolveDynamicOffsets(entries)
	if err == nil {
		t.Fatal("expected error for duplicate DT_JMPREL tag")
	}
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != KindDuplicateDynamic {
		t.Fatalf("expected KindDuplicateDynamic, got %v", err)
	}
}

// TestResolveDynamicOffsetsAllowsRepeatedNeeded confirms that DT_NEEDED
// (and any tag outside the DT_JMPREL/DT_REL/DT_RELA/DT_RELENT/DT_RELAENT
// set) may repeat without error, the way a real ET_DYN binary linked
// against several shared libraries carries one DT_NEEDED per library.
func TestResolveDynamicOffsetsAllowsRepeatedNeeded(t *testing.T) {
	entries := []DynamicEntry{
		{Tag: DTSymtab, Value: 0x1000},
		{Tag: DTStrtab, Value: 0x2000},
		{Tag: DTNeeded, Value: 10},
		{Tag: DTNeeded, Value: 20},
		{Tag: DTNeeded, Value: 30},
	}
	if _, err := resolveDynamicOffsets(entries); err != nil {
		t.Fatalf("expected repeated DT_NEEDED to be accepted, got %v", err)
	}
}

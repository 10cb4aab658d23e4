package elf

import "testing"

func newGotTestFile(t *testing.T) *File {
	t.Helper()
	f := &File{bitWidth: 64, parsed: true, logger: defaultLogger()}
	f.data = make([]byte, 0x200)
	f.Segments = []Segment{{
		Type: PTLoad, Flags: PFR | PFW, Offset: 0x100, Vaddr: 0x2000,
		Filesz: 0x100, Memsz: 0x100,
	}}
	f.JumpRelocations = []Relocation{{
		Offset: 0x2010,
		Info:   makeRelocInfo(1, RX86_64JumpSlot, 64),
		Symbol: &DynamicSymbol{Name: "printf"},
	}}
	return f
}

func TestGetMemAddrOfGotEntry(t *testing.T) {
	f := newGotTestFile(t)
	addr, err := f.GetMemAddrOfGotEntry("printf")
	if err != nil {
		t.Fatalf("GetMemAddrOfGotEntry: %v", err)
	}
	if addr != 0x2010 {
		t.Fatalf("addr = 0x%x, want 0x2010", addr)
	}
}

func TestModifyAndGetGotEntryValue(t *testing.T) {
	f := newGotTestFile(t)
	if err := f.ModifyGotEntryAddr("printf", 0xdeadbeef); err != nil {
		t.Fatalf("ModifyGotEntryAddr: %v", err)
	}
	got, err := f.GetValueOfGotEntry("printf")
	if err != nil {
		t.Fatalf("GetValueOfGotEntry: %v", err)
	}
	if got != 0xdeadbeef {
		t.Fatalf("GetValueOfGotEntry() = 0x%x, want 0xdeadbeef", got)
	}
}

func TestGetJmpRelEntryByNameNotFound(t *testing.T) {
	f := newGotTestFile(t)
	_, err := f.getJmpRelEntryByName("nonexistent")
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

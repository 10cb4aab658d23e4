package elf

import "testing"

func TestDynamicSymbolRoundTrip64(t *testing.T) {
	s := DynamicSymbol{
		NameIndex: 3, Info: MakeSymInfo(STBGlobal, STTFunc), Other: 0,
		Shndx: 7, Value: 0x401020, Size: 0x30,
	}
	buf := encodeDynamicSymbol(&s, 64)
	if len(buf) != symbolEntrySize(64) {
		t.Fatalf("expected %d bytes, got %d", symbolEntrySize(64), len(buf))
	}
	got, err := decodeDynamicSymbol(buf, 0, 64)
	if err != nil {
		t.Fatalf("decodeDynamicSymbol: %v", err)
	}
	got.Name = ""
	if got != s {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestDynamicSymbolRoundTrip32(t *testing.T) {
	s := DynamicSymbol{NameIndex: 1, Value: 0x8049000, Size: 4,
		Info: MakeSymInfo(STBLocal, STTObject), Other: 0, Shndx: 2}
	buf := encodeDynamicSymbol(&s, 32)
	if len(buf) != symbolEntrySize(32) {
		t.Fatalf("expected %d bytes, got %d", symbolEntrySize(32), len(buf))
	}
	got, err := decodeDynamicSymbol(buf, 0, 32)
	if err != nil {
		t.Fatalf("decodeDynamicSymbol: %v", err)
	}
	got.Name = ""
	if got != s {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestSymbolEntrySizeDiffersByClass(t *testing.T) {
	if symbolEntrySize(32) == symbolEntrySize(64) {
		t.Fatalf("32-bit and 64-bit symbol entry sizes should differ")
	}
}

func TestSymBindAndType(t *testing.T) {
	info := MakeSymInfo(STBGlobal, STTFunc)
	if SymBind(info) != STBGlobal {
		t.Fatalf("SymBind() = %d, want STBGlobal", SymBind(info))
	}
	if SymType(info) != STTFunc {
		t.Fatalf("SymType() = %d, want STTFunc", SymType(info))
	}
}

func TestSameIdentity(t *testing.T) {
	a := &DynamicSymbol{Name: "foo", Value: 1, Size: 2, Info: 3, Other: 0, Shndx: 1}
	b := &DynamicSymbol{Name: "foo", Value: 1, Size: 2, Info: 3, Other: 0, Shndx: 1}
	c := &DynamicSymbol{Name: "bar", Value: 1, Size: 2, Info: 3, Other: 0, Shndx: 1}
	if !a.sameIdentity(b) {
		t.Fatalf("expected a and b to share identity")
	}
	if a.sameIdentity(c) {
		t.Fatalf("expected a and c to differ")
	}
}

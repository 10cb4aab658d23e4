package elf

import "testing"

func makeIdent(class, data byte) []byte {
	id := make([]byte, identSize)
	copy(id, elfMagic[:])
	id[eiClass] = class
	id[eiData] = data
	id[eiVersion] = EVCurrent
	id[eiOSABI] = ELFOSABILinux
	return id
}

func TestDecodeHeader64RoundTrip(t *testing.T) {
	h := Header{
		Type: ETDyn, Machine: EMX86_64, Version: EVCurrent,
		Entry: 0x401000, Phoff: 64, Shoff: 0x2000,
		Ehsize: headerSize64, Phentsize: 56, Phnum: 3,
		Shentsize: 64, Shnum: 10, Shstrndx: 9,
	}
	copy(h.Ident[:], makeIdent(ELFCLASS64, ELFDATA2LSB))

	buf := encodeHeader(&h, 64)
	if len(buf) != headerSize64 {
		t.Fatalf("expected %d bytes, got %d", headerSize64, len(buf))
	}

	got, err := decodeHeader(buf, 64)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestDecodeHeaderTooShort(t *testing.T) {
	_, err := decodeHeader(make([]byte, 10), 64)
	var perr *ParseError
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
	if pe, ok := err.(*ParseError); ok {
		perr = pe
	} else {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Kind != KindTooShort {
		t.Fatalf("expected KindTooShort, got %v", perr.Kind)
	}
}

func TestHeaderClassAndData(t *testing.T) {
	var h Header
	copy(h.Ident[:], makeIdent(ELFCLASS32, ELFDATA2LSB))
	if h.Class() != ELFCLASS32 {
		t.Fatalf("Class() = %d, want ELFCLASS32", h.Class())
	}
	if h.DataEncoding() != ELFDATA2LSB {
		t.Fatalf("DataEncoding() = %d, want ELFDATA2LSB", h.DataEncoding())
	}
}

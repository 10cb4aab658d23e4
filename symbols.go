package elf

import "github.com/xyproto/zwoelf/internal/bits"

// DynamicSymbol is one entry of .dynsym. File.Symbols holds the symbols
// decoded from the table; a relocation whose symbol record is identical
// to one of them references that same *DynamicSymbol rather than a copy,
// so that an edit through one path is visible through every other
// (§4.6). A relocation whose symbol matches none of them holds the
// record decoded for it alone.
type DynamicSymbol struct {
	NameIndex uint32
	Name      string
	Info      uint8
	Other     uint8
	Shndx     uint16
	Value     uint64
	Size      uint64
}

func (s *DynamicSymbol) Bind() uint8 { return SymBind(s.Info) }
func (s *DynamicSymbol) Type() uint8 { return SymType(s.Info) }

// sameIdentity reports whether two symbol records describe the same
// symbol, used to intern a freshly decoded entry against the existing
// arena rather than allocate a duplicate.
func (s *DynamicSymbol) sameIdentity(o *DynamicSymbol) bool {
	return s.Name == o.Name &&
		s.Value == o.Value &&
		s.Size == o.Size &&
		s.Info == o.Info &&
		s.Other == o.Other &&
		s.Shndx == o.Shndx
}

// symbolEntrySize lays out Elf32_Sym/Elf64_Sym. The two classes disagree
// on field order: 32-bit is (name, value, size, info, other, shndx)
// while 64-bit moves info/other/shndx up front so that value/size, both
// natural words, land on an 8-byte boundary: (name, info, other, shndx,
// value, size).
func symbolEntrySize(bitWidth int) int {
	if bitWidth == 64 {
		return 4 + 1 + 1 + 2 + 8 + 8
	}
	return 4 + 4 + 4 + 1 + 1 + 2
}

func decodeDynamicSymbol(data []byte, offset, bitWidth int) (DynamicSymbol, error) {
	size := symbolEntrySize(bitWidth)
	if err := bits.RequireLen(data, offset, size); err != nil {
		return DynamicSymbol{}, wrapErr(KindMalformedRecord, err, "symbol table entry at 0x%x", offset)
	}

	var s DynamicSymbol
	s.NameIndex = bits.NewReader(data, offset, bitWidth).U32()

	// The mixed byte/word layout doesn't fit Reader's U16/U32 helpers
	// cleanly for the two single-byte fields, so info/other are read
	// directly off the backing slice at their known position.
	if bitWidth == 64 {
		s.Info = data[offset+4]
		s.Other = data[offset+5]
		s.Shndx = bits.NewReader(data, offset+6, bitWidth).U16()
		r2 := bits.NewReader(data, offset+8, bitWidth)
		s.Value = r2.Word()
		s.Size = r2.Word()
	} else {
		r3 := bits.NewReader(data, offset+4, bitWidth)
		s.Value = r3.Word()
		s.Size = r3.Word()
		s.Info = data[offset+12]
		s.Other = data[offset+13]
		s.Shndx = bits.NewReader(data, offset+14, bitWidth).U16()
	}

	return s, nil
}

func encodeDynamicSymbol(s *DynamicSymbol, bitWidth int) []byte {
	buf := make([]byte, symbolEntrySize(bitWidth))
	if bitWidth == 64 {
		w := bits.NewWriter(buf, bitWidth)
		w.PutU32(s.NameIndex)
		buf[4] = s.Info
		buf[5] = s.Other
		w2 := bits.NewWriter(buf, bitWidth)
		w2.Off = 6
		w2.PutU16(s.Shndx)
		w3 := bits.NewWriter(buf, bitWidth)
		w3.Off = 8
		w3.PutWord(s.Value)
		w3.PutWord(s.Size)
	} else {
		w := bits.NewWriter(buf, bitWidth)
		w.PutU32(s.NameIndex)
		w.PutWord(s.Value)
		w.PutWord(s.Size)
		buf[12] = s.Info
		buf[13] = s.Other
		w4 := bits.NewWriter(buf, bitWidth)
		w4.Off = 14
		w4.PutU16(s.Shndx)
	}
	return buf
}

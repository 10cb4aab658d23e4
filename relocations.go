package elf

import "github.com/xyproto/zwoelf/internal/bits"

// Relocation is one Elf32_Rel/Rela or Elf64_Rel/Rela entry. Addend is
// zero and meaningless when the table that produced this entry is REL
// rather than RELA; HasAddend distinguishes the two so the serializer
// re-emits the matching record shape.
type Relocation struct {
	Offset    uint64
	Info      uint64
	Addend    int64
	HasAddend bool

	// Symbol is the *DynamicSymbol this relocation's symbol index
	// resolved to at parse time (§4.6): the matching File.Symbols entry
	// when one exists, otherwise the record decoded for this relocation.
	// Parse sets it for every entry; a symbol index whose record lies
	// outside the image fails the parse.
	Symbol *DynamicSymbol
}

// relocSymbolIndex and relocType unpack r_info's two halves. The 32-bit and
// 64-bit packings differ in field width (8 bits of type on 32-bit ELF,
// 32 bits of type on 64-bit ELF) so the split takes the class.
func relocSymbolIndex(info uint64, bitWidth int) uint32 {
	if bitWidth == 64 {
		return uint32(info >> 32)
	}
	return uint32(info >> 8)
}

func relocType(info uint64, bitWidth int) uint32 {
	if bitWidth == 64 {
		return uint32(info)
	}
	return uint32(info & 0xff)
}

func makeRelocInfo(symIdx, relType uint32, bitWidth int) uint64 {
	if bitWidth == 64 {
		return uint64(symIdx)<<32 | uint64(relType)
	}
	return uint64(symIdx)<<8 | uint64(relType&0xff)
}

// relocationEntrySize is two natural words (r_offset, r_info) for REL,
// plus one more natural word (r_addend) for RELA.
func relocationEntrySize(bitWidth int, hasAddend bool) int {
	words := 2
	if hasAddend {
		words = 3
	}
	return bits.RecordSize(bitWidth, words, 0)
}

func decodeRelocation(data []byte, offset, bitWidth int, hasAddend bool) (Relocation, error) {
	size := relocationEntrySize(bitWidth, hasAddend)
	if err := bits.RequireLen(data, offset, size); err != nil {
		return Relocation{}, wrapErr(KindInconsistentRelocation, err, "relocation entry at 0x%x", offset)
	}
	r := bits.NewReader(data, offset, bitWidth)
	var rel Relocation
	rel.Offset = r.Word()
	rel.Info = r.Word()
	rel.HasAddend = hasAddend
	if hasAddend {
		rel.Addend = r.SWord()
	}
	return rel, nil
}

func encodeRelocation(rel *Relocation, bitWidth int) []byte {
	buf := make([]byte, relocationEntrySize(bitWidth, rel.HasAddend))
	w := bits.NewWriter(buf, bitWidth)
	w.PutWord(rel.Offset)
	w.PutWord(rel.Info)
	if rel.HasAddend {
		w.PutSWord(rel.Addend)
	}
	return buf
}

// isJumpSlot reports whether this relocation's type is a GOT/PLT entry
// populated lazily by the dynamic linker (R_X86_64_JUMP_SLOT or the
// matching 386 tag), the class of relocation the GOT helpers operate on.
func (rel *Relocation) isJumpSlot(machine uint16) bool {
	t := relocType(rel.Info, relocInfoBitWidth(machine))
	switch machine {
	case EMX86_64:
		return t == RX86_64JumpSlot
	case EM386:
		return t == R386JmpSlot
	}
	return false
}

func relocInfoBitWidth(machine uint16) int {
	if machine == EMX86_64 {
		return 64
	}
	return 32
}

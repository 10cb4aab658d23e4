package elf

import "github.com/xyproto/zwoelf/internal/bits"

// Section is one section header table entry plus its resolved name.
type Section struct {
	NameIndex uint32
	Name      string
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

// sectionHeaderSize returns the fixed entry size for Elf32_Shdr/Elf64_Shdr:
// 2 plain 32-bit words (sh_name, sh_type), then 4 natural words
// (sh_flags, sh_addr, sh_offset, sh_size), then 2 plain 32-bit words
// (sh_link, sh_info), then 2 natural words (sh_addralign, sh_entsize).
func sectionHeaderSize(bitWidth int) int {
	return bits.RecordSize(bitWidth, 4+2, 2+2)
}

func decodeSectionHeader(data []byte, offset, bitWidth int) (Section, error) {
	size := sectionHeaderSize(bitWidth)
	if err := bits.RequireLen(data, offset, size); err != nil {
		return Section{}, wrapErr(KindMalformedRecord, err, "section header entry at 0x%x", offset)
	}

	r := bits.NewReader(data, offset, bitWidth)
	var s Section
	s.NameIndex = r.U32()
	s.Type = r.U32()
	s.Flags = r.Word()
	s.Addr = r.Word()
	s.Offset = r.Word()
	s.Size = r.Word()
	s.Link = r.U32()
	s.Info = r.U32()
	s.AddrAlign = r.Word()
	s.EntSize = r.Word()
	return s, nil
}

func encodeSectionHeader(s *Section, bitWidth int) []byte {
	buf := make([]byte, sectionHeaderSize(bitWidth))
	w := bits.NewWriter(buf, bitWidth)
	w.PutU32(s.NameIndex)
	w.PutU32(s.Type)
	w.PutWord(s.Flags)
	w.PutWord(s.Addr)
	w.PutWord(s.Offset)
	w.PutWord(s.Size)
	w.PutU32(s.Link)
	w.PutU32(s.Info)
	w.PutWord(s.AddrAlign)
	w.PutWord(s.EntSize)
	return buf
}

// resolveSectionName scans forward from nameIndex within the string table
// bytes to the next NUL, returning the empty string if nameIndex runs off
// the end unterminated (§4.2 step 5).
func resolveSectionName(stringTable []byte, nameIndex uint32) string {
	start := int(nameIndex)
	if start < 0 || start > len(stringTable) {
		return ""
	}
	end := start
	for end < len(stringTable) && stringTable[end] != 0 {
		end++
	}
	if end == len(stringTable) {
		return ""
	}
	return string(stringTable[start:end])
}

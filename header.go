package elf

import (
	"github.com/xyproto/zwoelf/internal/bits"
)

const identSize = 16

const (
	headerSize32 = 52
	headerSize64 = 64
)

// Header is the ELF identification bytes plus the fixed numeric fields of
// Elf32_Ehdr/Elf64_Ehdr. Address/offset fields are always stored widened
// to uint64 regardless of class; the codec narrows them back to 32 bits
// on encode when Bits == 32.
type Header struct {
	Ident     [identSize]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// Class returns e_ident[EI_CLASS].
func (h *Header) Class() byte { return h.Ident[eiClass] }

// DataEncoding returns e_ident[EI_DATA].
func (h *Header) DataEncoding() byte { return h.Ident[eiData] }

func headerSize(bitWidth int) int {
	if bitWidth == 64 {
		return headerSize64
	}
	return headerSize32
}

func decodeHeader(data []byte, bitWidth int) (Header, error) {
	size := headerSize(bitWidth)
	if err := bits.RequireLen(data, 0, size); err != nil {
		return Header{}, wrapErr(KindTooShort, err, "ELF header needs %d bytes", size)
	}

	var h Header
	copy(h.Ident[:], data[:identSize])

	r := bits.NewReader(data, identSize, bitWidth)
	h.Type = r.U16()
	h.Machine = r.U16()
	h.Version = r.U32()
	h.Entry = r.Word()
	h.Phoff = r.Word()
	h.Shoff = r.Word()
	h.Flags = r.U32()
	h.Ehsize = r.U16()
	h.Phentsize = r.U16()
	h.Phnum = r.U16()
	h.Shentsize = r.U16()
	h.Shnum = r.U16()
	h.Shstrndx = r.U16()

	return h, nil
}

func encodeHeader(h *Header, bitWidth int) []byte {
	size := headerSize(bitWidth)
	buf := make([]byte, size)
	copy(buf[:identSize], h.Ident[:])

	w := bits.NewWriter(buf, bitWidth)
	w.Off = identSize
	w.PutU16(h.Type)
	w.PutU16(h.Machine)
	w.PutU32(h.Version)
	w.PutWord(h.Entry)
	w.PutWord(h.Phoff)
	w.PutWord(h.Shoff)
	w.PutU32(h.Flags)
	w.PutU16(h.Ehsize)
	w.PutU16(h.Phentsize)
	w.PutU16(h.Phnum)
	w.PutU16(h.Shentsize)
	w.PutU16(h.Shnum)
	w.PutU16(h.Shstrndx)

	return buf
}

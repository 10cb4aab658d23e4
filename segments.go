package elf

import "github.com/xyproto/zwoelf/internal/bits"

// Segment is one program header table entry (Elf32_Phdr/Elf64_Phdr).
type Segment struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64

	// SectionsWithin and SegmentsWithin are derived containment relations,
	// recomputed by (*File).recomputeContainment after parsing and after
	// every structural edit. They hold indices into the owning File's
	// Sections/Segments slices rather than pointers, so they stay valid
	// across slice reallocation between recomputes.
	SectionsWithin []int
	SegmentsWithin []int
}

// programHeaderSize returns the fixed entry size. p_flags is a plain
// 32-bit word in both classes: the 64-bit layout moves it right after
// p_type so that every natural-word field after it is 8-byte aligned,
// while the 32-bit layout keeps it after p_memsz. Because the field
// order differs between the classes, the two layouts are built
// explicitly below.
func programHeaderSize(bitWidth int) int {
	if bitWidth == 64 {
		return 4 + 4 + 8*6
	}
	return 4*2 + 4*3 + 4*3
}

func decodeProgramHeader(data []byte, offset, bitWidth int) (Segment, error) {
	size := programHeaderSize(bitWidth)
	if err := bits.RequireLen(data, offset, size); err != nil {
		return Segment{}, wrapErr(KindMalformedRecord, err, "program header entry at 0x%x", offset)
	}

	r := bits.NewReader(data, offset, bitWidth)
	var s Segment
	if bitWidth == 64 {
		s.Type = r.U32()
		s.Flags = r.U32()
		s.Offset = r.Word()
		s.Vaddr = r.Word()
		s.Paddr = r.Word()
		s.Filesz = r.Word()
		s.Memsz = r.Word()
		s.Align = r.Word()
	} else {
		s.Type = r.U32()
		s.Offset = r.Word()
		s.Vaddr = r.Word()
		s.Paddr = r.Word()
		s.Filesz = r.Word()
		s.Memsz = r.Word()
		s.Flags = r.U32()
		s.Align = r.Word()
	}
	return s, nil
}

func encodeProgramHeader(s *Segment, bitWidth int) []byte {
	buf := make([]byte, programHeaderSize(bitWidth))
	w := bits.NewWriter(buf, bitWidth)
	if bitWidth == 64 {
		w.PutU32(s.Type)
		w.PutU32(s.Flags)
		w.PutWord(s.Offset)
		w.PutWord(s.Vaddr)
		w.PutWord(s.Paddr)
		w.PutWord(s.Filesz)
		w.PutWord(s.Memsz)
		w.PutWord(s.Align)
	} else {
		w.PutU32(s.Type)
		w.PutWord(s.Offset)
		w.PutWord(s.Vaddr)
		w.PutWord(s.Paddr)
		w.PutWord(s.Filesz)
		w.PutWord(s.Memsz)
		w.PutU32(s.Flags)
		w.PutWord(s.Align)
	}
	return buf
}

// containsOffset reports whether a file offset range [offset, offset+size)
// lies entirely within this segment's file image.
func (s *Segment) containsOffset(offset, size uint64) bool {
	if size == 0 {
		return offset >= s.Offset && offset <= s.Offset+s.Filesz
	}
	return offset >= s.Offset && offset+size <= s.Offset+s.Filesz
}

// isExecutable reports whether PF_X is set, using a bitwise test rather
// than equality so combined flags (e.g. PF_R|PF_X) are recognized.
func (s *Segment) isExecutable() bool {
	return s.Flags&PFX != 0
}

// recomputeContainment recomputes SectionsWithin/SegmentsWithin for every
// segment from the current Sections/Segments slices. It runs once after
// parsing (the driver's containment step) and again after any edit that
// reshapes either slice, so the relations never answer from a stale
// section or segment count.
func (f *File) recomputeContainment() {
	for si := range f.Segments {
		seg := &f.Segments[si]
		segStart, segEnd := seg.Vaddr, seg.Vaddr+seg.Memsz

		seg.SectionsWithin = seg.SectionsWithin[:0]
		for i := range f.Sections {
			sec := &f.Sections[i]
			secStart, secEnd := sec.Addr, sec.Addr+sec.Size
			if segStart <= secStart && secEnd <= segEnd {
				seg.SectionsWithin = append(seg.SectionsWithin, i)
			}
		}
	}

	for oi := range f.Segments {
		outer := &f.Segments[oi]
		outer.SegmentsWithin = outer.SegmentsWithin[:0]
		if outer.Type == PTGNUStack {
			continue
		}
		outerStart, outerEnd := outer.Offset, outer.Offset+outer.Filesz
		for ii := range f.Segments {
			if ii == oi {
				continue
			}
			inner := &f.Segments[ii]
			if inner.Type == PTGNUStack {
				continue
			}
			innerStart, innerEnd := inner.Offset, inner.Offset+inner.Filesz
			if outerStart <= innerStart && innerEnd <= outerEnd {
				outer.SegmentsWithin = append(outer.SegmentsWithin, ii)
			}
		}
	}
}

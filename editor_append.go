package elf

import "github.com/xyproto/zwoelf/internal/bits"

// AppendResult reports where appended data landed after AppendDataToSegment
// or AppendDataToExecutableSegment.
type AppendResult struct {
	FileOffset   uint64
	MemoryAddr   uint64
	SegmentIndex int
}

// AppendDataToSegment grows the given segment's file and memory image by
// appending data at its current end (§4.4). When no segment follows in
// virtual memory, only the sections at or after the insertion point are
// shifted, by len(data). Otherwise the sections and segments from the
// next segment's file offset on, and e_phoff/e_shoff when they lie past
// the extended segment, are shifted by the smallest multiple of p_align
// greater than len(data). When a new section is requested for
// the appended bytes, the alignment chosen is the largest power of two
// (capped at 16, the .text convention) that evenly divides len(data).
func (f *File) AppendDataToSegment(data []byte, segmentIndex int, newSectionName string, extendExistingSection bool) (AppendResult, error) {
	if err := f.requireParsed(); err != nil {
		return AppendResult{}, err
	}
	if segmentIndex < 0 || segmentIndex >= len(f.Segments) {
		return AppendResult{}, newErr(KindInvalidConfig, "segment index %d out of range", segmentIndex)
	}

	seg := &f.Segments[segmentIndex]
	nextSeg, freeSpace, hasNext := f.nextSegmentAndFreeSpace(seg)

	var dataOffset, dataMemAddr uint64

	if !hasNext {
		dataMemAddr = seg.Vaddr + seg.Memsz
		dataOffset = seg.Offset + seg.Filesz

		f.insertBytes(int(dataOffset), data)

		for i := range f.Sections {
			if f.Sections[i].Offset >= seg.Offset+seg.Filesz {
				f.Sections[i].Offset += uint64(len(data))
			}
		}

		seg.Filesz += uint64(len(data))
		seg.Memsz += uint64(len(data))
	} else {
		// fixed: reject only when the data is strictly larger than the
		// free space, not when it exactly fills it.
		if uint64(len(data)) > freeSpace {
			return AppendResult{}, newErr(KindNoRoom, "data of length %d does not fit in %d bytes of free space before the next segment", len(data), freeSpace)
		}

		align := seg.Align
		if align == 0 {
			// p_align isn't authoritative for every segment (some
			// toolchains emit 0 meaning "no constraint"); fall back to
			// the host's page size as the alignment probe.
			align = bits.PageSize()
		}
		alignmentMultiplier := uint64(len(data))/align + 1
		offsetAddition := alignmentMultiplier * align

		for i := range f.Sections {
			if f.Sections[i].Offset >= nextSeg.Offset {
				f.Sections[i].Offset += offsetAddition
			}
		}
		withinSeg := make(map[int]bool, len(seg.SegmentsWithin))
		for _, idx := range seg.SegmentsWithin {
			withinSeg[idx] = true
		}
		for i := range f.Segments {
			s := &f.Segments[i]
			if s == seg || s == nextSeg || withinSeg[i] {
				continue
			}
			if s.Offset > nextSeg.Offset {
				s.Offset += offsetAddition
			}
		}
		nextSeg.Offset += offsetAddition

		if f.Header.Phoff > seg.Offset+seg.Filesz {
			f.Header.Phoff += offsetAddition
		}
		if f.Header.Shoff > seg.Offset+seg.Filesz {
			f.Header.Shoff += offsetAddition
		}

		dataMemAddr = seg.Vaddr + seg.Memsz
		dataOffset = seg.Offset + seg.Filesz

		f.insertBytes(int(dataOffset), data)
		f.insertZeros(int(dataOffset)+len(data), int(offsetAddition)-len(data))

		seg.Filesz += uint64(len(data))
		seg.Memsz += uint64(len(data))
	}

	switch {
	case newSectionName != "" && !extendExistingSection:
		align := newSectionAlignment(len(data))
		if _, err := f.AddNewSection(newSectionName, SHTProgbits, SHFExecinstr|SHFAlloc,
			dataMemAddr, dataOffset, uint64(len(data)), 0, 0, align, 0); err != nil {
			return AppendResult{}, err
		}
	case extendExistingSection && newSectionName == "":
		for i := range f.Sections {
			s := &f.Sections[i]
			if s.Addr+s.Size == dataMemAddr {
				extendBy := uint64(len(data))
				if hasNext {
					extendBy = freeSpace
				}
				f.ExtendSection(i, extendBy)
				break
			}
		}
	default:
		f.logger.Logf("NOTE: appended data without a covering section will not be seen by tools that interpret sections")
	}

	f.recomputeContainment()

	return AppendResult{FileOffset: dataOffset, MemoryAddr: dataMemAddr, SegmentIndex: segmentIndex}, nil
}

// AppendDataToExecutableSegment scans PT_LOAD segments with PF_X set in
// order and appends data to the first one whose free virtual memory
// space after it is large enough, per §4.4's "next executable segment"
// strategy.
func (f *File) AppendDataToExecutableSegment(data []byte, newSectionName string, extendExistingSection bool) (AppendResult, error) {
	if err := f.requireParsed(); err != nil {
		return AppendResult{}, err
	}

	bestIndex := -1
	found := false

	for i := range f.Segments {
		s := &f.Segments[i]
		// fixed: test the flag bit, not equality with 1, so combined
		// flags like PF_R|PF_X are still recognized as executable.
		if !s.isExecutable() || s.Type != PTLoad {
			continue
		}
		_, free, hasNext := f.nextSegmentAndFreeSpace(s)
		if hasNext && free > uint64(len(data)) {
			bestIndex = i
			found = true
			break
		}
	}

	if !found {
		return AppendResult{}, newErr(KindNoRoom, "no executable PT_LOAD segment has %d bytes of free space after it", len(data))
	}

	return f.AppendDataToSegment(data, bestIndex, newSectionName, extendExistingSection)
}

// nextSegmentAndFreeSpace finds the segment whose virtual address comes
// directly after seg's mapped range and the free byte count in between.
func (f *File) nextSegmentAndFreeSpace(seg *Segment) (*Segment, uint64, bool) {
	var next *Segment
	var best uint64
	segEnd := seg.Vaddr + seg.Memsz

	for i := range f.Segments {
		other := &f.Segments[i]
		if other == seg {
			continue
		}
		if other.Vaddr <= segEnd {
			continue
		}
		diff := other.Vaddr - segEnd
		if next == nil || diff < best {
			next = other
			best = diff
		}
	}
	if next == nil {
		return nil, 0, false
	}
	return next, best, true
}

func newSectionAlignment(dataLen int) uint64 {
	return bits.LargestPow2Divisor(uint64(dataLen), 16)
}

// insertBytes grows f.data by inserting data at offset, shifting
// everything from offset onward to the right.
func (f *File) insertBytes(offset int, data []byte) {
	grown := make([]byte, len(f.data)+len(data))
	copy(grown, f.data[:offset])
	copy(grown[offset:], data)
	copy(grown[offset+len(data):], f.data[offset:])
	f.data = grown
}

// insertZeros grows f.data by inserting n zero bytes at offset.
func (f *File) insertZeros(offset, n int) {
	if n <= 0 {
		return
	}
	f.insertBytes(offset, make([]byte, n))
}

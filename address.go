package elf

// VirtualMemoryAddrToFileOffset translates a virtual memory address to
// the file offset of the PT_LOAD (or other) segment that maps it,
// returning KindAddressUnmapped if no segment covers the address.
func (f *File) VirtualMemoryAddrToFileOffset(addr uint64) (uint64, error) {
	if err := f.requireParsed(); err != nil {
		return 0, err
	}

	var found *Segment
	for i := range f.Segments {
		s := &f.Segments[i]
		start, end := s.Vaddr, s.Vaddr+s.Memsz
		if start <= addr && addr < end {
			found = s
			break
		}
	}
	if found == nil {
		return 0, newErr(KindAddressUnmapped, "virtual address 0x%x is not mapped by any segment", addr)
	}

	relOffset := addr - found.Vaddr
	if found.Filesz != found.Memsz && relOffset >= found.Filesz {
		return 0, newErr(KindAddressUnmapped, "address 0x%x falls in the memsz-only tail of its segment (not backed by file data)", addr)
	}
	return found.Offset + relOffset, nil
}

// FileOffsetToVirtualMemoryAddr is the inverse of
// VirtualMemoryAddrToFileOffset: it resolves the segment whose file
// image contains offset and returns the corresponding virtual address.
func (f *File) FileOffsetToVirtualMemoryAddr(offset uint64) (uint64, error) {
	if err := f.requireParsed(); err != nil {
		return 0, err
	}

	var found *Segment
	for i := range f.Segments {
		s := &f.Segments[i]
		start, end := s.Offset, s.Offset+s.Filesz
		if start <= offset && offset < end {
			found = s
			break
		}
	}
	if found == nil {
		return 0, newErr(KindAddressUnmapped, "file offset 0x%x is not covered by any segment", offset)
	}

	relOffset := offset - found.Offset
	if found.Filesz != found.Memsz && relOffset >= found.Memsz {
		return 0, newErr(KindAddressUnmapped, "file offset 0x%x maps past its segment's memsz", offset)
	}
	return found.Vaddr + relOffset, nil
}

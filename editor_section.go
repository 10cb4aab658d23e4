package elf

// AddNewSection adds a section header describing a region of the file,
// either bootstrapping a brand-new section header table (when the file
// currently has none: a synthesized NULL section, the caller's section,
// and a fresh .shstrtab) or inserting into the existing table at the
// position sorted by file offset (§4.4).
func (f *File) AddNewSection(name string, shType uint32, flags uint64, addr, offset, size uint64, link, info uint32, addrAlign, entSize uint64) (int, error) {
	if err := f.requireParsed(); err != nil {
		return 0, err
	}

	if len(f.Sections) == 0 {
		return f.bootstrapSectionTable(name, shType, flags, addr, offset, size, link, info, addrAlign, entSize)
	}
	return f.appendToSectionTable(name, shType, flags, addr, offset, size, link, info, addrAlign, entSize)
}

func (f *File) bootstrapSectionTable(name string, shType uint32, flags uint64, addr, offset, size uint64, link, info uint32, addrAlign, entSize uint64) (int, error) {
	f.Header.Shentsize = uint16(sectionHeaderSize(f.bitWidth))

	f.Sections = append(f.Sections, Section{Name: ""})
	f.Header.Shnum++

	// string table layout is [NUL][".shstrtab\0"][name\0]; the caller's
	// section name starts right after ".shstrtab"'s own NUL terminator.
	nameIndex := uint32(len(".shstrtab") + 2)
	newSection := Section{
		NameIndex: nameIndex,
		Name:      name,
		Type:      shType,
		Flags:     flags,
		Addr:      addr,
		Offset:    offset,
		Size:      size,
		Link:      link,
		Info:      info,
		AddrAlign: addrAlign,
		EntSize:   entSize,
	}
	f.Sections = append(f.Sections, newSection)
	f.Header.Shnum++

	shstrtabOffset := uint64(len(f.data))
	shstrtabLen := uint64(len(".shstrtab") + 1 + len(name) + 1 + 1)

	strtabBytes := make([]byte, 0, shstrtabLen)
	strtabBytes = append(strtabBytes, 0) // NUL section's empty name
	strtabBytes = append(strtabBytes, ".shstrtab"...)
	strtabBytes = append(strtabBytes, 0)
	strtabBytes = append(strtabBytes, name...)
	strtabBytes = append(strtabBytes, 0)
	f.data = append(f.data, strtabBytes...)

	// NameIndex 1 is ".shstrtab" itself, right after the NUL section's
	// empty-string byte 0.
	shstrtabSection := Section{
		NameIndex: 1,
		Name:      ".shstrtab",
		Type:      SHTStrtab,
		Offset:    shstrtabOffset,
		Size:      uint64(len(strtabBytes)),
		AddrAlign: 1,
	}
	f.Sections = append(f.Sections, shstrtabSection)
	f.Header.Shnum++

	f.Header.Shoff = shstrtabOffset + uint64(len(strtabBytes))
	f.Header.Shstrndx = 2

	f.recomputeContainment()
	return 1, nil
}

func (f *File) appendToSectionTable(name string, shType uint32, flags uint64, addr, offset, size uint64, link, info uint32, addrAlign, entSize uint64) (int, error) {
	shstrndx := int(f.Header.Shstrndx)
	if shstrndx < 0 || shstrndx >= len(f.Sections) {
		return 0, newErr(KindMalformedRecord, "e_shstrndx %d out of range", shstrndx)
	}

	newNameIndex := uint32(f.Sections[shstrndx].Size)
	newSection := Section{
		NameIndex: newNameIndex,
		Name:      name,
		Type:      shType,
		Flags:     flags,
		Addr:      addr,
		Offset:    offset,
		Size:      size,
		Link:      link,
		Info:      info,
		AddrAlign: addrAlign,
		EntSize:   entSize,
	}

	position := -1
	for i := 0; i+1 < len(f.Sections); i++ {
		if f.Sections[i].Offset < offset && f.Sections[i+1].Offset >= offset {
			position = i + 1
			if position <= shstrndx {
				f.Header.Shstrndx++
				shstrndx++
			}
			break
		}
	}

	if position < 0 {
		f.Sections = append(f.Sections, newSection)
	} else {
		f.Sections = append(f.Sections, Section{})
		copy(f.Sections[position+1:], f.Sections[position:])
		f.Sections[position] = newSection
	}

	strtabSec := &f.Sections[shstrndx]
	strtabEnd := strtabSec.Offset + strtabSec.Size
	if f.Header.Shoff >= strtabEnd && f.Header.Shoff <= strtabEnd+uint64(len(name))+1 {
		f.Header.Shoff += uint64(len(name)) + 1
	}

	nameBytes := append([]byte(name), 0)
	f.insertBytes(int(strtabEnd), nameBytes)
	strtabSec.Size += uint64(len(nameBytes))

	f.Header.Shnum++

	f.recomputeContainment()
	if position < 0 {
		return len(f.Sections) - 1, nil
	}
	return position, nil
}

// ExtendSection grows the named-by-index section's sh_size in place;
// it does not move or resize any underlying data, matching the
// original's "just bump the header field" semantics.
func (f *File) ExtendSection(index int, size uint64) {
	f.Sections[index].Size += size
	f.recomputeContainment()
}

// DeleteSectionByName removes the first section whose name matches, or
// reports KindNotFound if none does.
func (f *File) DeleteSectionByName(name string) error {
	if err := f.requireParsed(); err != nil {
		return err
	}
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			f.Sections = append(f.Sections[:i], f.Sections[i+1:]...)

			shstrndx := int(f.Header.Shstrndx)
			if i < shstrndx {
				f.Header.Shstrndx--
			} else if i == shstrndx {
				f.Header.Shstrndx = 0
			}
			if f.Header.Shnum > 0 {
				f.Header.Shnum--
			}
			f.recomputeContainment()
			return nil
		}
	}
	return newErr(KindNotFound, "section %q not found", name)
}

// RemoveSectionHeaderTable clears every section header, the way
// stripping tools produce a minimal-but-still-loadable ELF file; segment
// and dynamic-linking information is untouched.
func (f *File) RemoveSectionHeaderTable() {
	f.Sections = nil
	f.Header.Shoff = 0
	f.Header.Shnum = 0
	f.Header.Shentsize = 0
	f.Header.Shstrndx = 0
	f.recomputeContainment()
}

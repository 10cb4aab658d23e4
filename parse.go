package elf

import (
	"bytes"
	"os"
)

// magic bytes at e_ident[0:4].
var elfMagic = [4]byte{0x7f, 'E', 'L', 'F'}

// Open reads the named file and parses it as ELF.
func Open(path string, opts ...Option) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapErr(KindTooShort, err, "reading %s", path)
	}
	return Parse(data, opts...)
}

// Parse decodes data as an ELF image, following §4.2's ten-step driver:
// validate the identification bytes and decode the header, then (unless
// WithOnlyHeader was given) decode section and program headers, resolve
// the section name string table, locate PT_DYNAMIC and decode its
// entries, the dynamic symbol table, and every relocation table
// DT_JMPREL/DT_REL/DT_RELA names.
func Parse(data []byte, opts ...Option) (*File, error) {
	cfg := newParseConfig(opts)

	f := &File{
		logger: cfg.logger,
		start:  cfg.startOffset,
	}

	base := data
	if cfg.startOffset != 0 {
		if cfg.startOffset < 0 || int64(len(data)) < cfg.startOffset {
			return nil, newErr(KindTooShort, "start offset 0x%x beyond data length %d", cfg.startOffset, len(data))
		}
		base = data[cfg.startOffset:]
	}
	f.data = base

	if len(base) < identSize {
		return nil, newErr(KindTooShort, "need at least %d bytes for e_ident, got %d", identSize, len(base))
	}
	if !bytes.Equal(base[:4], elfMagic[:]) {
		return nil, newErr(KindBadMagic, "bad magic bytes %x", base[:4])
	}

	class := base[eiClass]
	switch class {
	case ELFCLASS32:
		f.bitWidth = 32
	case ELFCLASS64:
		f.bitWidth = 64
	default:
		return nil, newErr(KindUnsupportedClass, "unsupported EI_CLASS %d", class)
	}

	dataEnc := base[eiData]
	if dataEnc != ELFDATA2LSB {
		return nil, newErr(KindUnsupportedData, "unsupported EI_DATA %d (only ELFDATA2LSB is supported)", dataEnc)
	}
	if ver := base[eiVersion]; ver != EVCurrent {
		return nil, newErr(KindUnsupportedVersion, "unsupported EI_VERSION %d", ver)
	}
	if abi := base[eiOSABI]; abi != ELFOSABINone && abi != ELFOSABILinux {
		return nil, newErr(KindUnsupportedABI, "unsupported EI_OSABI %d", abi)
	}
	if abiVer := base[eiABIVers]; abiVer != 0 {
		return nil, newErr(KindUnsupportedABI, "unsupported EI_ABIVERSION %d", abiVer)
	}

	header, err := decodeHeader(base, f.bitWidth)
	if err != nil {
		return nil, err
	}
	f.Header = header

	switch header.Type {
	case ETExec, ETDyn:
	default:
		return nil, newErr(KindUnsupportedType, "unsupported e_type %d", header.Type)
	}
	switch header.Machine {
	case EMX86_64, EM386:
	default:
		return nil, newErr(KindUnsupportedMachine, "unsupported e_machine %d", header.Machine)
	}

	f.logger.Logf("parsed header: class=%d type=%d machine=%d", f.bitWidth, header.Type, header.Machine)

	if cfg.onlyHeader {
		return f, nil
	}

	if err := f.parseSections(); err != nil {
		return nil, err
	}
	if err := f.parseSegments(); err != nil {
		return nil, err
	}
	f.recomputeContainment()
	if err := f.parseDynamic(cfg.forceDynSymPolicy); err != nil {
		return nil, err
	}

	f.parsed = true
	return f, nil
}

func (f *File) parseSections() error {
	h := f.Header
	if h.Shoff == 0 || h.Shnum == 0 {
		return nil
	}
	codecSize := sectionHeaderSize(f.bitWidth)
	entSize := int(h.Shentsize)
	if entSize == 0 {
		entSize = codecSize
	} else if entSize != codecSize {
		return newErr(KindUnsupportedLayout, "e_shentsize %d does not match the expected %d-bit section header size %d", entSize, f.bitWidth, codecSize)
	}

	sections := make([]Section, 0, h.Shnum)
	for i := 0; i < int(h.Shnum); i++ {
		offset := int(h.Shoff) + i*entSize
		sec, err := decodeSectionHeader(f.data, offset, f.bitWidth)
		if err != nil {
			return err
		}
		sections = append(sections, sec)
	}

	if int(h.Shstrndx) < len(sections) {
		strTab := sections[h.Shstrndx]
		tableEnd := strTab.Offset + strTab.Size
		if tableEnd <= uint64(len(f.data)) {
			raw := f.data[strTab.Offset:tableEnd]
			for i := range sections {
				sections[i].Name = resolveSectionName(raw, sections[i].NameIndex)
			}
		}
	}

	f.Sections = sections
	return nil
}

func (f *File) parseSegments() error {
	h := f.Header
	if h.Phoff == 0 || h.Phnum == 0 {
		return nil
	}
	codecSize := programHeaderSize(f.bitWidth)
	entSize := int(h.Phentsize)
	if entSize == 0 {
		entSize = codecSize
	} else if entSize != codecSize {
		return newErr(KindUnsupportedLayout, "e_phentsize %d does not match the expected %d-bit program header size %d", entSize, f.bitWidth, codecSize)
	}

	segments := make([]Segment, 0, h.Phnum)
	for i := 0; i < int(h.Phnum); i++ {
		offset := int(h.Phoff) + i*entSize
		seg, err := decodeProgramHeader(f.data, offset, f.bitWidth)
		if err != nil {
			return err
		}
		segments = append(segments, seg)
	}
	f.Segments = segments
	return nil
}

// parseDynamic resolves PT_DYNAMIC, decodes its entries, then the
// dynamic symbol table and every relocation table it references,
// grounded step by step on ElfParserLib.py's parseElf driver.
func (f *File) parseDynamic(policy ForceDynSymPolicy) error {
	var dynSeg *Segment
	for i := range f.Segments {
		if f.Segments[i].Type == PTDynamic {
			dynSeg = &f.Segments[i]
			break
		}
	}
	if dynSeg == nil {
		// Not every ELF image carries PT_DYNAMIC (e.g. static
		// executables); nothing further to do.
		return nil
	}

	entSize := dynamicEntrySize(f.bitWidth)
	count := int(dynSeg.Filesz) / entSize

	entries := make([]DynamicEntry, 0, count)
	for i := 0; i < count; i++ {
		offset := int(dynSeg.Offset) + i*entSize
		e, err := decodeDynamicEntry(f.data, offset, f.bitWidth)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		if e.Tag == DTNull {
			break
		}
	}
	f.DynamicEntries = entries

	dyn, err := resolveDynamicOffsets(entries)
	if err != nil {
		return err
	}
	f.dyn = dyn

	if !dyn.hasSymtab || !dyn.hasStrtab {
		// A minimal or non-dynamic-linked dynamic segment; nothing to
		// resolve for symbols/relocations.
		return nil
	}

	return f.parseDynamicSymbolsAndRelocations(entries, policy)
}

func tagValue(entries []DynamicEntry, tag int64) (uint64, bool) {
	for _, e := range entries {
		if e.Tag == tag {
			return e.Value, true
		}
	}
	return 0, false
}

func (f *File) parseDynamicSymbolsAndRelocations(entries []DynamicEntry, policy ForceDynSymPolicy) error {
	strsz, hasStrsz := tagValue(entries, DTStrsz)
	syment, hasSyment := tagValue(entries, DTSyment)
	if !hasStrsz || !hasSyment {
		return newErr(KindMalformedDynamic, "missing DT_STRSZ/DT_SYMENT alongside DT_SYMTAB/DT_STRTAB")
	}
	symEntSize := int(syment)
	if symEntSize <= 0 {
		return newErr(KindMalformedDynamic, "invalid DT_SYMENT %d", syment)
	}

	symtabOff := f.dyn.symtab
	strtabOff := f.dyn.strtab
	if strtabOff < symtabOff {
		return newErr(KindMalformedDynamic, "DT_STRTAB precedes DT_SYMTAB; cannot estimate symbol table size")
	}
	estimatedSize := strtabOff - symtabOff

	var dynsymSection *Section
	duplicated := false
	for i := range f.Sections {
		if f.Sections[i].Name == ".dynsym" {
			if dynsymSection == nil {
				dynsymSection = &f.Sections[i]
			} else {
				duplicated = true
				break
			}
		}
	}

	useSection := false
	useEstimate := false

	switch {
	case dynsymSection == nil || duplicated:
		useEstimate = true
	case dynsymSection.Offset != symtabOff:
		useEstimate = true
	case dynsymSection.Size != estimatedSize:
		switch policy {
		case DynSymForceSection:
			useSection = true
		case DynSymForceEstimate:
			useEstimate = true
		default:
			f.logger.Logf("WARNING: .dynsym size does not match the estimated size; ignoring dynamic symbols (see WithForceDynSymParsing)")
			useSection = false
			useEstimate = false
		}
	default:
		useSection = true
	}

	var tableSize uint64
	switch {
	case useSection:
		tableSize = dynsymSection.Size
	case useEstimate:
		tableSize = estimatedSize
	default:
		tableSize = 0
	}

	strTab, err := f.sliceAt(strtabOff, strsz)
	if err != nil {
		return wrapErr(KindMalformedDynamic, err, "dynamic string table")
	}

	symbolCount := int(tableSize) / symEntSize
	symbols := make([]*DynamicSymbol, 0, symbolCount)
	for i := 0; i < symbolCount; i++ {
		sym, err := f.decodeOneDynamicSymbol(symtabOff, uint32(i), symEntSize, strTab)
		if err != nil {
			return err
		}
		symbols = append(symbols, sym)
	}
	f.Symbols = symbols

	return f.parseRelocations(entries, symtabOff, symEntSize, strTab)
}

func (f *File) decodeOneDynamicSymbol(symtabOff uint64, index uint32, symEntSize int, strTab []byte) (*DynamicSymbol, error) {
	offset := int(symtabOff) + int(index)*symEntSize
	s, err := decodeDynamicSymbol(f.data, offset, f.bitWidth)
	if err != nil {
		return nil, err
	}
	s.Name = resolveSectionName(strTab, s.NameIndex)
	return internSymbol(f.Symbols, &s), nil
}

// internSymbol returns the existing arena entry that describes the same
// symbol identity, or owns a new one, so distinct relocations referring
// to the same symbol share one *DynamicSymbol (§4.6).
func internSymbol(arena []*DynamicSymbol, candidate *DynamicSymbol) *DynamicSymbol {
	for _, existing := range arena {
		if existing.sameIdentity(candidate) {
			return existing
		}
	}
	return candidate
}

func (f *File) parseRelocations(entries []DynamicEntry, symtabOff uint64, symEntSize int, strTab []byte) error {
	relOff, hasRel := tagValue(entries, DTRel)
	relSz, _ := tagValue(entries, DTRelsz)
	relEnt, _ := tagValue(entries, DTRelent)

	relaOff, hasRela := tagValue(entries, DTRela)
	relaSz, _ := tagValue(entries, DTRelasz)
	relaEnt, _ := tagValue(entries, DTRelaent)

	if hasRel && hasRela {
		return newErr(KindInconsistentRelocation, "both DT_REL and DT_RELA present; unsupported")
	}

	if hasRel {
		relocs, err := f.decodeRelocTable(relOff, relSz, relEnt, false, symtabOff, symEntSize, strTab)
		if err != nil {
			return err
		}
		f.Relocations = relocs
	}
	if hasRela {
		relocs, err := f.decodeRelocTable(relaOff, relaSz, relaEnt, true, symtabOff, symEntSize, strTab)
		if err != nil {
			return err
		}
		f.Relocations = relocs
	}

	jmprelOff, hasJmprel := tagValue(entries, DTJmprel)
	if !hasJmprel {
		return nil
	}
	pltRelType, hasPltRel := tagValue(entries, DTPltrel)
	pltRelSz, hasPltRelSz := tagValue(entries, DTPltrelsz)
	if !hasPltRel {
		return newErr(KindMalformedDynamic, "DT_JMPREL present but DT_PLTREL missing")
	}
	if !hasPltRelSz {
		return newErr(KindMalformedDynamic, "DT_JMPREL present but DT_PLTRELSZ missing")
	}

	var jmprelEntSize uint64
	var hasAddend bool
	switch pltRelType {
	case DTRel:
		hasAddend = false
		if relEnt == 0 {
			return newErr(KindMalformedDynamic, "DT_PLTREL=DT_REL but DT_RELENT missing")
		}
		jmprelEntSize = relEnt
	case DTRela:
		hasAddend = true
		if relaEnt == 0 {
			return newErr(KindMalformedDynamic, "DT_PLTREL=DT_RELA but DT_RELAENT missing")
		}
		jmprelEntSize = relaEnt
	default:
		return newErr(KindMalformedDynamic, "invalid DT_PLTREL value %d", pltRelType)
	}

	relocs, err := f.decodeRelocTable(jmprelOff, pltRelSz, jmprelEntSize, hasAddend, symtabOff, symEntSize, strTab)
	if err != nil {
		return err
	}
	f.JumpRelocations = relocs
	return nil
}

func (f *File) decodeRelocTable(off, size, entSize uint64, hasAddend bool, symtabOff uint64, symEntSize int, strTab []byte) ([]Relocation, error) {
	if entSize == 0 {
		return nil, newErr(KindMalformedDynamic, "relocation entry size is zero")
	}
	count := int(size) / int(entSize)
	relocs := make([]Relocation, 0, count)
	for i := 0; i < count; i++ {
		offset := int(off) + i*int(entSize)
		rel, err := decodeRelocation(f.data, offset, f.bitWidth, hasAddend)
		if err != nil {
			return nil, err
		}

		symIdx := relocSymbolIndex(rel.Info, f.bitWidth)
		sym, err := f.decodeOneDynamicSymbol(symtabOff, symIdx, symEntSize, strTab)
		if err != nil {
			return nil, err
		}
		rel.Symbol = sym

		relocs = append(relocs, rel)
	}
	return relocs, nil
}

func containsSymbol(arena []*DynamicSymbol, sym *DynamicSymbol) bool {
	for _, s := range arena {
		if s == sym {
			return true
		}
	}
	return false
}

// sliceAt bounds-checks and returns data[offset:offset+size].
func (f *File) sliceAt(offset, size uint64) ([]byte, error) {
	end := offset + size
	if end < offset || end > uint64(len(f.data)) {
		return nil, newErr(KindTooShort, "range [0x%x, 0x%x) exceeds data length %d", offset, end, len(f.data))
	}
	return f.data[offset:end], nil
}

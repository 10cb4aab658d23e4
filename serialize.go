package elf

import (
	"bytes"
	"crypto/md5"
	"io"
	"os"
)

// Bytes re-serializes f back into an ELF image following §4.3's eight
// steps: section headers, section names, the ELF header, program
// headers, the dynamic segment (zero-filled to p_filesz), the dynamic
// symbol table, every relocation list, and finally any relocation
// symbol that fell outside the dynamic symbol set. Starts from the
// current byte buffer, preserving every byte the model does not
// re-emit (machine code, rodata, and so on). Editing operations mutate
// f's fields and/or f.data directly; Bytes only needs to flush the
// structured tables back over their original file regions.
func (f *File) Bytes() ([]byte, error) {
	entSize := sectionHeaderSize(f.bitWidth)
	pEntSize := programHeaderSize(f.bitWidth)
	dEntSize := dynamicEntrySize(f.bitWidth)
	symEntSize := symbolEntrySize(f.bitWidth)

	var dynSeg *Segment
	for i := range f.Segments {
		if f.Segments[i].Type == PTDynamic {
			dynSeg = &f.Segments[i]
			break
		}
	}

	need := len(f.data)
	if n := int(f.Header.Shoff) + len(f.Sections)*entSize; n > need {
		need = n
	}
	if n := int(f.Header.Phoff) + len(f.Segments)*pEntSize; n > need {
		need = n
	}
	if dynSeg != nil {
		if n := int(dynSeg.Offset) + len(f.DynamicEntries)*dEntSize; n > need {
			need = n
		}
	}

	// The table layouts above only grow when AddNewSection or similar
	// editing calls add entries without also growing f.data by a whole
	// header entry; extend the buffer here rather than failing the
	// serialization outright.
	out := make([]byte, need)
	copy(out, f.data)

	// Step 1: section header table.
	for i, sec := range f.Sections {
		offset := int(f.Header.Shoff) + i*entSize
		copy(out[offset:offset+entSize], encodeSectionHeader(&sec, f.bitWidth))
	}

	// Step 2: section names, written back into the string table named by
	// e_shstrndx (skipped when it is SHN_UNDEF).
	if f.Header.Shstrndx != 0 && int(f.Header.Shstrndx) < len(f.Sections) {
		strTab := &f.Sections[f.Header.Shstrndx]
		for _, sec := range f.Sections {
			if sec.Name == "" {
				continue
			}
			nameOff := strTab.Offset + uint64(sec.NameIndex)
			nameBytes := append([]byte(sec.Name), 0)
			if end := int(nameOff) + len(nameBytes); end <= len(out) {
				copy(out[nameOff:], nameBytes)
			}
		}
	}

	// Step 3: the ELF header.
	headerBytes := encodeHeader(&f.Header, f.bitWidth)
	copy(out[:len(headerBytes)], headerBytes)

	// Step 4: program headers.
	for i, seg := range f.Segments {
		offset := int(f.Header.Phoff) + i*pEntSize
		copy(out[offset:offset+pEntSize], encodeProgramHeader(&seg, f.bitWidth))
	}

	// Step 5: dynamic entries, then zero-fill the dynamic segment's tail
	// up to p_filesz. The tail may not match the original padding byte
	// for byte, an accepted deviation documented alongside the round-trip
	// guarantee.
	if dynSeg != nil {
		for i, e := range f.DynamicEntries {
			offset := int(dynSeg.Offset) + i*dEntSize
			copy(out[offset:offset+dEntSize], encodeDynamicEntry(&e, f.bitWidth))
		}
		tailStart := int(dynSeg.Offset) + len(f.DynamicEntries)*dEntSize
		tailEnd := int(dynSeg.Offset + dynSeg.Filesz)
		if tailEnd > len(out) {
			tailEnd = len(out)
		}
		for i := tailStart; i < tailEnd; i++ {
			out[i] = 0
		}
	}

	// Step 6: dynamic symbols, one record per f.Symbols entry at
	// DT_SYMTAB + i·DT_SYMENT. f.Symbols is populated in table-index
	// order at parse time, so its slice index is its symtab index.
	if f.dyn.hasSymtab {
		for i, sym := range f.Symbols {
			offset := int(f.dyn.symtab) + i*symEntSize
			if end := offset + symEntSize; end <= len(out) {
				copy(out[offset:end], encodeDynamicSymbol(sym, f.bitWidth))
			}
		}
	}

	// Step 7: every relocation list, using the codec appropriate to its
	// tag (DT_REL / DT_RELA / DT_JMPREL).
	relOff, hasRel := tagValue(f.DynamicEntries, DTRel)
	relaOff, hasRela := tagValue(f.DynamicEntries, DTRela)
	jmprelOff, hasJmprel := tagValue(f.DynamicEntries, DTJmprel)

	switch {
	case hasRel:
		writeRelocTable(out, relOff, f.Relocations, f.bitWidth)
	case hasRela:
		writeRelocTable(out, relaOff, f.Relocations, f.bitWidth)
	}
	if hasJmprel {
		writeRelocTable(out, jmprelOff, f.JumpRelocations, f.bitWidth)
	}

	// Step 8: any relocation symbol that isn't part of the dynamic symbol
	// set (f.Symbols) is additionally written at its own table index, so
	// a symbol interned only through a relocation still lands in the
	// image.
	if f.dyn.hasSymtab {
		writeUninternedRelocSymbols(out, f.Relocations, f.Symbols, f.dyn.symtab, symEntSize, f.bitWidth)
		writeUninternedRelocSymbols(out, f.JumpRelocations, f.Symbols, f.dyn.symtab, symEntSize, f.bitWidth)
	}

	return out, nil
}

// writeRelocTable re-encodes relocs back at off, one entry after another
// using each entry's own HasAddend so a REL and RELA record shape aren't
// mixed within one table.
func writeRelocTable(out []byte, off uint64, relocs []Relocation, bitWidth int) {
	cursor := off
	for _, rel := range relocs {
		size := relocationEntrySize(bitWidth, rel.HasAddend)
		if end := int(cursor) + size; end <= len(out) {
			copy(out[cursor:], encodeRelocation(&rel, bitWidth))
		}
		cursor += uint64(size)
	}
}

// writeUninternedRelocSymbols re-emits each relocation's symbol that
// fell outside the dynamic symbol set (step 8): a symbol only reachable
// through a relocation, never decoded as part of the sequential DT_SYMTAB
// sweep, still needs to land at its own table index.
func writeUninternedRelocSymbols(out []byte, relocs []Relocation, arena []*DynamicSymbol, symtabOff uint64, symEntSize, bitWidth int) {
	for _, rel := range relocs {
		if rel.Symbol == nil || containsSymbol(arena, rel.Symbol) {
			continue
		}
		symIdx := relocSymbolIndex(rel.Info, bitWidth)
		offset := int(symtabOff) + int(symIdx)*symEntSize
		if end := offset + symEntSize; end <= len(out) {
			copy(out[offset:end], encodeDynamicSymbol(rel.Symbol, bitWidth))
		}
	}
}

// WriteTo writes the serialized image to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	data, err := f.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the serialized image to the named file, replacing its
// contents.
func (f *File) Save(path string) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o755)
}

// VerifyRoundTrip serializes f and compares the MD5 hash of the result
// against that of original, the guarantee described in §8: parsing an unedited image and immediately serializing it reproduces
// the original bytes exactly. force skips the check (e.g. after an
// intentional edit where the bytes are expected to differ).
func (f *File) VerifyRoundTrip(original []byte, force bool) error {
	if force {
		return nil
	}
	out, err := f.Bytes()
	if err != nil {
		return err
	}
	sumOriginal := md5.Sum(original)
	sumOut := md5.Sum(out)
	if !bytes.Equal(sumOriginal[:], sumOut[:]) {
		return newErr(KindRoundTripMismatch, "serialized image does not match original (md5 %x != %x)", sumOut, sumOriginal)
	}
	return nil
}

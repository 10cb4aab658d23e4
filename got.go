package elf

import "github.com/xyproto/zwoelf/internal/bits"

// getJmpRelEntryByName finds the jump relocation (GOT/PLT) entry whose
// resolved symbol has the given name.
func (f *File) getJmpRelEntryByName(name string) (*Relocation, error) {
	for i := range f.JumpRelocations {
		rel := &f.JumpRelocations[i]
		if rel.Symbol != nil && rel.Symbol.Name == name {
			return rel, nil
		}
	}
	return nil, newErr(KindNotFound, "jump relocation entry with name %q not found", name)
}

// ModifyGotEntryAddr overwrites the GOT slot for the named symbol with a
// new memory address, translating the relocation's virtual r_offset to
// a file offset first.
func (f *File) ModifyGotEntryAddr(name string, memAddr uint64) error {
	if err := f.requireParsed(); err != nil {
		return err
	}
	rel, err := f.getJmpRelEntryByName(name)
	if err != nil {
		return err
	}
	fileOffset, err := f.VirtualMemoryAddrToFileOffset(rel.Offset)
	if err != nil {
		return err
	}

	buf := make([]byte, wordByteSize(f.bitWidth))
	w := bits.NewWriter(buf, f.bitWidth)
	w.PutWord(memAddr)
	return f.WriteDataToFileOffset(fileOffset, buf, false)
}

// GetValueOfGotEntry reads the current memory address stored in the GOT
// slot for the named symbol.
func (f *File) GetValueOfGotEntry(name string) (uint64, error) {
	if err := f.requireParsed(); err != nil {
		return 0, err
	}
	rel, err := f.getJmpRelEntryByName(name)
	if err != nil {
		return 0, err
	}
	fileOffset, err := f.VirtualMemoryAddrToFileOffset(rel.Offset)
	if err != nil {
		return 0, err
	}
	size := wordByteSize(f.bitWidth)
	slice, err := f.sliceAt(fileOffset, uint64(size))
	if err != nil {
		return 0, err
	}
	return bits.NewReader(slice, 0, f.bitWidth).Word(), nil
}

// GetMemAddrOfGotEntry returns the virtual address of the GOT slot
// itself (not the value stored in it) for the named symbol.
func (f *File) GetMemAddrOfGotEntry(name string) (uint64, error) {
	if err := f.requireParsed(); err != nil {
		return 0, err
	}
	rel, err := f.getJmpRelEntryByName(name)
	if err != nil {
		return 0, err
	}
	return rel.Offset, nil
}

func wordByteSize(bitWidth int) int {
	if bitWidth == 64 {
		return 8
	}
	return 4
}

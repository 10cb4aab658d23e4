package elf

import (
	"fmt"
	"strings"
)

// SectionByName returns the first section with the given name.
func (f *File) SectionByName(name string) (*Section, error) {
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			return &f.Sections[i], nil
		}
	}
	return nil, newErr(KindNotFound, "section %q not found", name)
}

// SegmentsOfType returns every program header entry with the given
// p_type, in file order.
func (f *File) SegmentsOfType(segType uint32) []*Segment {
	var out []*Segment
	for i := range f.Segments {
		if f.Segments[i].Type == segType {
			out = append(out, &f.Segments[i])
		}
	}
	return out
}

// SymbolByName returns the first dynamic symbol with the given name.
func (f *File) SymbolByName(name string) (*DynamicSymbol, error) {
	for _, s := range f.Symbols {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, newErr(KindNotFound, "dynamic symbol %q not found", name)
}

// RelocationEntries returns every relocation entry the file carries: the
// non-PLT REL/RELA tables plus the JMPREL (PLT) table, concatenated in
// that order.
func (f *File) RelocationEntries() []Relocation {
	out := make([]Relocation, 0, len(f.Relocations)+len(f.JumpRelocations))
	out = append(out, f.Relocations...)
	out = append(out, f.JumpRelocations...)
	return out
}

// NeededLibraries returns the DT_NEEDED entries as strings resolved
// against the dynamic string table.
func (f *File) NeededLibraries() ([]string, error) {
	if err := f.requireParsed(); err != nil {
		return nil, err
	}
	strTab, err := f.sliceAt(f.dyn.strtab, f.dyn.strsz)
	if err != nil {
		return nil, wrapErr(KindMalformedDynamic, err, "dynamic string table")
	}
	var needed []string
	for _, e := range f.DynamicEntries {
		if e.Tag == DTNeeded {
			needed = append(needed, resolveSectionName(strTab, uint32(e.Value)))
		}
	}
	return needed, nil
}

// Dump renders a human-readable summary of the parsed file: header
// class/type/machine, every section and segment, and every relocation
// with its resolved symbol, in the spirit of the original's printElf.
func (f *File) Dump() string {
	var b strings.Builder

	fmt.Fprintf(&b, "ELF%d %s, machine=0x%x, entry=0x%x\n", f.bitWidth, etName(f.Header.Type), f.Header.Machine, f.Header.Entry)

	fmt.Fprintf(&b, "Sections (%d):\n", len(f.Sections))
	for i, s := range f.Sections {
		fmt.Fprintf(&b, "  [%2d] %-20s type=%-2d flags=0x%-4x addr=0x%-8x offset=0x%-8x size=0x%x\n",
			i, s.Name, s.Type, s.Flags, s.Addr, s.Offset, s.Size)
	}

	fmt.Fprintf(&b, "Segments (%d):\n", len(f.Segments))
	for i, s := range f.Segments {
		fmt.Fprintf(&b, "  [%2d] type=0x%-8x flags=0x%-2x offset=0x%-8x vaddr=0x%-8x filesz=0x%-8x memsz=0x%x\n",
			i, s.Type, s.Flags, s.Offset, s.Vaddr, s.Filesz, s.Memsz)
		if len(s.SectionsWithin) > 0 {
			names := make([]string, len(s.SectionsWithin))
			for j, si := range s.SectionsWithin {
				names[j] = f.Sections[si].Name
			}
			fmt.Fprintf(&b, "       sections within: %s\n", strings.Join(names, ", "))
		}
		if len(s.SegmentsWithin) > 0 {
			fmt.Fprintf(&b, "       segments within: %v\n", s.SegmentsWithin)
		}
	}

	dumpRelocs(&b, "Relocations", f.Relocations)
	dumpRelocs(&b, "Jump relocations", f.JumpRelocations)

	return b.String()
}

func dumpRelocs(b *strings.Builder, title string, relocs []Relocation) {
	fmt.Fprintf(b, "%s (%d entries):\n", title, len(relocs))
	for i, r := range relocs {
		name := "<unresolved>"
		var symValue uint64
		if r.Symbol != nil {
			name = r.Symbol.Name
			symValue = r.Symbol.Value
		}
		fmt.Fprintf(b, "  [%2d] offset=0x%-8x info=0x%-8x addend=%-6d symvalue=0x%-8x name=%s\n",
			i, r.Offset, r.Info, r.Addend, symValue, name)
	}
}

func etName(t uint16) string {
	switch t {
	case ETNone:
		return "NONE"
	case ETRel:
		return "REL"
	case ETExec:
		return "EXEC"
	case ETDyn:
		return "DYN"
	case ETCore:
		return "CORE"
	default:
		return fmt.Sprintf("0x%x", t)
	}
}

package elf

import "github.com/xyproto/zwoelf/internal/bits"

// DynamicEntry is one Elf32_Dyn/Elf64_Dyn tag/value pair from PT_DYNAMIC.
type DynamicEntry struct {
	Tag   int64
	Value uint64
}

// dynamicEntrySize is two natural words: d_tag, d_un (shared union of
// d_val/d_ptr).
func dynamicEntrySize(bitWidth int) int {
	return bits.RecordSize(bitWidth, 2, 0)
}

func decodeDynamicEntry(data []byte, offset, bitWidth int) (DynamicEntry, error) {
	size := dynamicEntrySize(bitWidth)
	if err := bits.RequireLen(data, offset, size); err != nil {
		return DynamicEntry{}, wrapErr(KindMalformedDynamic, err, "dynamic entry at 0x%x", offset)
	}
	r := bits.NewReader(data, offset, bitWidth)
	var e DynamicEntry
	e.Tag = r.SWord()
	e.Value = r.Word()
	return e, nil
}

func encodeDynamicEntry(e *DynamicEntry, bitWidth int) []byte {
	buf := make([]byte, dynamicEntrySize(bitWidth))
	w := bits.NewWriter(buf, bitWidth)
	w.PutSWord(e.Tag)
	w.PutWord(e.Value)
	return buf
}

// dynamicOffsets collects the handful of DT_* values the parser and editor
// need repeatedly, resolved once from the decoded PT_DYNAMIC entries
// rather than re-scanned on every lookup.
type dynamicOffsets struct {
	symtab    uint64
	strtab    uint64
	strsz     uint64
	syment    uint64
	jmprel    uint64
	pltrelsz  uint64
	hasSymtab bool
	hasStrtab bool
}

// dynamicTagsRejectingDuplicates are the only tags whose repetition is
// fatal: DT_JMPREL, DT_REL, DT_RELA, DT_RELENT, DT_RELAENT each describe
// a single table whose offset/entry-size can't have two values. Every
// other tag, DT_NEEDED most commonly, is allowed to repeat — a binary
// linked against several shared libraries carries one DT_NEEDED per
// library.
var dynamicTagsRejectingDuplicates = map[int64]bool{
	DTJmprel:  true,
	DTRel:     true,
	DTRela:    true,
	DTRelent:  true,
	DTRelaent: true,
}

func resolveDynamicOffsets(entries []DynamicEntry) (dynamicOffsets, error) {
	var d dynamicOffsets
	seen := make(map[int64]bool)
	for _, e := range entries {
		if dynamicTagsRejectingDuplicates[e.Tag] && seen[e.Tag] {
			return d, newErr(KindDuplicateDynamic, "duplicate dynamic tag %d", e.Tag)
		}
		seen[e.Tag] = true
		switch e.Tag {
		case DTSymtab:
			d.symtab = e.Value
			d.hasSymtab = true
		case DTStrtab:
			d.strtab = e.Value
			d.hasStrtab = true
		case DTStrsz:
			d.strsz = e.Value
		case DTSyment:
			d.syment = e.Value
		case DTJmprel:
			d.jmprel = e.Value
		case DTPltrelsz:
			d.pltrelsz = e.Value
		}
	}
	return d, nil
}

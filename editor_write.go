package elf

// WriteDataToFileOffset overwrites f's in-memory image at offset with
// data, after checking that offset falls inside some segment's file
// image and that data fits within it. force skips both checks, for
// writes into regions not covered by any segment (e.g. section-only
// metadata).
func (f *File) WriteDataToFileOffset(offset uint64, data []byte, force bool) error {
	if err := f.requireParsed(); err != nil {
		return err
	}

	var segEnd uint64
	found := false
	for i := range f.Segments {
		s := &f.Segments[i]
		start, end := s.Offset, s.Offset+s.Filesz
		if start <= offset && offset < end {
			segEnd = end
			found = true
			break
		}
	}

	if !force && !found {
		return newErr(KindOutOfSegment, "offset 0x%x not covered by any segment (use force to ignore)", offset)
	}
	if !force && offset+uint64(len(data)) > segEnd {
		return newErr(KindOutOfSegment, "data of length %d does not fit in segment (available %d, use force to ignore)", len(data), segEnd-offset)
	}

	end := offset + uint64(len(data))
	if end > uint64(len(f.data)) {
		return newErr(KindNoRoom, "write of length %d at 0x%x exceeds image length %d", len(data), offset, len(f.data))
	}
	copy(f.data[offset:end], data)
	return nil
}

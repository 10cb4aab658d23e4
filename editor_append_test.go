package elf

import "testing"

func TestAppendDataToSegmentNoNextSegment(t *testing.T) {
	data := buildMinimalELF64(t)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	origFilesz := f.Segments[0].Filesz
	payload := []byte{0xde, 0xad, 0xbe, 0xef}

	res, err := f.AppendDataToSegment(payload, 0, "", false)
	if err != nil {
		t.Fatalf("AppendDataToSegment: %v", err)
	}
	if res.FileOffset != origFilesz {
		t.Fatalf("FileOffset = 0x%x, want 0x%x", res.FileOffset, origFilesz)
	}
	if f.Segments[0].Filesz != origFilesz+uint64(len(payload)) {
		t.Fatalf("Filesz not extended: got %d, want %d", f.Segments[0].Filesz, origFilesz+uint64(len(payload)))
	}
	if len(f.data) != len(data)+len(payload) {
		t.Fatalf("data length = %d, want %d", len(f.data), len(data)+len(payload))
	}

	got := f.data[res.FileOffset : res.FileOffset+uint64(len(payload))]
	for i, b := range payload {
		if got[i] != b {
			t.Fatalf("appended byte %d = 0x%02x, want 0x%02x", i, got[i], b)
		}
	}
}

// withSyntheticNextSegment returns a File carrying a second PT_LOAD
// segment positioned with a fixed-size gap in virtual memory after the
// first, so the "segment exists after this one" branch of
// AppendDataToSegment/AppendDataToExecutableSegment can be exercised.
func withSyntheticNextSegment(t *testing.T) (*File, uint64) {
	t.Helper()
	data := buildMinimalELF64(t)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	seg0 := f.Segments[0]
	gap := uint64(0x500)
	seg1 := Segment{
		Type: PTLoad, Flags: PFR, Offset: seg0.Filesz,
		Vaddr: seg0.Vaddr + seg0.Memsz + gap, Paddr: seg0.Vaddr + seg0.Memsz + gap,
		Filesz: 0x10, Memsz: 0x10, Align: 0x1000,
	}
	f.Segments = append(f.Segments, seg1)
	return f, gap
}

func TestAppendDataToSegmentWithNextSegment(t *testing.T) {
	f, gap := withSyntheticNextSegment(t)
	origFileLen := len(f.data)
	origFilesz := f.Segments[0].Filesz

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}

	res, err := f.AppendDataToSegment(payload, 0, "", false)
	if err != nil {
		t.Fatalf("AppendDataToSegment: %v", err)
	}
	if res.FileOffset != origFilesz {
		t.Fatalf("FileOffset = 0x%x, want 0x%x", res.FileOffset, origFilesz)
	}

	alignmentMultiplier := uint64(len(payload))/f.Segments[0].Align + 1
	offsetAddition := alignmentMultiplier * f.Segments[0].Align
	if uint64(len(f.data)) != uint64(origFileLen)+offsetAddition {
		t.Fatalf("data length = %d, want %d", len(f.data), uint64(origFileLen)+offsetAddition)
	}
	if f.Segments[1].Offset != origFilesz+offsetAddition {
		t.Fatalf("next segment offset = 0x%x, want 0x%x", f.Segments[1].Offset, origFilesz+offsetAddition)
	}
	_ = gap
}

func TestAppendDataToSegmentRejectsOversizedData(t *testing.T) {
	f, gap := withSyntheticNextSegment(t)
	oversized := make([]byte, gap+1)

	_, err := f.AppendDataToSegment(oversized, 0, "", false)
	if err == nil {
		t.Fatal("expected error when data exceeds free space")
	}
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != KindNoRoom {
		t.Fatalf("expected KindNoRoom, got %v", err)
	}
}

func TestAppendDataToSegmentAcceptsExactFreeSpace(t *testing.T) {
	f, gap := withSyntheticNextSegment(t)
	exact := make([]byte, gap)

	if _, err := f.AppendDataToSegment(exact, 0, "", false); err != nil {
		t.Fatalf("expected data exactly filling the free space to be accepted (bug fix: > not >=), got %v", err)
	}
}

func TestAppendDataToExecutableSegmentPicksExecutableSegment(t *testing.T) {
	f, _ := withSyntheticNextSegment(t)
	payload := []byte{0x01, 0x02}

	res, err := f.AppendDataToExecutableSegment(payload, "", false)
	if err != nil {
		t.Fatalf("AppendDataToExecutableSegment: %v", err)
	}
	if res.SegmentIndex != 0 {
		t.Fatalf("SegmentIndex = %d, want 0 (the PF_R|PF_X segment)", res.SegmentIndex)
	}
}

func TestAppendDataToExecutableSegmentNoCandidates(t *testing.T) {
	data := buildMinimalELF64(t)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// The only segment has no following segment in virtual memory, so
	// there is no free space to append into.
	_, err = f.AppendDataToExecutableSegment([]byte{0x90}, "", false)
	if err == nil {
		t.Fatal("expected error when no executable segment has room")
	}
}

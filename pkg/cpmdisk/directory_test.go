// file: pkg/cpmdisk/directory_test.go

package cpmdisk

import (
	"bytes"
	"errors"
	"testing"
)

func TestSlotAccess(t *testing.T) {
	d := testDisk(t, ibm3740)

	entry, err := NewEntry(0, "slotted", "bin", 0, 4, []int{2, 3})
	if err != nil {
		t.Fatalf("Failed to build entry: %v", err)
	}
	record, err := entry.Encode(d.Width)
	if err != nil {
		t.Fatalf("Failed to encode entry: %v", err)
	}

	if err := d.WriteSlot(7, record); err != nil {
		t.Fatalf("Failed to write slot: %v", err)
	}
	got, err := d.ReadSlot(7)
	if err != nil {
		t.Fatalf("Failed to read slot: %v", err)
	}
	if !bytes.Equal(got, record) {
		t.Error("Slot read doesn't match written record")
	}

	if _, err := d.ReadSlot(d.DirectoryMax); err == nil {
		t.Error("Out-of-range slot read should fail")
	}
	if err := d.WriteSlot(0, record[:10]); err == nil {
		t.Error("Short record write should fail")
	}
}

func TestFindFreeSlot(t *testing.T) {
	d := testDisk(t, ibm3740)

	slot, err := d.FindFreeSlot()
	if err != nil {
		t.Fatalf("Failed to find slot: %v", err)
	}
	if slot != 0 {
		t.Errorf("First free slot = %d, want 0", slot)
	}

	// occupy slot 0, the next find must skip it
	entry, err := NewEntry(0, "first", "", 0, 0, nil)
	if err != nil {
		t.Fatalf("Failed to build entry: %v", err)
	}
	record, err := entry.Encode(d.Width)
	if err != nil {
		t.Fatalf("Failed to encode entry: %v", err)
	}
	if err := d.WriteSlot(0, record); err != nil {
		t.Fatalf("Failed to write slot: %v", err)
	}

	slot, err = d.FindFreeSlot()
	if err != nil {
		t.Fatalf("Failed to find slot: %v", err)
	}
	if slot != 1 {
		t.Errorf("Next free slot = %d, want 1", slot)
	}

	if err := d.RetireSlot(0); err != nil {
		t.Fatalf("Failed to retire slot: %v", err)
	}
	slot, err = d.FindFreeSlot()
	if err != nil {
		t.Fatalf("Failed to find slot: %v", err)
	}
	if slot != 0 {
		t.Errorf("Free slot after retire = %d, want 0", slot)
	}
}

func TestFindFreeSlotFullDirectory(t *testing.T) {
	d := testDisk(t, DiskParameters{
		Tracks: 4, SectorsPerTrack: 8, SectorSize: 128,
		BlockSize: 1024, BlockShift: 3, DirectoryMax: 2, ReservedTracks: 1,
	})

	entry, err := NewEntry(0, "filler", "", 0, 0, nil)
	if err != nil {
		t.Fatalf("Failed to build entry: %v", err)
	}
	record, err := entry.Encode(d.Width)
	if err != nil {
		t.Fatalf("Failed to encode entry: %v", err)
	}
	for n := 0; n < d.DirectoryMax; n++ {
		if err := d.WriteSlot(n, record); err != nil {
			t.Fatalf("Failed to write slot %d: %v", n, err)
		}
	}

	if _, err := d.FindFreeSlot(); !errors.Is(err, ErrDirectoryFull) {
		t.Errorf("Full directory: %v, want ErrDirectoryFull", err)
	}
}

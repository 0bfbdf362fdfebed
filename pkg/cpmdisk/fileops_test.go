// file: pkg/cpmdisk/fileops_test.go

package cpmdisk

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testDisk(t *testing.T, params DiskParameters) *Disk {
	t.Helper()
	d, err := NewDisk(filepath.Join(t.TempDir(), "test.img"), params)
	if err != nil {
		t.Fatalf("Failed to build disk: %v", err)
	}
	if err := d.Initialize(); err != nil {
		t.Fatalf("Failed to initialize image: %v", err)
	}
	return d
}

func TestInitialize(t *testing.T) {
	d := testDisk(t, ibm3740)

	info, err := os.Stat(d.Image)
	if err != nil {
		t.Fatalf("Failed to stat image: %v", err)
	}
	if info.Size() != int64(d.Size) {
		t.Errorf("Image is %d bytes, want %d", info.Size(), d.Size)
	}

	for n := 0; n < d.DirectoryMax; n++ {
		record, err := d.ReadSlot(n)
		if err != nil {
			t.Fatalf("Failed to read slot %d: %v", n, err)
		}
		if record[0] != UnusedEntry {
			t.Errorf("Slot %d status = %#02x, want unused", n, record[0])
		}
	}

	slots, err := d.ListEntries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Fresh directory has %d entries", len(slots))
	}
}

func TestWriteReadFile(t *testing.T) {
	d := testDisk(t, ibm3740)

	data := make([]byte, 2050)
	for i := range data {
		data[i] = byte(i)
	}

	if err := d.WriteFile("hello", "txt", data); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	got, err := d.ReadFile("hello", "txt")
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	// reads return whole blocks; content is exact up to the written length
	if len(got) != 3*d.BlockSize {
		t.Errorf("Read %d bytes, want %d", len(got), 3*d.BlockSize)
	}
	if !bytes.Equal(got[:len(data)], data) {
		t.Error("Read data doesn't match written data")
	}
	for _, b := range got[len(data):] {
		if b != 0 {
			t.Error("Block padding is not zero-filled")
			break
		}
	}

	slots, err := d.ListEntries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("Directory has %d entries, want 1", len(slots))
	}
	if slots[0].Entry.Filename() != "HELLO.TXT" {
		t.Errorf("Entry name = %s, want HELLO.TXT", slots[0].Entry.Filename())
	}
	if slots[0].Entry.RecordCount != 17 {
		t.Errorf("RecordCount = %d, want 17", slots[0].Entry.RecordCount)
	}
}

func TestWriteFileMultiExtent(t *testing.T) {
	d := testDisk(t, ibm3740)

	perExtent := d.Width.Slots() * d.BlockSize
	data := make([]byte, perExtent+d.BlockSize)
	for i := range data {
		data[i] = byte(i >> 3)
	}

	if err := d.WriteFile("big", "dat", data); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	slots, err := d.ListEntries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("Directory has %d entries, want 2", len(slots))
	}

	got, err := d.ReadFile("big", "dat")
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !bytes.Equal(got[:len(data)], data) {
		t.Error("Read data doesn't match written data")
	}

	// Reads must reassemble by extent number even when the directory holds
	// the extents in reverse slot order.
	first, err := d.ReadSlot(slots[0].Index)
	if err != nil {
		t.Fatalf("Failed to read slot: %v", err)
	}
	second, err := d.ReadSlot(slots[1].Index)
	if err != nil {
		t.Fatalf("Failed to read slot: %v", err)
	}
	if err := d.WriteSlot(slots[0].Index, second); err != nil {
		t.Fatalf("Failed to write slot: %v", err)
	}
	if err := d.WriteSlot(slots[1].Index, first); err != nil {
		t.Fatalf("Failed to write slot: %v", err)
	}

	got, err = d.ReadFile("big", "dat")
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !bytes.Equal(got[:len(data)], data) {
		t.Error("Extent order not restored on read")
	}
}

func TestWriteFile16Bit(t *testing.T) {
	d := testDisk(t, DiskParameters{
		Tracks: 128, SectorsPerTrack: 32, SectorSize: 256,
		BlockSize: 2048, BlockShift: 3, DirectoryMax: 128, ReservedTracks: 1,
	})
	if d.Width != Width16 {
		t.Fatalf("Width = %s, want 16-bit", d.Width)
	}

	data := []byte("sixteen bit pointer mode")
	if err := d.WriteFile("wide", "bin", data); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	got, err := d.ReadFile("wide", "bin")
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !bytes.Equal(got[:len(data)], data) {
		t.Error("Read data doesn't match written data")
	}
}

func TestDuplicateWrite(t *testing.T) {
	d := testDisk(t, ibm3740)

	if err := d.WriteFile("dup", "txt", []byte("one")); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := d.WriteFile("dup", "txt", []byte("two")); !errors.Is(err, ErrFileExists) {
		t.Errorf("Second write: %v, want ErrFileExists", err)
	}
	// same name, different type is a different file
	if err := d.WriteFile("dup", "bin", []byte("three")); err != nil {
		t.Errorf("Different type refused: %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	d := testDisk(t, ibm3740)

	perExtent := d.Width.Slots() * d.BlockSize
	data := bytes.Repeat([]byte{0xAA}, perExtent+100)
	if err := d.WriteFile("gone", "dat", data); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var blocks []int
	slots, err := d.ListEntries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	for _, s := range slots {
		blocks = append(blocks, s.Entry.DataBlocks()...)
	}

	if err := d.DeleteFile("gone", "dat"); err != nil {
		t.Fatalf("Failed to delete file: %v", err)
	}

	if _, err := d.ReadFile("gone", "dat"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Read after delete: %v, want ErrFileNotFound", err)
	}

	// both extents retired, all referenced blocks zero-filled
	slots, err = d.ListEntries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Directory still holds %d entries", len(slots))
	}
	zero := make([]byte, d.BlockSize)
	for _, block := range blocks {
		content, err := d.ReadBlock(block)
		if err != nil {
			t.Fatalf("Failed to read block %d: %v", block, err)
		}
		if !bytes.Equal(content, zero) {
			t.Errorf("Block %d not zero-filled after delete", block)
		}
	}

	if err := d.DeleteFile("gone", "dat"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Second delete: %v, want ErrFileNotFound", err)
	}
}

func TestCapacityExhaustion(t *testing.T) {
	// tiny disk: 4 blocks total, 1 for the directory
	d := testDisk(t, DiskParameters{
		Tracks: 4, SectorsPerTrack: 8, SectorSize: 128,
		BlockSize: 1024, BlockShift: 3, DirectoryMax: 16, ReservedTracks: 1,
	})

	data := make([]byte, d.TotalUsableBlocks*d.BlockSize+1)
	if err := d.WriteFile("huge", "bin", data); !errors.Is(err, ErrDiskFull) {
		t.Fatalf("Oversized write: %v, want ErrDiskFull", err)
	}

	// a failed write leaves the directory untouched
	slots, err := d.ListEntries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Failed write left %d directory entries", len(slots))
	}
}

func TestDirectoryExhaustion(t *testing.T) {
	d := testDisk(t, DiskParameters{
		Tracks: 4, SectorsPerTrack: 8, SectorSize: 128,
		BlockSize: 1024, BlockShift: 3, DirectoryMax: 2, ReservedTracks: 1,
	})

	if err := d.WriteFile("one", "", []byte("1")); err != nil {
		t.Fatalf("Failed to write first file: %v", err)
	}
	if err := d.WriteFile("two", "", []byte("2")); err != nil {
		t.Fatalf("Failed to write second file: %v", err)
	}
	if err := d.WriteFile("three", "", []byte("3")); !errors.Is(err, ErrDirectoryFull) {
		t.Errorf("Write into full directory: %v, want ErrDirectoryFull", err)
	}
}

func TestReadAllSkipsBadRecords(t *testing.T) {
	d := testDisk(t, ibm3740)

	if err := d.WriteFile("good", "txt", []byte("fine")); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	// plant a live record with a non-ASCII name byte
	bad := UnusedRecord()
	bad[0] = 0
	bad[1] = 0xC0
	if err := d.WriteSlot(5, bad); err != nil {
		t.Fatalf("Failed to write slot: %v", err)
	}

	slots, err := d.ListEntries()
	if err != nil {
		t.Fatalf("Scan failed on a bad record: %v", err)
	}
	if len(slots) != 1 || slots[0].Entry.Name != "GOOD" {
		t.Errorf("Scan returned %+v, want only GOOD", slots)
	}
}

func TestFreeBlockBitmapAfterWrite(t *testing.T) {
	d := testDisk(t, ibm3740)

	if err := d.WriteFile("file", "bin", make([]byte, 3*d.BlockSize)); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	free, err := d.FreeBlockBitmap()
	if err != nil {
		t.Fatalf("Failed to derive bitmap: %v", err)
	}
	slots, err := d.ListEntries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	for _, s := range slots {
		for _, block := range s.Entry.AllocatedBlocks() {
			if free[block] {
				t.Errorf("Allocated block %d marked free", block)
			}
		}
	}
}

func TestFileSize(t *testing.T) {
	d := testDisk(t, ibm3740)

	if err := d.WriteFile("sized", "bin", make([]byte, 2050)); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	size, err := d.FileSize("sized", "bin")
	if err != nil {
		t.Fatalf("Failed to size file: %v", err)
	}
	if size != 3*d.BlockSize {
		t.Errorf("FileSize = %d, want %d", size, 3*d.BlockSize)
	}

	if _, err := d.FileSize("absent", "bin"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Missing file: %v, want ErrFileNotFound", err)
	}
}

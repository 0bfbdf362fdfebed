// file: cmd/create/create_test.go

package create

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

var ibm3740 = cpmdisk.DiskParameters{
	Tracks:          77,
	SectorsPerTrack: 26,
	SectorSize:      128,
	BlockSize:       1024,
	BlockShift:      3,
	DirectoryMax:    64,
	ReservedTracks:  2,
}

func TestCreate(t *testing.T) {
	image := filepath.Join(t.TempDir(), "test.img")
	disk, err := cpmdisk.NewDisk(image, ibm3740)
	if err != nil {
		t.Fatalf("Failed to build disk: %v", err)
	}

	opts := DefaultOptions()
	opts.Quiet = true
	if err := Create(disk, opts); err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}

	info, err := os.Stat(image)
	if err != nil {
		t.Fatalf("Failed to stat image: %v", err)
	}
	if info.Size() != int64(disk.Size) {
		t.Errorf("Image size = %d, want %d", info.Size(), disk.Size)
	}

	entries, err := disk.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("New image has %d directory entries, want 0", len(entries))
	}
}

func TestCreateNestedPath(t *testing.T) {
	image := filepath.Join(t.TempDir(), "disks", "cpm", "test.img")
	disk, err := cpmdisk.NewDisk(image, ibm3740)
	if err != nil {
		t.Fatalf("Failed to build disk: %v", err)
	}

	opts := DefaultOptions()
	opts.Quiet = true
	if err := Create(disk, opts); err != nil {
		t.Fatalf("Failed to create image in nested directory: %v", err)
	}
	if _, err := os.Stat(image); err != nil {
		t.Errorf("Image missing: %v", err)
	}
}

func TestCreateExisting(t *testing.T) {
	image := filepath.Join(t.TempDir(), "test.img")
	if err := os.WriteFile(image, []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	disk, err := cpmdisk.NewDisk(image, ibm3740)
	if err != nil {
		t.Fatalf("Failed to build disk: %v", err)
	}

	opts := DefaultOptions()
	opts.Quiet = true
	if err := Create(disk, opts); err == nil {
		t.Error("Create should refuse to overwrite without force")
	}

	opts.Force = true
	if err := Create(disk, opts); err != nil {
		t.Fatalf("Failed to overwrite with force: %v", err)
	}
	info, err := os.Stat(image)
	if err != nil {
		t.Fatalf("Failed to stat image: %v", err)
	}
	if info.Size() != int64(disk.Size) {
		t.Errorf("Image size = %d, want %d", info.Size(), disk.Size)
	}
}

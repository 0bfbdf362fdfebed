// file: cmd/boot/boot.go

package boot

import (
	"fmt"
	"os"

	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// Options configures boot-area writes.
type Options struct {
	Quiet bool // suppress non-error output
}

// DefaultOptions returns default options for the boot commands.
func DefaultOptions() *Options {
	return &Options{}
}

// PutSystem writes a host file into the reserved system area at the start
// of the image. The file must fit before the directory.
func PutSystem(disk *cpmdisk.Disk, path string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > disk.DirectoryStart {
		return fmt.Errorf("%w: %d bytes into a %d byte system area",
			cpmdisk.ErrBlockOverflow, len(data), disk.DirectoryStart)
	}
	if err := disk.WriteAt(0, data); err != nil {
		return err
	}
	if !opts.Quiet {
		fmt.Printf("%s written to system area - %d bytes\n", path, len(data))
	}
	return nil
}

// PutAtOffset writes a host file at an arbitrary byte offset and returns
// the number of bytes written, so boot components can be laid end to end.
func PutAtOffset(disk *cpmdisk.Disk, path string, offset int, opts *Options) (int, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if offset < 0 || offset+len(data) > disk.Size {
		return 0, fmt.Errorf("%w: %d bytes at offset %d on a %d byte image",
			cpmdisk.ErrBlockOverflow, len(data), offset, disk.Size)
	}
	if err := disk.WriteAt(offset, data); err != nil {
		return 0, err
	}
	if !opts.Quiet {
		track, sector := disk.OffsetTrackSector(offset + len(data))
		fmt.Printf("%s written at %08x-%08x - ends at track %d sector %d\n",
			path, offset, offset+len(data), track, sector)
	}
	return len(data), nil
}

// PutAtBlock writes a host file block by block starting at a given data
// block, bypassing the directory. The blocks are not recorded anywhere;
// this is for raw system images, not files.
func PutAtBlock(disk *cpmdisk.Disk, path string, block int, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for i, start := 0, 0; start < len(data); i, start = i+1, start+disk.BlockSize {
		end := start + disk.BlockSize
		if end > len(data) {
			end = len(data)
		}
		if err := disk.WriteBlock(block+i, data[start:end]); err != nil {
			return err
		}
		if !opts.Quiet {
			track, sector := disk.TrackSector(block + i)
			fmt.Printf("Writing block %d (track %d sector %d) %08x-%08x\n",
				block+i, track, sector, start, end)
		}
	}
	return nil
}

// file: pkg/cpmdisk/blockstore.go

package cpmdisk

import (
	"fmt"
	"os"
)

// The block store performs fresh positioned I/O against the image file on
// every call. No handle is kept open and no locking is done; callers must
// serialize access to one image externally.

// ReadAt reads size bytes at a byte position in the image.
func (d *Disk) ReadAt(position, size int) ([]byte, error) {
	f, err := os.Open(d.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, int64(position)); err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at %#08x: %w", size, position, err)
	}
	return buf, nil
}

// WriteAt writes data at a byte position in the image.
func (d *Disk) WriteAt(position int, data []byte) error {
	f, err := os.OpenFile(d.Image, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	if _, err := f.WriteAt(data, int64(position)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %d bytes at %#08x: %w", len(data), position, err)
	}
	return f.Close()
}

// BlockOffset returns the byte offset of a data block. The directory start
// is the block 0 origin: the directory itself occupies the first
// DirectoryBlocks blocks, data blocks follow.
func (d *Disk) BlockOffset(block int) int {
	return d.DirectoryStart + block*d.BlockSize
}

// ReadBlock reads one whole block.
func (d *Disk) ReadBlock(block int) ([]byte, error) {
	return d.ReadAt(d.BlockOffset(block), d.BlockSize)
}

// WriteBlock writes data into a block, right-padded with zero bytes to the
// full block size. Data longer than one block is refused.
func (d *Disk) WriteBlock(block int, data []byte) error {
	if len(data) > d.BlockSize {
		return fmt.Errorf("%w: %d bytes into block %d", ErrBlockOverflow, len(data), block)
	}
	padded := make([]byte, d.BlockSize)
	copy(padded, data)
	return d.WriteAt(d.BlockOffset(block), padded)
}

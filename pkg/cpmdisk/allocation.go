// file: pkg/cpmdisk/allocation.go

package cpmdisk

import "fmt"

// maximum extent number the 5-bit low extent field can hold with mask 0
const maxExtents = 32

// FreeBitmap derives the free-block map from a directory snapshot. There is
// no persisted free list: block n is free unless it sits under the directory
// area or a live entry points at it.
func (d *Disk) FreeBitmap(snapshot []Slot) []bool {
	free := make([]bool, d.TotalUsableBlocks+1)
	for i := range free {
		free[i] = true
	}
	for block := 0; block < d.DirectoryBlocks; block++ {
		free[block] = false
	}
	for _, s := range snapshot {
		for _, block := range s.Entry.Blocks {
			if block > 0 && block <= d.TotalUsableBlocks {
				free[block] = false
			}
		}
	}
	return free
}

// FindFreeBlocks returns the first n free blocks in ascending order.
func (d *Disk) FindFreeBlocks(free []bool, n int) ([]int, error) {
	blocks := make([]int, 0, n)
	for block, ok := range free {
		if len(blocks) == n {
			break
		}
		if ok {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) < n {
		return nil, fmt.Errorf("%w: %d blocks wanted, %d free", ErrDiskFull, n, len(blocks))
	}
	return blocks, nil
}

// PlanExtents allocates blocks for a file of the given size and lays them
// out as directory entries, one per extent. Nothing is written; the caller
// stores the data and the entries. A zero-size file still gets one extent
// so it appears in the directory.
func (d *Disk) PlanExtents(user byte, name, ftype string, size int, snapshot []Slot) ([]Entry, error) {
	slots := d.Width.Slots()
	bytesPerExtent := slots * d.BlockSize

	blocksNeeded := (size + d.BlockSize - 1) / d.BlockSize
	extentsNeeded := (blocksNeeded + slots - 1) / slots
	if extentsNeeded == 0 {
		extentsNeeded = 1
	}
	if extentsNeeded > maxExtents {
		return nil, fmt.Errorf("%w: %d extents for %d bytes", ErrTooManyExtents, extentsNeeded, size)
	}

	blocks, err := d.FindFreeBlocks(d.FreeBitmap(snapshot), blocksNeeded)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, extentsNeeded)
	remaining := size
	for i := 0; i < extentsNeeded; i++ {
		records := (min(remaining, bytesPerExtent) + d.SectorSize - 1) / d.SectorSize
		remaining -= records * d.SectorSize

		first := i * slots
		last := min(first+slots, len(blocks))
		entry, err := NewEntry(user, name, ftype, i, byte(records), blocks[first:last])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

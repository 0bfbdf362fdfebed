// file: pkg/cpmdisk/fileops.go

package cpmdisk

import (
	"fmt"
	"os"
	"sort"
)

// Initialize creates (or re-creates) the backing image: the whole image is
// zero-filled and every directory slot is written as unused.
func (d *Disk) Initialize() error {
	f, err := os.Create(d.Image)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if _, err := f.Write(make([]byte, d.Size)); err != nil {
		f.Close()
		return fmt.Errorf("failed to zero-fill image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close image: %w", err)
	}

	for n := 0; n < d.DirectoryMax; n++ {
		if err := d.WriteSlot(n, UnusedRecord()); err != nil {
			return err
		}
	}
	return nil
}

// Match reports whether the entry belongs to the named file. Inputs go
// through the same sanitizing as stored names, so "hello.txt" matches an
// entry written as HELLO.TXT.
func (e *Entry) Match(name, ftype string) bool {
	return e.Name == SanitizeName(name, 8) && e.Type == SanitizeName(ftype, 3)
}

// WriteFile stores data as a new file. The directory is re-read first, the
// needed blocks and extents are planned against that snapshot, the data is
// written block by block, and finally one directory entry per extent goes
// into a free slot. A live file with the same name and type is refused.
func (d *Disk) WriteFile(name, ftype string, data []byte) error {
	snapshot, err := d.ReadAll()
	if err != nil {
		return err
	}
	for _, s := range snapshot {
		if s.Entry.Match(name, ftype) {
			return fmt.Errorf("%w: %s", ErrFileExists, s.Entry.Filename())
		}
	}

	entries, err := d.PlanExtents(0, name, ftype, len(data), snapshot)
	if err != nil {
		return err
	}

	// All capacity checks happen before the first write so a full disk or
	// full directory leaves the image untouched.
	freeSlots, err := d.countFreeSlots()
	if err != nil {
		return err
	}
	if freeSlots < len(entries) {
		return fmt.Errorf("%w: %d extents, %d free slots", ErrDirectoryFull, len(entries), freeSlots)
	}

	var blocks []int
	for _, e := range entries {
		blocks = append(blocks, e.DataBlocks()...)
	}
	for i, block := range blocks {
		start := i * d.BlockSize
		end := min(start+d.BlockSize, len(data))
		if err := d.WriteBlock(block, data[start:end]); err != nil {
			return err
		}
	}

	for _, e := range entries {
		slot, err := d.FindFreeSlot()
		if err != nil {
			return err
		}
		record, err := e.Encode(d.Width)
		if err != nil {
			return err
		}
		if err := d.WriteSlot(slot, record); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile returns the contents of a file. All extents matching the name
// and type are collected, ordered by extent number, and each extent's
// blocks are concatenated up to its first hole.
func (d *Disk) ReadFile(name, ftype string) ([]byte, error) {
	snapshot, err := d.ReadAll()
	if err != nil {
		return nil, err
	}

	var extents []Entry
	for _, s := range snapshot {
		if s.Entry.Match(name, ftype) {
			extents = append(extents, s.Entry)
		}
	}
	if len(extents) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrFileNotFound, SanitizeName(name, 8), SanitizeName(ftype, 3))
	}
	sort.Slice(extents, func(i, j int) bool {
		return extents[i].ExtentNumber() < extents[j].ExtentNumber()
	})

	var data []byte
	for _, e := range extents {
		for _, block := range e.DataBlocks() {
			content, err := d.ReadBlock(block)
			if err != nil {
				return nil, err
			}
			data = append(data, content...)
		}
	}
	return data, nil
}

// DeleteFile retires every extent of the named file and zero-fills the
// blocks each extent references, up to its first hole.
func (d *Disk) DeleteFile(name, ftype string) error {
	snapshot, err := d.ReadAll()
	if err != nil {
		return err
	}

	found := false
	for _, s := range snapshot {
		if !s.Entry.Match(name, ftype) {
			continue
		}
		found = true
		if err := d.RetireSlot(s.Index); err != nil {
			return err
		}
		for _, block := range s.Entry.DataBlocks() {
			if err := d.WriteBlock(block, nil); err != nil {
				return err
			}
		}
	}
	if !found {
		return fmt.Errorf("%w: %s.%s", ErrFileNotFound, SanitizeName(name, 8), SanitizeName(ftype, 3))
	}
	return nil
}

// ListEntries returns the decoded live directory entries with their slots.
func (d *Disk) ListEntries() ([]Slot, error) {
	return d.ReadAll()
}

// FreeBlockBitmap derives the current free-block map from the directory.
func (d *Disk) FreeBlockBitmap() ([]bool, error) {
	snapshot, err := d.ReadAll()
	if err != nil {
		return nil, err
	}
	return d.FreeBitmap(snapshot), nil
}

// FindEntry returns the first live entry matching the filename, any type.
func (d *Disk) FindEntry(name string) (Slot, error) {
	snapshot, err := d.ReadAll()
	if err != nil {
		return Slot{}, err
	}
	want := SanitizeName(name, 8)
	for _, s := range snapshot {
		if s.Entry.Name == want {
			return s, nil
		}
	}
	return Slot{}, fmt.Errorf("%w: %s", ErrFileNotFound, want)
}

// EntrySizeBytes reports how many bytes of storage an entry's allocated
// blocks cover.
func (d *Disk) EntrySizeBytes(e *Entry) int {
	return len(e.AllocatedBlocks()) * d.BlockSize
}

// FileSize reports the storage a whole file covers across all its extents.
func (d *Disk) FileSize(name, ftype string) (int, error) {
	snapshot, err := d.ReadAll()
	if err != nil {
		return 0, err
	}
	size := 0
	found := false
	for _, s := range snapshot {
		if s.Entry.Match(name, ftype) {
			found = true
			size += d.EntrySizeBytes(&s.Entry)
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrFileNotFound, SanitizeName(name, 8))
	}
	return size, nil
}

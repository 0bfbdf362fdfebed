// file: pkg/cpmdisk/directory.go

package cpmdisk

import (
	"fmt"
	"log"
)

// Slot pairs a decoded directory entry with the index it occupies.
type Slot struct {
	Index int
	Entry Entry
}

// SlotOffset returns the byte offset of directory slot n.
func (d *Disk) SlotOffset(n int) int {
	return d.DirectoryStart + n*EntrySize
}

// ReadSlot reads the raw 32 bytes of directory slot n.
func (d *Disk) ReadSlot(n int) ([]byte, error) {
	if n < 0 || n >= d.DirectoryMax {
		return nil, fmt.Errorf("%w: slot %d of %d", ErrBadEntry, n, d.DirectoryMax)
	}
	return d.ReadAt(d.SlotOffset(n), EntrySize)
}

// WriteSlot writes a raw 32-byte record into directory slot n.
func (d *Disk) WriteSlot(n int, record []byte) error {
	if n < 0 || n >= d.DirectoryMax {
		return fmt.Errorf("%w: slot %d of %d", ErrBadEntry, n, d.DirectoryMax)
	}
	if len(record) != EntrySize {
		return fmt.Errorf("%w: record is %d bytes", ErrBadEntry, len(record))
	}
	return d.WriteAt(d.SlotOffset(n), record)
}

// ReadAll scans the whole directory and returns a snapshot of the live,
// decodable entries. A record that fails to decode is logged and skipped;
// the scan never fails on bad entries, only on I/O errors.
func (d *Disk) ReadAll() ([]Slot, error) {
	var slots []Slot
	for n := 0; n < d.DirectoryMax; n++ {
		data, err := d.ReadSlot(n)
		if err != nil {
			return nil, err
		}
		if data[0] == UnusedEntry {
			continue
		}
		entry, err := DecodeEntry(d.Width, data)
		if err != nil {
			log.Printf("skipping directory entry %d/%d: %v", n, d.DirectoryMax, err)
			continue
		}
		slots = append(slots, Slot{Index: n, Entry: entry})
	}
	return slots, nil
}

// FindFreeSlot returns the index of the first unused directory slot.
func (d *Disk) FindFreeSlot() (int, error) {
	for n := 0; n < d.DirectoryMax; n++ {
		data, err := d.ReadSlot(n)
		if err != nil {
			return 0, err
		}
		if data[0] == UnusedEntry {
			return n, nil
		}
	}
	return 0, ErrDirectoryFull
}

// RetireSlot marks directory slot n unused.
func (d *Disk) RetireSlot(n int) error {
	return d.WriteSlot(n, UnusedRecord())
}

func (d *Disk) countFreeSlots() (int, error) {
	free := 0
	for n := 0; n < d.DirectoryMax; n++ {
		data, err := d.ReadSlot(n)
		if err != nil {
			return 0, err
		}
		if data[0] == UnusedEntry {
			free++
		}
	}
	return free, nil
}

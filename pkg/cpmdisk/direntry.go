// file: pkg/cpmdisk/direntry.go

package cpmdisk

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// A directory record is 32 bytes:
//
//	UU F1 F2 F3 F4 F5 F6 F7 F8 T1 T2 T3 EX S1 S2 RC
//	AL AL AL AL AL AL AL AL AL AL AL AL AL AL AL AL
//
// UU is the user number (0xE5 marks the slot unused), F/T the space-padded
// name and type, EX/S2 the low and high extent bytes, S1 reserved, RC the
// count of 128-byte records used by this extent. AL holds the block
// pointers, sixteen bytes or eight little-endian words depending on the
// disk's pointer width. A pointer of 0 is a hole: that part of the file has
// no storage.

// Entry is one decoded directory record.
type Entry struct {
	Status      byte   // owning user number, or UnusedEntry
	Name        string // up to 8 chars, uppercase, no padding
	Type        string // up to 3 chars, uppercase, no padding
	ExtentLow   byte
	Reserved    byte
	ExtentHigh  byte
	RecordCount byte
	Blocks      []int // block pointers; 0 is a hole
}

// forbidden characters in names and types, per the CP/M 2.2 directory rules
const forbiddenChars = "<>.,;:=?*[]"

// SanitizeName uppercases s and strips the characters CP/M forbids in
// filenames, truncating to max characters.
func SanitizeName(s string, max int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if strings.ContainsRune(forbiddenChars, r) {
			continue
		}
		b.WriteRune(r)
		if b.Len() >= max {
			break
		}
	}
	return b.String()
}

func validName(s string, max int) error {
	if len(s) > max {
		return fmt.Errorf("%w: %q longer than %d characters", ErrInvalidFilename, s, max)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return fmt.Errorf("%w: %q contains a non-ASCII byte", ErrInvalidFilename, s)
		}
	}
	return nil
}

// NewEntry builds a live directory entry for one extent of a file. The name
// and type are sanitized; an empty name after sanitizing is an error.
func NewEntry(user byte, name, ftype string, extent int, records byte, blocks []int) (Entry, error) {
	name = SanitizeName(name, 8)
	ftype = SanitizeName(ftype, 3)
	if name == "" {
		return Entry{}, fmt.Errorf("%w: empty filename", ErrInvalidFilename)
	}
	if err := validName(name, 8); err != nil {
		return Entry{}, err
	}
	if err := validName(ftype, 3); err != nil {
		return Entry{}, err
	}
	return Entry{
		Status:      user,
		Name:        name,
		Type:        ftype,
		ExtentLow:   byte(extent & 0x1F),
		ExtentHigh:  byte(extent >> 5),
		RecordCount: records,
		Blocks:      blocks,
	}, nil
}

// ExtentNumber combines the low and high extent bytes, with extent mask 0.
func (e *Entry) ExtentNumber() int {
	return int(e.ExtentHigh)<<5 + int(e.ExtentLow&0x1F)
}

// Filename returns "NAME.TYP", or just the name when the type is empty.
func (e *Entry) Filename() string {
	if e.Type == "" {
		return e.Name
	}
	return e.Name + "." + e.Type
}

// DataBlocks returns the entry's block pointers up to the first hole, the
// range a sequential read of this extent consumes.
func (e *Entry) DataBlocks() []int {
	for i, b := range e.Blocks {
		if b == 0 {
			return e.Blocks[:i]
		}
	}
	return e.Blocks
}

// AllocatedBlocks returns every nonzero block pointer in the entry.
func (e *Entry) AllocatedBlocks() []int {
	var blocks []int
	for _, b := range e.Blocks {
		if b != 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Encode renders the entry as its 32-byte record form.
func (e *Entry) Encode(w PointerWidth) ([]byte, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("%w: empty filename", ErrInvalidFilename)
	}
	if err := validName(e.Name, 8); err != nil {
		return nil, err
	}
	if err := validName(e.Type, 3); err != nil {
		return nil, err
	}
	if len(e.Blocks) > w.Slots() {
		return nil, fmt.Errorf("%w: %d block pointers in a %s record", ErrBadEntry, len(e.Blocks), w)
	}

	rec := make([]byte, EntrySize)
	rec[0] = e.Status
	copy(rec[1:9], padName(e.Name, 8))
	copy(rec[9:12], padName(e.Type, 3))
	rec[12] = e.ExtentLow
	rec[13] = e.Reserved
	rec[14] = e.ExtentHigh
	rec[15] = e.RecordCount

	switch w {
	case Width16:
		for i, b := range e.Blocks {
			binary.LittleEndian.PutUint16(rec[16+2*i:], uint16(b))
		}
	default:
		for i, b := range e.Blocks {
			if b > 0xFF {
				return nil, fmt.Errorf("%w: block %d does not fit an 8-bit pointer", ErrBadEntry, b)
			}
			rec[16+i] = byte(b)
		}
	}
	return rec, nil
}

// DecodeEntry parses one 32-byte record.
func DecodeEntry(w PointerWidth, data []byte) (Entry, error) {
	if len(data) != EntrySize {
		return Entry{}, fmt.Errorf("%w: record is %d bytes", ErrBadEntry, len(data))
	}
	for _, b := range data[1:12] {
		if b >= 0x80 {
			return Entry{}, fmt.Errorf("%w: non-ASCII name byte %#02x", ErrBadEntry, b)
		}
	}

	e := Entry{
		Status:      data[0],
		Name:        strings.TrimRight(string(data[1:9]), " "),
		Type:        strings.TrimRight(string(data[9:12]), " "),
		ExtentLow:   data[12],
		Reserved:    data[13],
		ExtentHigh:  data[14],
		RecordCount: data[15],
		Blocks:      make([]int, w.Slots()),
	}
	switch w {
	case Width16:
		for i := range e.Blocks {
			e.Blocks[i] = int(binary.LittleEndian.Uint16(data[16+2*i:]))
		}
	default:
		for i := range e.Blocks {
			e.Blocks[i] = int(data[16+i])
		}
	}
	return e, nil
}

// UnusedRecord returns the record written to a free or retired slot.
func UnusedRecord() []byte {
	rec := make([]byte, EntrySize)
	rec[0] = UnusedEntry
	return rec
}

func padName(s string, length int) []byte {
	padded := make([]byte, length)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded, s)
	return padded
}

// file: pkg/cpmdisk/geometry.go

// Package cpmdisk implements a CP/M 2.2 style filesystem on top of a flat
// sector-dump image file: fixed-size blocks, a fixed directory of 32-byte
// extents, and whole-file create/read/delete operations.
//
// Free space is never persisted; it is derived from the live directory on
// every allocation, exactly as CP/M itself does it.
package cpmdisk

import "fmt"

const (
	EntrySize   = 32   // a directory record is always 32 bytes
	RecordSize  = 128  // CP/M logical record
	UnusedEntry = 0xE5 // status byte of a free or deleted slot
)

// PointerWidth selects how block pointers are stored in a directory record:
// sixteen single bytes, or eight 16-bit little-endian values. It is fixed
// per disk by the usable block count.
type PointerWidth int

const (
	Width8 PointerWidth = iota
	Width16
)

// Slots returns the number of block pointers one record holds.
func (w PointerWidth) Slots() int {
	if w == Width16 {
		return 8
	}
	return 16
}

// Bytes returns the stored size of one block pointer.
func (w PointerWidth) Bytes() int {
	if w == Width16 {
		return 2
	}
	return 1
}

func (w PointerWidth) String() string {
	if w == Width16 {
		return "16-bit"
	}
	return "8-bit"
}

// DiskParameters describe a disk format. The fields mirror a classic CP/M
// disk parameter block the way a diskdefs file states them.
type DiskParameters struct {
	Tracks          int
	SectorsPerTrack int
	SectorSize      int
	BlockSize       int
	BlockShift      int // bsh: sectors per block = 1 << bsh
	DirectoryMax    int // drm: number of directory entries
	ReservedTracks  int // off: system tracks before the directory
}

// Disk binds a geometry to a backing image file. All derived quantities are
// computed once at construction and never change.
type Disk struct {
	Image string
	DiskParameters

	Size              int // image size in bytes
	TotalBlocks       int
	ReservedBlocks    int // whole blocks hidden by the reserved tracks
	DirectoryStart    int // byte offset of the directory; block 0 origin
	DirectorySize     int
	DirectoryBlocks   int
	TotalUsableBlocks int
	FirstUsableBlock  int
	SectorsPerBlock   int
	Width             PointerWidth
}

// NewDisk derives the full geometry for an image file from its parameters.
// It does not touch the image itself.
func NewDisk(image string, p DiskParameters) (*Disk, error) {
	if p.Tracks <= 0 || p.SectorsPerTrack <= 0 || p.SectorSize <= 0 {
		return nil, fmt.Errorf("%w: non-positive track/sector parameters", ErrBadGeometry)
	}
	if p.BlockSize <= 0 || p.BlockSize%p.SectorSize != 0 {
		return nil, fmt.Errorf("%w: block size %d is not a multiple of sector size %d",
			ErrBadGeometry, p.BlockSize, p.SectorSize)
	}
	if 1<<p.BlockShift != p.BlockSize/p.SectorSize {
		return nil, fmt.Errorf("%w: block shift %d does not match %d sectors per block",
			ErrBadGeometry, p.BlockShift, p.BlockSize/p.SectorSize)
	}
	if p.DirectoryMax <= 0 {
		return nil, fmt.Errorf("%w: no directory entries", ErrBadGeometry)
	}
	if p.ReservedTracks < 0 || p.ReservedTracks >= p.Tracks {
		return nil, fmt.Errorf("%w: %d reserved tracks on a %d track disk",
			ErrBadGeometry, p.ReservedTracks, p.Tracks)
	}

	d := &Disk{
		Image:          image,
		DiskParameters: p,
	}
	d.Size = p.Tracks * p.SectorsPerTrack * p.SectorSize
	d.TotalBlocks = d.Size / p.BlockSize
	d.ReservedBlocks = p.ReservedTracks * p.SectorsPerTrack * p.SectorSize / p.BlockSize
	d.DirectoryStart = p.ReservedTracks * p.SectorsPerTrack * p.SectorSize
	d.DirectorySize = p.DirectoryMax * EntrySize
	d.DirectoryBlocks = (d.DirectorySize + p.BlockSize - 1) / p.BlockSize
	d.TotalUsableBlocks = (d.Size-d.DirectoryBlocks*p.BlockSize)/p.BlockSize + 1
	d.FirstUsableBlock = d.TotalBlocks - d.TotalUsableBlocks + 1
	d.SectorsPerBlock = p.BlockSize / p.SectorSize

	if d.TotalUsableBlocks <= d.DirectoryBlocks {
		return nil, fmt.Errorf("%w: directory leaves no usable blocks", ErrBadGeometry)
	}

	d.Width = Width8
	if d.TotalUsableBlocks > 255 {
		d.Width = Width16
	}
	return d, nil
}

// Block converts a track and sector to a block number.
func (d *Disk) Block(track, sector int) int {
	return ((track*d.SectorsPerTrack + sector) >> d.BlockShift) - d.ReservedBlocks
}

// TrackSector converts a block number to the track and sector where it begins.
func (d *Disk) TrackSector(block int) (track, sector int) {
	linear := (block + d.ReservedBlocks) << d.BlockShift
	return linear / d.SectorsPerTrack, linear % d.SectorsPerTrack
}

// Offset converts a track and sector to a byte offset in the image.
func (d *Disk) Offset(track, sector int) int {
	return track*d.SectorsPerTrack*d.SectorSize + sector*d.SectorSize
}

// OffsetTrackSector converts a byte offset back to a track and sector.
func (d *Disk) OffsetTrackSector(offset int) (track, sector int) {
	bytesPerTrack := d.SectorsPerTrack * d.SectorSize
	return offset / bytesPerTrack, (offset % bytesPerTrack) / d.SectorSize
}

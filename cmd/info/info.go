// file: cmd/info/info.go

package info

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// DiskInfo is the geometry report in a structured form.
type DiskInfo struct {
	Path              string `json:"path"`
	Tracks            int    `json:"tracks"`
	SectorsPerTrack   int    `json:"sectors_per_track"`
	SectorSize        int    `json:"sector_size"`
	BlockSize         int    `json:"block_size"`
	TotalBlocks       int    `json:"total_blocks"`
	ReservedBlocks    int    `json:"reserved_blocks"`
	DirectoryBlocks   int    `json:"directory_blocks"`
	DirectoryEntries  int    `json:"directory_entries"`
	TotalUsableBlocks int    `json:"total_usable_blocks"`
	FirstUsableBlock  int    `json:"first_usable_block"`
	PointerWidth      string `json:"pointer_width"`
	DirectoryStart    int    `json:"directory_start"`
	Size              int    `json:"size"`
	Files             int    `json:"files"`
	FreeBlocks        int    `json:"free_blocks"`
}

// Options configures the information display.
type Options struct {
	JSON     bool // output in JSON format
	FreeMap  bool // show the free/used block map per track
	OwnerMap bool // show which directory slot owns each block
	Quiet    bool // suppress non-error output
}

// DefaultOptions returns default options for Info.
func DefaultOptions() *Options {
	return &Options{}
}

// Info reports the disk geometry and allocation state.
func Info(disk *cpmdisk.Disk, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	slots, err := disk.ListEntries()
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}
	free := disk.FreeBitmap(slots)

	report := &DiskInfo{
		Path:              disk.Image,
		Tracks:            disk.Tracks,
		SectorsPerTrack:   disk.SectorsPerTrack,
		SectorSize:        disk.SectorSize,
		BlockSize:         disk.BlockSize,
		TotalBlocks:       disk.TotalBlocks,
		ReservedBlocks:    disk.ReservedBlocks,
		DirectoryBlocks:   disk.DirectoryBlocks,
		DirectoryEntries:  disk.DirectoryMax,
		TotalUsableBlocks: disk.TotalUsableBlocks,
		FirstUsableBlock:  disk.FirstUsableBlock,
		PointerWidth:      disk.Width.String(),
		DirectoryStart:    disk.DirectoryStart,
		Size:              disk.Size,
		Files:             len(slots),
	}
	for _, ok := range free {
		if ok {
			report.FreeBlocks++
		}
	}

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if !opts.Quiet {
		printReport(disk, report)
	}
	if opts.FreeMap {
		printFreeMap(disk, free)
	}
	if opts.OwnerMap {
		printOwnerMap(disk, slots)
	}
	return nil
}

func printReport(disk *cpmdisk.Disk, r *DiskInfo) {
	track, sector := disk.TrackSector(disk.FirstUsableBlock)

	fmt.Printf("Disk: %s\n", r.Path)
	fmt.Printf("Tracks: %d\n", r.Tracks)
	fmt.Printf("Sectors per track: %d\n", r.SectorsPerTrack)
	fmt.Printf("Sector size: %d\n", r.SectorSize)
	fmt.Printf("Block size: %d\n", r.BlockSize)
	fmt.Printf("Total blocks: %d - (%d bytes)\n", r.TotalBlocks, r.TotalBlocks*r.BlockSize)
	fmt.Printf("Reserved blocks: %d\n", r.ReservedBlocks)
	fmt.Printf("Directory blocks: %d\n", r.DirectoryBlocks)
	fmt.Printf("Directory entries: %d\n", r.DirectoryEntries)
	fmt.Printf("Total usable blocks: %d - (%d bytes)\n", r.TotalUsableBlocks, r.TotalUsableBlocks*r.BlockSize)
	fmt.Printf("First usable block: %d - track %d sector %d\n", r.FirstUsableBlock, track, sector)
	fmt.Printf("Pointer width: %s\n", r.PointerWidth)
	fmt.Printf("Directory start: %d - %08x\n", r.DirectoryStart, r.DirectoryStart)
	fmt.Printf("Files: %d - Free blocks: %d\n", r.Files, r.FreeBlocks)
	fmt.Printf("Size: %d bytes\n", r.Size)
}

// printFreeMap draws one line per track, a dot for each free block and a
// star for each used one.
func printFreeMap(disk *cpmdisk.Disk, free []bool) {
	fmt.Println("Block map (. free, * used, - outside data area):")
	for track := 0; track < disk.Tracks; track++ {
		fmt.Printf("Track %02d: ", track)
		for sector := 0; sector < disk.SectorsPerTrack; sector++ {
			block := disk.Block(track, sector)
			switch {
			case block < 0 || block >= len(free):
				fmt.Print("-")
			case free[block]:
				fmt.Print(".")
			default:
				fmt.Print("*")
			}
		}
		fmt.Println()
	}
}

// printOwnerMap shows the directory slot owning each block.
func printOwnerMap(disk *cpmdisk.Disk, slots []cpmdisk.Slot) {
	owner := make(map[int]int)
	for _, s := range slots {
		for _, block := range s.Entry.AllocatedBlocks() {
			owner[block] = s.Index
		}
	}

	fmt.Println("Block owners (directory slot per block, R reserved):")
	for track := 0; track < disk.Tracks; track++ {
		fmt.Printf("Track %02d: ", track)
		for sector := 0; sector < disk.SectorsPerTrack; sector++ {
			block := disk.Block(track, sector)
			switch {
			case block < disk.FirstUsableBlock:
				fmt.Print("  R")
			default:
				if slot, ok := owner[block]; ok {
					fmt.Printf("%3d", slot)
				} else {
					fmt.Print("  .")
				}
			}
		}
		fmt.Println()
	}
}

// DumpBlock prints a block as hex and ASCII, 32 bytes per line, with the
// track and sector each line falls on.
func DumpBlock(disk *cpmdisk.Disk, block int) error {
	data, err := disk.ReadBlock(block)
	if err != nil {
		return err
	}

	offset := disk.BlockOffset(block)
	fmt.Printf("Block %d - Offset %08x - Size %d bytes\n", block, offset, len(data))

	lastTrack, lastSector := -1, -1
	for i := 0; i < len(data); i += 32 {
		track, sector := disk.OffsetTrackSector(offset + i)
		if track != lastTrack || sector != lastSector {
			lastTrack, lastSector = track, sector
			fmt.Printf("Track %02d Sector %02d\n", track, sector)
		}

		fmt.Printf(" %08x :: ", offset+i)
		for _, b := range data[i : i+32] {
			fmt.Printf("%02x ", b)
		}
		fmt.Print(" ")
		for _, b := range data[i : i+32] {
			if b > 0x20 && b < 0x7F {
				fmt.Printf("%c", b)
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println()
	}
	return nil
}

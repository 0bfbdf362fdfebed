// file: cmd/list/list.go

package list

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/csegura/cpm-disk/internal"
	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// Format defines the listing output style.
type Format int

const (
	FormatTable Format = iota // one row per directory entry
	FormatRaw                 // raw hex dump of the live records
)

// Options configures the directory listing.
type Options struct {
	Format  Format // output style
	JSON    bool   // output in JSON format
	Sort    string // sort order: slot, name, size
	Pattern string // filter by filename pattern
	Quiet   bool   // suppress non-error output
}

// DefaultOptions returns default options for List.
func DefaultOptions() *Options {
	return &Options{Sort: "slot", Pattern: "*"}
}

// FileEntry is one row of the listing.
type FileEntry struct {
	Slot    int    `json:"slot"`
	User    int    `json:"user"`
	Extent  int    `json:"extent"`
	Name    string `json:"name"`
	Records int    `json:"records"`
	Blocks  []int  `json:"blocks"`
	Size    int    `json:"size"`
}

// List prints the directory of a disk image.
func List(disk *cpmdisk.Disk, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	slots, err := disk.ListEntries()
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	if opts.Format == FormatRaw && !opts.JSON {
		return outputRaw(disk, slots)
	}

	var files []FileEntry
	for _, s := range slots {
		if !matchesPattern(s.Entry.Filename(), opts.Pattern) {
			continue
		}
		files = append(files, FileEntry{
			Slot:    s.Index,
			User:    int(s.Entry.Status),
			Extent:  s.Entry.ExtentNumber(),
			Name:    s.Entry.Filename(),
			Records: int(s.Entry.RecordCount),
			Blocks:  s.Entry.AllocatedBlocks(),
			Size:    disk.EntrySizeBytes(&s.Entry),
		})
	}
	sortFiles(files, opts)

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(files)
	}
	return outputTable(disk, files, opts)
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	matched, err := filepath.Match(strings.ToUpper(pattern), strings.ToUpper(name))
	return err == nil && matched
}

func sortFiles(files []FileEntry, opts *Options) {
	sort.Slice(files, func(i, j int) bool {
		switch strings.ToLower(opts.Sort) {
		case "name":
			return files[i].Name < files[j].Name
		case "size":
			return files[i].Size < files[j].Size
		default: // slot order
			return files[i].Slot < files[j].Slot
		}
	})
}

func outputTable(disk *cpmdisk.Disk, files []FileEntry, opts *Options) error {
	if len(files) == 0 {
		if !opts.Quiet {
			fmt.Println("No files found")
		}
		return nil
	}

	rule := strings.Repeat("-", 78)
	fmt.Println("Directory Listing:")
	fmt.Println(rule)
	fmt.Printf("%-6s %-3s %-3s %-12s %-4s %-30s %s\n",
		"Entry", "Usr", "Ext", "Name", "Rec", "Blocks", "Size")
	fmt.Println(rule)

	for _, f := range files {
		blocks := make([]string, len(f.Blocks))
		for i, b := range f.Blocks {
			if disk.Width == cpmdisk.Width16 {
				blocks[i] = fmt.Sprintf("%04x", b)
			} else {
				blocks[i] = fmt.Sprintf("%02x", b)
			}
		}
		fmt.Printf("%-6d %-3d %-3d %-12s %02x   %-30s %s\n",
			f.Slot, f.User, f.Extent, f.Name, f.Records,
			strings.Join(blocks, " "), internal.HumanSize(f.Size))
	}

	fmt.Println(rule)
	fmt.Printf("Total entries: %d - Used entries: %d\n", disk.DirectoryMax, len(files))
	return nil
}

// outputRaw dumps the live records byte for byte, hex beside ASCII.
func outputRaw(disk *cpmdisk.Disk, slots []cpmdisk.Slot) error {
	for _, s := range slots {
		data, err := disk.ReadSlot(s.Index)
		if err != nil {
			return err
		}
		var hexPart, asciiPart strings.Builder
		for _, b := range data {
			fmt.Fprintf(&hexPart, "%02x ", b)
			if b > 0x20 && b < 0x7F {
				asciiPart.WriteByte(b)
			} else {
				asciiPart.WriteByte('.')
			}
		}
		fmt.Printf("%3d  %s %s\n", s.Index, hexPart.String(), asciiPart.String())
	}
	fmt.Printf("Used entries: %d/%d\n", len(slots), disk.DirectoryMax)
	return nil
}

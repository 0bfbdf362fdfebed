// file: pkg/diskdef/diskdef.go

// Package diskdef loads human-readable disk format definitions.
//
// A definitions file is a sequence of blocks:
//
//	def ibm-3740
//	   tracks 77
//	   sectors 26
//	   bytes_sector 128
//	   blocksize 1024
//	   bsh 3
//	   drm 64
//	   off 2
//	end
package diskdef

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// DefaultPath is the definitions file used when none is given.
const DefaultPath = "diskdefs"

var required = []string{"tracks", "sectors", "bytes_sector", "blocksize", "bsh", "drm", "off"}

// Definitions holds the disk formats read from a diskdefs file.
type Definitions struct {
	defs map[string]map[string]int
}

// Load reads a definitions file.
func Load(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definitions: %w", err)
	}
	defer f.Close()

	defs := &Definitions{defs: make(map[string]map[string]int)}

	var name string
	var current map[string]int
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "def"):
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("%s:%d: malformed def line", path, lineNum)
			}
			name = fields[1]
			current = make(map[string]int)
		case line == "end":
			if current == nil {
				return nil, fmt.Errorf("%s:%d: end without def", path, lineNum)
			}
			defs.defs[name] = current
			current = nil
		default:
			if current == nil {
				return nil, fmt.Errorf("%s:%d: parameter outside a def block", path, lineNum)
			}
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("%s:%d: expected key and value", path, lineNum)
			}
			value, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %s: %w", path, lineNum, fields[0], err)
			}
			current[fields[0]] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	if current != nil {
		return nil, fmt.Errorf("%s: def %s has no end", path, name)
	}
	return defs, nil
}

// Names lists the defined formats, sorted.
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.defs))
	for name := range d.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params returns the disk parameters of a named format.
func (d *Definitions) Params(name string) (cpmdisk.DiskParameters, error) {
	def, ok := d.defs[name]
	if !ok {
		return cpmdisk.DiskParameters{}, fmt.Errorf("disk definition not found: %s", name)
	}
	for _, key := range required {
		if _, ok := def[key]; !ok {
			return cpmdisk.DiskParameters{}, fmt.Errorf("definition %s is missing %s", name, key)
		}
	}
	return cpmdisk.DiskParameters{
		Tracks:          def["tracks"],
		SectorsPerTrack: def["sectors"],
		SectorSize:      def["bytes_sector"],
		BlockSize:       def["blocksize"],
		BlockShift:      def["bsh"],
		DirectoryMax:    def["drm"],
		ReservedTracks:  def["off"],
	}, nil
}

// Disk builds a Disk for a named format over the given image file.
func (d *Definitions) Disk(name, image string) (*cpmdisk.Disk, error) {
	params, err := d.Params(name)
	if err != nil {
		return nil, err
	}
	return cpmdisk.NewDisk(image, params)
}

// file: cmd/add/add.go

package add

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/csegura/cpm-disk/internal"
	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// Options configures file import.
type Options struct {
	Force bool // replace a file that already exists on the disk
	Quiet bool // suppress non-error output
}

// DefaultOptions returns default options for Add.
func DefaultOptions() *Options {
	return &Options{}
}

// Add imports host files into the disk image. The CP/M name and type come
// from each file's basename.
func Add(disk *cpmdisk.Disk, paths []string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	for _, path := range paths {
		if err := addFile(disk, path, opts); err != nil {
			return err
		}
	}
	return nil
}

// AddDirs imports every visible file of one or more host directories, the
// batch mode used to populate a fresh system disk.
func AddDirs(disk *cpmdisk.Disk, dirs []string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if err := addFile(disk, filepath.Join(dir, entry.Name()), opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func addFile(disk *cpmdisk.Disk, path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	name, ftype := internal.SplitName(path)
	if opts.Force {
		if err := disk.DeleteFile(name, ftype); err != nil && !errors.Is(err, cpmdisk.ErrFileNotFound) {
			return err
		}
	}

	if err := disk.WriteFile(name, ftype, data); err != nil {
		return fmt.Errorf("failed to add %s: %w", path, err)
	}
	if !opts.Quiet {
		fmt.Printf("Added %s (%d bytes)\n", path, len(data))
	}
	return nil
}

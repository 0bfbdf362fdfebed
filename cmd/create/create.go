// file: cmd/create/create.go

package create

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// Options configures image creation.
type Options struct {
	Force bool // overwrite an existing image
	Quiet bool // suppress non-error output
}

// DefaultOptions returns default options for Create.
func DefaultOptions() *Options {
	return &Options{}
}

// Create formats a new disk image: the file is zero-filled to the full
// geometry size and every directory slot is written as unused.
func Create(disk *cpmdisk.Disk, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	if !opts.Force {
		if _, err := os.Stat(disk.Image); err == nil {
			return fmt.Errorf("image already exists: %s (use --force to overwrite)", disk.Image)
		}
	}

	if dir := filepath.Dir(disk.Image); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := disk.Initialize(); err != nil {
		os.Remove(disk.Image)
		return fmt.Errorf("failed to initialize image: %w", err)
	}

	if !opts.Quiet {
		fmt.Printf("Created %s: %d bytes, %d directory entries, %s block pointers\n",
			disk.Image, disk.Size, disk.DirectoryMax, disk.Width)
	}
	return nil
}

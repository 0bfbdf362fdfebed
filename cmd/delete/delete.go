// file: cmd/delete/delete.go

package delete

import (
	"fmt"

	"github.com/csegura/cpm-disk/internal"
	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// Options configures file deletion.
type Options struct {
	Quiet bool // suppress non-error output
}

// DefaultOptions returns default options for Delete.
func DefaultOptions() *Options {
	return &Options{}
}

// Delete removes files from the disk image. Every extent of each file is
// retired and its blocks are zero-filled.
func Delete(disk *cpmdisk.Disk, names []string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	for _, name := range names {
		cpmName, cpmType := internal.SplitName(name)
		if err := disk.DeleteFile(cpmName, cpmType); err != nil {
			return err
		}
		if !opts.Quiet {
			fmt.Printf("Deleted %s\n", name)
		}
	}
	return nil
}

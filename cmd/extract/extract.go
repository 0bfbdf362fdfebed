// file: cmd/extract/extract.go

package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/csegura/cpm-disk/internal"
	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// Options configures file extraction.
type Options struct {
	OutDir string // host directory for extracted files
	Quiet  bool   // suppress non-error output
}

// DefaultOptions returns default options for Extract.
func DefaultOptions() *Options {
	return &Options{OutDir: "."}
}

// Extract copies files from the disk image to the host filesystem. Each
// name is split into CP/M name and type like "hello.txt".
func Extract(disk *cpmdisk.Disk, names []string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	for _, name := range names {
		cpmName, cpmType := internal.SplitName(name)
		data, err := disk.ReadFile(cpmName, cpmType)
		if err != nil {
			return err
		}

		out := filepath.Join(opts.OutDir, filepath.Base(name))
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		if !opts.Quiet {
			fmt.Printf("Extracted %s (%d bytes)\n", out, len(data))
		}
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/csegura/cpm-disk/cmd/add"
	"github.com/csegura/cpm-disk/cmd/boot"
	"github.com/csegura/cpm-disk/cmd/create"
	"github.com/csegura/cpm-disk/cmd/delete"
	"github.com/csegura/cpm-disk/cmd/extract"
	"github.com/csegura/cpm-disk/cmd/info"
	"github.com/csegura/cpm-disk/cmd/list"
	"github.com/csegura/cpm-disk/cmd/mount"
	"github.com/csegura/cpm-disk/pkg/cpmdisk"
	"github.com/csegura/cpm-disk/pkg/diskdef"
)

var (
	imgPath  string
	defName  string
	defsPath string
)

func openDisk() (*cpmdisk.Disk, error) {
	if imgPath == "" || defName == "" {
		return nil, fmt.Errorf("both --img and --type are required")
	}
	defs, err := diskdef.Load(defsPath)
	if err != nil {
		return nil, err
	}
	return defs.Disk(defName, imgPath)
}

func main() {
	root := &cobra.Command{
		Use:           "disktool",
		Short:         "Create and edit CP/M disk images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&imgPath, "img", "i", "", "disk image file")
	root.PersistentFlags().StringVarP(&defName, "type", "t", "", "disk format from the definitions file")
	root.PersistentFlags().StringVar(&defsPath, "defs", diskdef.DefaultPath, "disk definitions file")

	root.AddCommand(
		createCmd(),
		addCmd(),
		extractCmd(),
		deleteCmd(),
		listCmd(),
		infoCmd(),
		bootCmd(),
		mountCmd(),
		typesCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func createCmd() *cobra.Command {
	opts := create.DefaultOptions()
	c := &cobra.Command{
		Use:   "create",
		Short: "Format a new disk image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := openDisk()
			if err != nil {
				return err
			}
			return create.Create(disk, opts)
		},
	}
	c.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing image")
	c.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-error output")
	return c
}

func addCmd() *cobra.Command {
	opts := add.DefaultOptions()
	var dirs []string
	c := &cobra.Command{
		Use:   "add [files...]",
		Short: "Add host files to the disk image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(dirs) == 0 {
				return fmt.Errorf("nothing to add")
			}
			disk, err := openDisk()
			if err != nil {
				return err
			}
			if err := add.AddDirs(disk, dirs, opts); err != nil {
				return err
			}
			return add.Add(disk, args, opts)
		},
	}
	c.Flags().StringArrayVarP(&dirs, "dir", "d", nil, "add every visible file of a host directory")
	c.Flags().BoolVarP(&opts.Force, "force", "f", false, "replace files that already exist on the disk")
	c.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-error output")
	return c
}

func extractCmd() *cobra.Command {
	opts := extract.DefaultOptions()
	c := &cobra.Command{
		Use:   "extract <files...>",
		Short: "Extract files from the disk image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := openDisk()
			if err != nil {
				return err
			}
			return extract.Extract(disk, args, opts)
		},
	}
	c.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "host directory for extracted files")
	c.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-error output")
	return c
}

func deleteCmd() *cobra.Command {
	opts := delete.DefaultOptions()
	c := &cobra.Command{
		Use:   "delete <files...>",
		Short: "Delete files from the disk image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := openDisk()
			if err != nil {
				return err
			}
			return delete.Delete(disk, args, opts)
		},
	}
	c.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-error output")
	return c
}

func listCmd() *cobra.Command {
	opts := list.DefaultOptions()
	var raw bool
	c := &cobra.Command{
		Use:   "list",
		Short: "List the directory of the disk image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				opts.Format = list.FormatRaw
			}
			disk, err := openDisk()
			if err != nil {
				return err
			}
			return list.List(disk, opts)
		},
	}
	c.Flags().BoolVar(&raw, "raw", false, "dump the raw directory records")
	c.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")
	c.Flags().StringVar(&opts.Sort, "sort", "slot", "sort order: slot, name, size")
	c.Flags().StringVarP(&opts.Pattern, "pattern", "p", "*", "filter by filename pattern")
	return c
}

func infoCmd() *cobra.Command {
	opts := info.DefaultOptions()
	var dump string
	c := &cobra.Command{
		Use:   "info",
		Short: "Show disk geometry and allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := openDisk()
			if err != nil {
				return err
			}
			if dump != "" {
				block, err := strconv.ParseInt(dump, 0, 32)
				if err != nil {
					return fmt.Errorf("bad block number %q: %w", dump, err)
				}
				return info.DumpBlock(disk, int(block))
			}
			return info.Info(disk, opts)
		},
	}
	c.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")
	c.Flags().BoolVar(&opts.FreeMap, "map", false, "show the free/used block map")
	c.Flags().BoolVar(&opts.OwnerMap, "owners", false, "show which directory slot owns each block")
	c.Flags().StringVar(&dump, "dump", "", "hex dump a block (number, 0x prefix allowed)")
	return c
}

func bootCmd() *cobra.Command {
	opts := boot.DefaultOptions()
	var offset, block int
	c := &cobra.Command{
		Use:   "boot <file>",
		Short: "Write a file into the boot/system area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := openDisk()
			if err != nil {
				return err
			}
			switch {
			case cmd.Flags().Changed("offset"):
				_, err = boot.PutAtOffset(disk, args[0], offset, opts)
				return err
			case cmd.Flags().Changed("block"):
				return boot.PutAtBlock(disk, args[0], block, opts)
			default:
				return boot.PutSystem(disk, args[0], opts)
			}
		},
	}
	c.Flags().IntVar(&offset, "offset", 0, "write at a byte offset instead of the system area")
	c.Flags().IntVar(&block, "block", 0, "write starting at a data block instead of the system area")
	c.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-error output")
	return c
}

func mountCmd() *cobra.Command {
	var debug bool
	c := &cobra.Command{
		Use:   "mount <mountpoint>",
		Short: "Mount the disk image read-only via FUSE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := openDisk()
			if err != nil {
				return err
			}
			return mount.Mount(disk, args[0], debug)
		},
	}
	c.Flags().BoolVar(&debug, "debug", false, "print FUSE debug information")
	return c
}

func typesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "types",
		Short: "List the disk formats in the definitions file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := diskdef.Load(defsPath)
			if err != nil {
				return err
			}
			for _, name := range defs.Names() {
				params, err := defs.Params(name)
				if err != nil {
					return err
				}
				fmt.Printf("%-16s %3d tracks, %2d sectors of %d bytes, %d byte blocks, %d entries, %d reserved\n",
					name, params.Tracks, params.SectorsPerTrack, params.SectorSize,
					params.BlockSize, params.DirectoryMax, params.ReservedTracks)
			}
			return nil
		},
	}
	return c
}

// file: cmd/mount/mount.go

// Package mount exposes a disk image as a read-only FUSE filesystem, so the
// files inside an image can be inspected with ordinary host tools.
package mount

import (
	"context"
	"fmt"
	"log"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/csegura/cpm-disk/pkg/cpmdisk"
)

// DiskFS is the root node of a mounted image.
type DiskFS struct {
	fs.Inode
	disk *cpmdisk.Disk
}

var _ = (fs.NodeOnAdder)((*DiskFS)(nil))

// OnAdd populates the mount with one child per file. Extra extents of a
// multi-extent file fold into a single node.
func (r *DiskFS) OnAdd(ctx context.Context) {
	slots, err := r.disk.ListEntries()
	if err != nil {
		log.Printf("failed to read directory: %v", err)
		return
	}

	seen := make(map[string]bool)
	ino := uint64(1000)
	for _, s := range slots {
		name := s.Entry.Filename()
		if seen[name] {
			continue
		}
		seen[name] = true

		node := &diskFile{disk: r.disk, name: s.Entry.Name, ftype: s.Entry.Type}
		child := r.NewPersistentInode(ctx, node, fs.StableAttr{Ino: ino})
		r.AddChild(name, child, true)
		ino++
	}
}

type diskFile struct {
	fs.Inode

	disk  *cpmdisk.Disk
	name  string
	ftype string
}

var _ = (fs.NodeOpener)((*diskFile)(nil))
var _ = (fs.NodeReader)((*diskFile)(nil))
var _ = (fs.NodeGetattrer)((*diskFile)(nil))

func (f *diskFile) Open(ctx context.Context, openFlags uint32) (fh fs.FileHandle, fuseFlags uint32, errno syscall.Errno) {
	return f, fuse.FOPEN_DIRECT_IO, 0
}

func (f *diskFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, err := f.disk.ReadFile(f.name, f.ftype)
	if err != nil {
		log.Printf("failed to read %s.%s: %v", f.name, f.ftype, err)
		return fuse.ReadResultData([]byte{}), syscall.EIO
	}

	if off > int64(len(content)) {
		off = int64(len(content))
	}
	end := off + int64(len(dest))
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return fuse.ReadResultData(content[off:end]), 0
}

func (f *diskFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	size, err := f.disk.FileSize(f.name, f.ftype)
	if err != nil {
		return syscall.EIO
	}
	out.Size = uint64(size)
	out.Mode = 0444
	return 0
}

// Mount mounts the image at mountPoint and serves until unmounted.
func Mount(disk *cpmdisk.Disk, mountPoint string, debug bool) error {
	opts := &fs.Options{}
	opts.Debug = debug

	server, err := fs.Mount(mountPoint, &DiskFS{disk: disk}, opts)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", mountPoint, err)
	}

	fmt.Printf("%s mounted at %s (read-only)\n", disk.Image, mountPoint)
	server.Wait()
	return nil
}

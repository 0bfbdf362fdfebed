// file: pkg/cpmdisk/errors.go

package cpmdisk

import "errors"

var (
	// Configuration
	ErrBadGeometry = errors.New("inconsistent disk geometry")

	// Capacity
	ErrDiskFull       = errors.New("not enough free space on the disk")
	ErrDirectoryFull  = errors.New("directory is full")
	ErrBlockOverflow  = errors.New("data exceeds block size")
	ErrTooManyExtents = errors.New("file needs more extents than the extent field can number")

	// Format
	ErrInvalidFilename = errors.New("invalid filename")
	ErrBadEntry        = errors.New("malformed directory entry")

	// Lookup
	ErrFileNotFound = errors.New("file not found")
	ErrFileExists   = errors.New("file already exists")
)

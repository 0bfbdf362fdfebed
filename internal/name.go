package internal

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SplitName derives a CP/M name and type from a host path's basename.
func SplitName(path string) (name, ftype string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), strings.TrimPrefix(ext, ".")
}

// HumanSize formats a byte count the way the directory listing prints it.
func HumanSize(n int) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%.2f Mb", float64(n)/(1<<20))
	}
	return fmt.Sprintf("%.2f Kb", float64(n)/(1<<10))
}

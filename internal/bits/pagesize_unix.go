//go:build unix

package bits

import "golang.org/x/sys/unix"

// PageSize returns the host's memory page size, which the editor uses as
// the alignment when a segment's own p_align is 0.
func PageSize() uint64 {
	return uint64(unix.Getpagesize())
}

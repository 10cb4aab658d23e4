//go:build !unix

package bits

// PageSize falls back to the common x86/x86-64 Linux page size on
// platforms golang.org/x/sys/unix does not cover; the editor only ever
// consults this when a segment's own p_align is unavailable.
func PageSize() uint64 {
	return 0x1000
}

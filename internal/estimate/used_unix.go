//go:build linux || darwin

package estimate

import "golang.org/x/sys/unix"

// UsedBytes returns the used bytes of the filesystem containing path, or 0
// if the syscall fails. Used as the denominator for progress percentages.
func UsedBytes(path string) int64 {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0
	}
	return int64(st.Blocks-st.Bfree) * int64(st.Bsize)
}

// UsedBytesTotal sums UsedBytes across the given mount roots. Roots are
// assumed to be distinct mounts, so the totals do not overlap.
func UsedBytesTotal(paths []string) int64 {
	var total int64
	for _, p := range paths {
		total += UsedBytes(p)
	}
	return total
}

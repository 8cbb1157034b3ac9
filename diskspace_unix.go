//go:build !windows

package pzip

import "golang.org/x/sys/unix"

// getDiskSpace reports free and total bytes on the filesystem containing
// path. Ported from the teacher's disk_space_unix.go.
func getDiskSpace(path string) (free uint64, total uint64, err error) {
	var stat unix.Statfs_t
	if err = unix.Statfs(path, &stat); err != nil {
		return
	}
	free = stat.Bavail * uint64(stat.Bsize)
	total = stat.Blocks * uint64(stat.Bsize)
	return
}

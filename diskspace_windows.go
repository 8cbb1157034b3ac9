//go:build windows

package pzip

import "golang.org/x/sys/windows"

// getDiskSpace reports free and total bytes on the volume containing path.
// Ported from the teacher's disk_space_windows.go.
func getDiskSpace(path string) (free uint64, total uint64, err error) {
	var avail, tot, freeAll uint64
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, err
	}
	err = windows.GetDiskFreeSpaceEx(p, &avail, &tot, &freeAll)
	return avail, tot, err
}

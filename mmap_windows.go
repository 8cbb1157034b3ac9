//go:build windows

package pzip

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mmapPlatform maps f read-only via CreateFileMapping + MapViewOfFile,
// matching the teacher's windows-specific split (disk_space_windows.go).
func mmapPlatform(f *os.File, size int64) (*mappedFile, error) {
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, uint32(size>>32), uint32(size), nil)
	if err != nil {
		return nil, err
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	return &mappedFile{
		data: data,
		unmap: func() error {
			if err := windows.UnmapViewOfFile(addr); err != nil {
				return err
			}
			return windows.CloseHandle(h)
		},
	}, nil
}

//go:build linux

package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps path read-only. The returned close func unmaps the region.
func mapFile(path string) ([]byte, func() error, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("shm: open %s: %w", path, err)
	}
	defer unix.Close(fd)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, nil, fmt.Errorf("shm: stat %s: %w", path, err)
	}
	if st.Size < int64(BufferSize) {
		return nil, nil, fmt.Errorf("shm: %s is %d bytes, want >= %d", path, st.Size, BufferSize)
	}

	data, err := unix.Mmap(fd, 0, BufferSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}
	return data, func() error { return unix.Munmap(data) }, nil
}

// CreateBuffer creates (or truncates) a writable reading region at path and
// maps it shared. Used by the feed tool that stands in for the platform
// sensor service.
func CreateBuffer(path string) ([]byte, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("shm: create %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(BufferSize)); err != nil {
		return nil, nil, fmt.Errorf("shm: truncate %s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, BufferSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}
	return data, func() error { return unix.Munmap(data) }, nil
}

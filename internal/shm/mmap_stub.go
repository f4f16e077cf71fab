//go:build !linux

package shm

import "fmt"

// Stub implementation for non-Linux platforms.

func mapFile(path string) ([]byte, func() error, error) {
	return nil, nil, fmt.Errorf("shm: mmap unsupported on this platform")
}

func CreateBuffer(path string) ([]byte, func() error, error) {
	return nil, nil, fmt.Errorf("shm: mmap unsupported on this platform")
}

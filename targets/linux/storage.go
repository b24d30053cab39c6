//go:build linux

package main

import (
	"os"
)

// fileBackend implements core.StorageBackend on a plain file. The whole
// image lives in memory and every write rewrites the file; the config
// layer's flush throttling keeps the write rate trivial.
type fileBackend struct {
	path string
	buf  []byte
}

func newFileBackend(path string, size int) (*fileBackend, error) {
	b := &fileBackend{path: path, buf: make([]byte, size)}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		copy(b.buf, data)
	case os.IsNotExist(err):
		// Fresh device image.
	default:
		return nil, err
	}
	return b, nil
}

func (b *fileBackend) ReadAt(addr int, buf []byte) error {
	copy(buf, b.buf[addr:])
	return nil
}

func (b *fileBackend) WriteAt(addr int, buf []byte) error {
	copy(b.buf[addr:], buf)
	return os.WriteFile(b.path, b.buf, 0o644)
}

func (b *fileBackend) Size() int {
	return len(b.buf)
}

package source

import (
	"fmt"
	"os"
)

// fileBackend mmaps a local file read-only and serves reads out of the
// mapping — the file descriptor itself can be closed right after mapping.
type fileBackend struct {
	data  []byte
	fd    *os.File
	count int
}

func newFileBackend(path string) (*fileBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := int(info.Size())
	if size == 0 {
		f.Close()
		return &fileBackend{data: nil}, nil
	}
	data, err := mmapFile(f.Fd(), size)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileBackend{data: data, fd: f}, nil
}

func (b *fileBackend) readRange(offset int64, buf []byte) (int, error) {
	b.count++
	if offset >= int64(len(b.data)) {
		return 0, nil
	}
	n := copy(buf, b.data[offset:])
	return n, nil
}

func (b *fileBackend) stats() string {
	return fmt.Sprintf("file(reads=%d)", b.count)
}

func (b *fileBackend) close() error {
	if b.data != nil {
		if err := munmapFile(b.data); err != nil {
			return err
		}
	}
	if b.fd != nil {
		return b.fd.Close()
	}
	return nil
}

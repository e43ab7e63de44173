package source

import "fmt"

// memoryBackend serves reads out of an in-memory byte slice — used by
// tests and by embedders that already hold the whole file in memory
// (spec.md §3 lists Memory alongside File/S3/GCS as a Source backend).
type memoryBackend struct {
	data  []byte
	count int
}

func newMemoryBackend(data []byte) *memoryBackend {
	return &memoryBackend{data: data}
}

func (b *memoryBackend) readRange(offset int64, buf []byte) (int, error) {
	b.count++
	if offset >= int64(len(b.data)) {
		return 0, nil
	}
	n := copy(buf, b.data[offset:])
	return n, nil
}

func (b *memoryBackend) stats() string {
	return fmt.Sprintf("memory(reads=%d)", b.count)
}

func (b *memoryBackend) close() error { return nil }

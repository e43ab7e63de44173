// Package source abstracts random-access byte reads over heterogeneous
// backends (local filesystem, S3-compatible object storage, Google Cloud
// Storage, or an in-memory buffer for tests), with a small chunked cache
// in front of the small, clustered reads TIFF/COG header parsing does.
package source

import (
	"fmt"
	"strings"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// chunkSize matches GDAL's CPL_VSIL_CURL_CHUNK_SIZE default: large enough
// to absorb a TIFF header and a handful of IFD entries in one round trip,
// small enough that caching a few hundred of them is cheap.
const chunkSize = 16384

// maxCachedChunks bounds the page cache. Header/IFD traffic for a COG
// typically fits comfortably within this; pixel data never goes through
// the cache (see ReadExactDirect), so the cap rarely matters in practice.
const maxCachedChunks = 100

// backend is the minimal byte-range read contract each storage kind must
// satisfy. A single call must either fill buf completely or return the
// number of bytes actually available (a short read signals EOF, not an
// error) — analogous to io.ReaderAt except a short read is not itself a
// failure; the cache is responsible for latching EOF position.
type backend interface {
	readRange(offset int64, buf []byte) (n int, err error)
	stats() string
	close() error
}

// Source is the public entry point: a byte source plus its chunk cache and
// read-count bookkeeping. A Source is owned by exactly one COG and is not
// safe to share across concurrently-running requests (see spec.md §5).
type Source struct {
	b     backend
	cache *chunkCache
	reads int64
}

// Open dispatches on a path spec: "/vsis3/<bucket>/<key>" for S3-compatible
// storage, "/vsigs/<bucket>/<object>" for Google Cloud Storage, and
// anything else as a local filesystem path.
func Open(spec string) (*Source, error) {
	var b backend
	var err error
	switch {
	case strings.HasPrefix(spec, "/vsis3/"):
		b, err = newS3Backend(strings.TrimPrefix(spec, "/vsis3/"))
	case strings.HasPrefix(spec, "/vsigs/"):
		b, err = newGCSBackend(strings.TrimPrefix(spec, "/vsigs/"))
	default:
		b, err = newFileBackend(spec)
	}
	if err != nil {
		return nil, err
	}
	return &Source{b: b, cache: newChunkCache()}, nil
}

// NewMemory wraps an in-memory byte slice as a Source, for tests and for
// embedders that already hold the whole file in memory.
func NewMemory(data []byte) *Source {
	return &Source{b: newMemoryBackend(data), cache: newChunkCache()}
}

// Close releases backend resources (closes file handles, unmaps memory).
func (s *Source) Close() error { return s.b.close() }

// ReadExact fills buf via the 16 KiB chunk cache, failing with a
// KindSourceError if the read extends past the recorded end of the
// source.
func (s *Source) ReadExact(offset int64, buf []byte) error {
	return s.cache.readExact(s, offset, buf)
}

// ReadExactDirect issues one uncached underlying read for the whole range
// — used for pixel payloads, which are typically large, one-shot reads
// that would pollute the header cache for no benefit.
func (s *Source) ReadExactDirect(offset int64, buf []byte) error {
	n, err := s.underlyingReadRange(offset, buf)
	if err != nil {
		return cogerr.Wrap(cogerr.KindIO, err, "direct read of %d bytes at offset %d", len(buf), offset)
	}
	if n < len(buf) {
		return cogerr.New(cogerr.KindIO, "unexpected EOF: direct read of %d bytes at offset %d returned only %d", len(buf), offset, n)
	}
	return nil
}

// GetStats returns a human-readable counter summary, for observability and
// tests that assert on request/cache-hit counts.
func (s *Source) GetStats() string {
	return fmt.Sprintf("reads=%d cached_pages=%d backend=%s", s.reads, s.cache.len(), s.b.stats())
}

// underlyingReadRange issues one backend read and counts it — used by both
// the cached and direct paths so GetStats reports every round trip.
func (s *Source) underlyingReadRange(offset int64, buf []byte) (int, error) {
	s.reads++
	return s.b.readRange(offset, buf)
}

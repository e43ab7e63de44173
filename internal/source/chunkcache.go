package source

import "github.com/kallio-maps/cogtile/internal/cogerr"

// chunkCache holds fixed-size pages keyed by 16 KiB-aligned chunk index,
// plus the source length once a short read reveals it. Eviction is
// intentionally simple: when the cap is reached, one page is evicted at
// random (Go's unordered map iteration gives this for free) — header/IFD
// traffic for a single COG fits comfortably inside the cap in practice, so
// the eviction policy rarely matters; tests rely on hit counts, not on any
// particular eviction order.
type chunkCache struct {
	pages     map[int64][]byte
	sourceLen int64
	haveLen   bool
}

func newChunkCache() *chunkCache {
	return &chunkCache{pages: make(map[int64][]byte)}
}

func (c *chunkCache) len() int { return len(c.pages) }

// readExact fills buf from the chunk cache, fetching and caching any
// missing chunks through src's underlying backend.
func (c *chunkCache) readExact(src *Source, offset int64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	start := offset / chunkSize
	end := (offset + int64(len(buf)) - 1) / chunkSize

	for chunkID := start; chunkID <= end; chunkID++ {
		page, err := c.getChunk(src, chunkID)
		if err != nil {
			return err
		}
		chunkStart := chunkID * chunkSize
		// Overlap between [chunkStart, chunkStart+len(page)) and
		// [offset, offset+len(buf)).
		loBound := chunkStart
		if offset > loBound {
			loBound = offset
		}
		hiBound := chunkStart + int64(len(page))
		if offset+int64(len(buf)) < hiBound {
			hiBound = offset + int64(len(buf))
		}
		if loBound >= hiBound {
			continue
		}
		copy(buf[loBound-offset:hiBound-offset], page[loBound-chunkStart:hiBound-chunkStart])
	}

	if c.haveLen && offset+int64(len(buf)) > c.sourceLen {
		return cogerr.New(cogerr.KindSourceError, "read of %d bytes at offset %d extends past end of source (len=%d)", len(buf), offset, c.sourceLen)
	}
	return nil
}

func (c *chunkCache) getChunk(src *Source, chunkID int64) ([]byte, error) {
	if page, ok := c.pages[chunkID]; ok {
		return page, nil
	}

	if len(c.pages) >= maxCachedChunks {
		for k := range c.pages {
			delete(c.pages, k)
			break
		}
	}

	page := make([]byte, chunkSize)
	n, err := src.underlyingReadRange(chunkID*chunkSize, page)
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindIO, err, "reading chunk %d", chunkID)
	}
	if n < chunkSize {
		eofPos := chunkID*chunkSize + int64(n)
		if c.haveLen && c.sourceLen != eofPos {
			return nil, cogerr.New(cogerr.KindSourceError, "reached EOF a second time at a different position: first=%d, now=%d", c.sourceLen, eofPos)
		}
		c.sourceLen = eofPos
		c.haveLen = true
		page = page[:n]
	}
	c.pages[chunkID] = page
	return page, nil
}

package source

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// gcsBackend issues bearer-authenticated Range GETs against the GCS
// JSON API's media download endpoint.
type gcsBackend struct {
	client *http.Client
	tokens *gcsTokenSource
	bucket string
	object string
	count  int
}

func newGCSBackend(spec string) (*gcsBackend, error) {
	bucket, object, ok := strings.Cut(spec, "/")
	if !ok {
		return nil, cogerr.New(cogerr.KindInvalidData, "failed to extract bucket from /vsigs/%s", spec)
	}
	tokens, err := newGCSTokenSource()
	if err != nil {
		return nil, err
	}
	return &gcsBackend{client: &http.Client{}, tokens: tokens, bucket: bucket, object: object}, nil
}

func (b *gcsBackend) readRange(offset int64, buf []byte) (int, error) {
	b.count++
	token, err := b.tokens.token()
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodGet, gcsObjectURL(b.bucket, b.object), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+int64(len(buf))-1))

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		body, _ := io.ReadAll(resp.Body)
		return 0, cogerr.New(cogerr.KindOther, "GCS request failed, status=%d: %s", resp.StatusCode, body)
	}
	return io.ReadFull(resp.Body, buf)
}

func (b *gcsBackend) stats() string {
	return fmt.Sprintf("gcs(reads=%d)", b.count)
}

func (b *gcsBackend) close() error { return nil }

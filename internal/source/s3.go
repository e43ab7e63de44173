package source

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// s3Backend issues SigV4-signed Range GETs against an S3-compatible
// endpoint. The endpoint is hard-coded to a plain HTTP host suited to a
// local minio instance for testing — spec.md §6 flags this as an
// identified integration point for a real deployment (TLS, AWS regional
// endpoints, etc).
type s3Backend struct {
	client    *http.Client
	endpoint  string // "host:port"
	bucket    string
	key       string
	region    string
	accessKey string
	secretKey string
	count     int
}

func newS3Backend(spec string) (*s3Backend, error) {
	bucket, key, ok := strings.Cut(spec, "/")
	if !ok {
		return nil, cogerr.New(cogerr.KindInvalidData, "failed to extract bucket from /vsis3/%s", spec)
	}
	return &s3Backend{
		client:    &http.Client{},
		endpoint:  envOr("AWS_S3_ENDPOINT", "localhost:9000"),
		bucket:    bucket,
		key:       key,
		region:    envOr("AWS_DEFAULT_REGION", defaultRegion),
		accessKey: envOr("AWS_ACCESS_KEY_ID", defaultAccessKey),
		secretKey: envOr("AWS_SECRET_ACCESS_KEY", defaultSecretKey),
	}, nil
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func (b *s3Backend) readRange(offset int64, buf []byte) (int, error) {
	b.count++
	uri := "/" + b.bucket + "/" + b.key
	url := "http://" + b.endpoint + uri

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	hdrs := computeSignatureHeaders(time.Now().UTC(), http.MethodGet, uri, b.endpoint, b.region, b.accessKey, b.secretKey)
	req.Host = hdrs.host
	req.Header.Set("Host", hdrs.host)
	req.Header.Set("x-amz-date", hdrs.amzDate)
	req.Header.Set("Authorization", hdrs.authorization)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+int64(len(buf))-1))

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// We require explicit 206 (Partial Content): a server that doesn't
	// honour Range requests would otherwise reply 200 with the whole
	// object, which this client doesn't want or support.
	if resp.StatusCode != http.StatusPartialContent {
		body, _ := io.ReadAll(resp.Body)
		return 0, cogerr.New(cogerr.KindOther, "S3 request failed, status=%d: %s", resp.StatusCode, body)
	}
	return io.ReadFull(resp.Body, buf)
}

func (b *s3Backend) stats() string {
	return fmt.Sprintf("s3(reads=%d)", b.count)
}

func (b *s3Backend) close() error { return nil }

package source

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Default credentials for local development against a minio instance,
// matching the fixtures this signer's tests are built against.
const (
	defaultAccessKey = "V5NSAQUNLNZ5AP7VLLS6"
	defaultSecretKey = "bu0K3n0kEag8GKfckKPBg4Vu8O8EuYu2UO/wNfqI"
	defaultRegion    = "us-east-1"
)

// sigV4Headers are the three headers an S3-compatible GET request must
// carry to authenticate with AWS Signature Version 4.
type sigV4Headers struct {
	host          string
	amzDate       string
	authorization string
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// canonicalRequest builds the SigV4 canonical request for a bare GET with
// no query string and a single "host" signed header — this client never
// needs additional headers signed, since auth is the only thing the
// Authorization header protects here.
func canonicalRequest(method, uri, host string) string {
	return method + "\n" +
		uri + "\n" +
		"\n" + // canonical query string (always empty)
		"host:" + host + "\n" +
		"\n" + // end of canonical headers
		"host" + "\n" + // signed headers
		sha256Hex("") // GET has no body
}

func scope(date, region string) string {
	return date + "/" + region + "/s3/aws4_request"
}

func stringToSign(t time.Time, method, uri, host, region string) string {
	amzDate := t.Format("20060102T150405Z")
	date := t.Format("20060102")
	return "AWS4-HMAC-SHA256\n" +
		amzDate + "\n" +
		scope(date, region) + "\n" +
		sha256Hex(canonicalRequest(method, uri, host))
}

func signingKey(t time.Time, secretKey, region string) []byte {
	date := t.Format("20060102")
	kDate := hmacSHA256([]byte("AWS4"+secretKey), date)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, "s3")
	return hmacSHA256(kService, "aws4_request")
}

// computeSignatureHeaders signs a GET request for uri against host,
// returning the Host/x-amz-date/Authorization header values to attach.
func computeSignatureHeaders(t time.Time, method, uri, host, region, accessKey, secretKey string) sigV4Headers {
	amzDate := t.Format("20060102T150405Z")
	sts := stringToSign(t, method, uri, host, region)
	sig := hmacSHA256(signingKey(t, secretKey, region), sts)
	auth := "AWS4-HMAC-SHA256 Credential=" + accessKey + "/" + scope(t.Format("20060102"), region) +
		", SignedHeaders=host, Signature=" + hex.EncodeToString(sig)
	return sigV4Headers{host: host, amzDate: amzDate, authorization: auth}
}

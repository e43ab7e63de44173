package source

import (
	"testing"
	"time"
)

func TestCanonicalRequest(t *testing.T) {
	got := canonicalRequest("GET", "/public/example_1_cog_deflate.tif", "localhost:9000")
	want := "GET\n/public/example_1_cog_deflate.tif\n\nhost:localhost:9000\n\nhost\ne3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("canonicalRequest() =\n%q\nwant\n%q", got, want)
	}
}

func TestStringToSign(t *testing.T) {
	tm := time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC)
	got := stringToSign(tm, "GET", "/public/example_1_cog_deflate.tif", "localhost:9000", "us-east-1")
	want := "AWS4-HMAC-SHA256\n20240928T000000Z\n20240928/us-east-1/s3/aws4_request\nc32076749fe36e2e6324aa0d37ef72c39f169b442d05503d09c2a5c9131ea9d3"
	if got != want {
		t.Errorf("stringToSign() =\n%q\nwant\n%q", got, want)
	}
}

func TestComputeSignatureHeaders(t *testing.T) {
	tm := time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC)
	hdrs := computeSignatureHeaders(tm, "GET", "/public/example_1_cog_deflate.tif", "localhost:9000",
		"us-east-1", "V5NSAQUNLNZ5AP7VLLS6", "bu0K3n0kEag8GKfckKPBg4Vu8O8EuYu2UO/wNfqI")

	if hdrs.host != "localhost:9000" {
		t.Errorf("host = %q, want %q", hdrs.host, "localhost:9000")
	}
	if hdrs.amzDate != "20240928T000000Z" {
		t.Errorf("amzDate = %q, want %q", hdrs.amzDate, "20240928T000000Z")
	}
	want := "AWS4-HMAC-SHA256 Credential=V5NSAQUNLNZ5AP7VLLS6/20240928/us-east-1/s3/aws4_request, SignedHeaders=host, Signature=4183485cce9a6183907a33af3dc89872f944691577926b69616fb4a4623e1212"
	if hdrs.authorization != want {
		t.Errorf("authorization =\n%q\nwant\n%q", hdrs.authorization, want)
	}
}

package compress

import "testing"

func TestDecompressRaw(t *testing.T) {
	c := &Compression{codec: Raw}
	data := make([]byte, 2*2*3)
	for i := range data {
		data[i] = byte(i)
	}
	out, err := c.Decompress(data, 2, 2, 3, 1)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(out) != string(data) {
		t.Fatalf("Raw codec should pass data through unchanged")
	}
}

func TestDecompressRawWrongSize(t *testing.T) {
	c := &Compression{codec: Raw}
	if _, err := c.Decompress(make([]byte, 5), 2, 2, 3, 1); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestDecompressPackedRaw(t *testing.T) {
	c := &Compression{codec: Raw}
	// 2x2 mask tile, 1 band: 4 bits packed into 1 byte.
	data := []byte{0b1010_0000}
	out, err := c.DecompressPacked(data, 1)
	if err != nil {
		t.Fatalf("DecompressPacked: %v", err)
	}
	if len(out) != 1 || out[0] != data[0] {
		t.Fatalf("got %v, want passthrough of %v", out, data)
	}
}

func TestDecompressPackedJPEGUnsupported(t *testing.T) {
	c := &Compression{codec: JPEG}
	if _, err := c.DecompressPacked([]byte{0}, 1); err == nil {
		t.Fatal("expected error: JPEG cannot decode packed bitmask tiles")
	}
}

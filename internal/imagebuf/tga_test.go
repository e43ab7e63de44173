package imagebuf

import (
	"path/filepath"
	"testing"
)

func TestTGARoundTripRGBForcesOpaqueAlpha(t *testing.T) {
	img := New(3, 2, 3, false, Uint8)
	for i := range img.Data {
		img.Data[i] = byte(i * 11 % 256)
	}

	path := filepath.Join(t.TempDir(), "out.tga")
	if err := WriteTGA(path, img); err != nil {
		t.Fatalf("WriteTGA: %v", err)
	}
	got, err := ReadTGA(path)
	if err != nil {
		t.Fatalf("ReadTGA: %v", err)
	}
	if got.Width != img.Width || got.Height != img.Height || got.NBands != 4 {
		t.Fatalf("dimensions mismatch: got %dx%dx%d", got.Width, got.Height, got.NBands)
	}
	for p := 0; p < img.Width*img.Height; p++ {
		for b := 0; b < 3; b++ {
			if got.Data[p*4+b] != img.Data[p*3+b] {
				t.Fatalf("pixel %d band %d: got %d, want %d", p, b, got.Data[p*4+b], img.Data[p*3+b])
			}
		}
		if got.Data[p*4+3] != 255 {
			t.Fatalf("pixel %d: alpha forced to %d, want 255", p, got.Data[p*4+3])
		}
	}
}

func TestTGARoundTripRGBA(t *testing.T) {
	img := New(2, 2, 4, true, Uint8)
	for i := range img.Data {
		img.Data[i] = byte(i * 13 % 256)
	}

	path := filepath.Join(t.TempDir(), "out.tga")
	if err := WriteTGA(path, img); err != nil {
		t.Fatalf("WriteTGA: %v", err)
	}
	got, err := ReadTGA(path)
	if err != nil {
		t.Fatalf("ReadTGA: %v", err)
	}
	if string(got.Data) != string(img.Data) {
		t.Fatalf("round trip data mismatch")
	}
}

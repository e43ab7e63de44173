package imagebuf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPPMRoundTrip(t *testing.T) {
	img := New(4, 3, 3, false, Uint8)
	for i := range img.Data {
		img.Data[i] = byte(i * 7 % 256)
	}

	path := filepath.Join(t.TempDir(), "out.ppm")
	if err := WritePPM(path, img); err != nil {
		t.Fatalf("WritePPM: %v", err)
	}
	got, err := ReadPPM(path)
	if err != nil {
		t.Fatalf("ReadPPM: %v", err)
	}
	if got.Width != img.Width || got.Height != img.Height || got.NBands != img.NBands {
		t.Fatalf("dimensions mismatch: got %dx%dx%d, want %dx%dx%d", got.Width, got.Height, got.NBands, img.Width, img.Height, img.NBands)
	}
	if string(got.Data) != string(img.Data) {
		t.Fatalf("pixel data mismatch")
	}
}

func TestWritePPMRejectsNonRGBUint8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ppm")
	if err := WritePPM(path, New(2, 2, 4, true, Uint8)); err == nil {
		t.Fatal("expected error for 4-band image")
	}
	if err := WritePPM(path, New(2, 2, 3, false, Float32)); err == nil {
		t.Fatal("expected error for float32 image")
	}
}

func TestReadPPMRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ppm")
	if err := os.WriteFile(path, []byte("P5 1 1 255\n\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPPM(path); err == nil {
		t.Fatal("expected error for P5 magic")
	}
}

package imagebuf

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestStackAppendsAlphaBand(t *testing.T) {
	base := New(2, 1, 3, false, Uint8)
	copy(base.Data, []byte{10, 20, 30, 40, 50, 60})
	alpha := New(2, 1, 1, false, Uint8)
	copy(alpha.Data, []byte{0, 255})

	out, err := Stack(base, alpha)
	if err != nil {
		t.Fatalf("Stack: %v", err)
	}
	if !out.HasAlpha || out.NBands != 4 {
		t.Fatalf("out.HasAlpha=%v NBands=%d, want true/4", out.HasAlpha, out.NBands)
	}
	want := []byte{10, 20, 30, 0, 40, 50, 60, 255}
	if string(out.Data) != string(want) {
		t.Fatalf("out.Data = %v, want %v", out.Data, want)
	}
}

func TestStackRejectsAlreadyHasAlpha(t *testing.T) {
	base := New(1, 1, 4, true, Uint8)
	alpha := New(1, 1, 1, false, Uint8)
	if _, err := Stack(base, alpha); err == nil {
		t.Fatal("expected error stacking onto an already-alpha base")
	}
}

func putFloat32(data []byte, i int, v float32) {
	binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
}

func TestToRGBNormalizesFloat32(t *testing.T) {
	img := New(1, 1, 1, false, Float32)
	putFloat32(img.Data, 0, 5.0)

	out, err := img.ToRGB([3]int{0, 0, 0}, 0.0, 10.0)
	if err != nil {
		t.Fatalf("ToRGB: %v", err)
	}
	if out.DType != Uint8 || out.NBands != 3 {
		t.Fatalf("out dtype/nbands = %v/%d, want Uint8/3", out.DType, out.NBands)
	}
	want := byte(127) // (5-0)/10*255 floors to 127
	for i, v := range out.Data {
		if v != want {
			t.Fatalf("band %d = %d, want %d", i, v, want)
		}
	}
}

func TestToRGBRejectsNonFloat32(t *testing.T) {
	img := New(1, 1, 3, false, Uint8)
	if _, err := img.ToRGB([3]int{0, 1, 2}, 0, 255); err == nil {
		t.Fatal("expected error for non-Float32 source")
	}
}

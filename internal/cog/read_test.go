package cog

import (
	"testing"

	"github.com/kallio-maps/cogtile/internal/imagebuf"
)

func TestUnpackBitmask(t *testing.T) {
	out := unpackBitmask([]byte{0b1010_0001})
	want := []byte{255, 0, 255, 0, 0, 0, 0, 255}
	if len(out) != 8 {
		t.Fatalf("len(out) = %d, want 8", len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("bit %d: got %d, want %d", i, out[i], want[i])
		}
	}
}

func TestPasteTileOverlap(t *testing.T) {
	// One 2x2 tile at overview offset (2,2) pasted into a 2x2 output rect
	// covering [1,3)x[1,3): only the tile's top-left pixel, at overview
	// position (2,2), falls inside the output rect.
	out := imagebuf.New(2, 2, 1, false, imagebuf.Uint8)
	tileData := []byte{1, 2, 3, 4}
	outRect := imagebuf.ImageRect{JFrom: 1, JTo: 3, IFrom: 1, ITo: 3}
	tileRect := imagebuf.ImageRect{JFrom: 2, JTo: 4, IFrom: 2, ITo: 4}
	pasteTile(out, tileData, outRect, tileRect, 2, 1)

	if out.Data[1*2+1] != 1 {
		t.Errorf("out.Data at local (1,1) = %d, want 1 (tile's top-left sample)", out.Data[1*2+1])
	}
	for i, v := range out.Data {
		if i != 3 && v != 0 {
			t.Errorf("out.Data[%d] = %d, want 0 outside the overlap", i, v)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	cases := map[[2]int]int{
		{4, 2}: 2,
		{5, 2}: 3,
		{0, 2}: 0,
		{1, 2}: 1,
	}
	for in, want := range cases {
		if got := ceilDiv(in[0], in[1]); got != want {
			t.Errorf("ceilDiv(%d,%d) = %d, want %d", in[0], in[1], got, want)
		}
	}
}

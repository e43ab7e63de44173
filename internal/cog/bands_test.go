package cog

import (
	"testing"

	"github.com/kallio-maps/cogtile/internal/tiff"
)

func TestDeriveBandsBlackIsZero(t *testing.T) {
	b, err := deriveBands(uint64(tiff.PhotometricBlackIsZero), 1, nil)
	if err != nil {
		t.Fatalf("deriveBands: %v", err)
	}
	if b.NBands != 1 || b.HasAlpha {
		t.Errorf("got %+v, want NBands=1 HasAlpha=false", b)
	}
}

func TestDeriveBandsRGBNoAlpha(t *testing.T) {
	b, err := deriveBands(uint64(tiff.PhotometricRGB), 3, nil)
	if err != nil {
		t.Fatalf("deriveBands: %v", err)
	}
	if b.NBands != 3 || b.HasAlpha {
		t.Errorf("got %+v, want NBands=3 HasAlpha=false", b)
	}
}

func TestDeriveBandsRGBWithAlpha(t *testing.T) {
	b, err := deriveBands(uint64(tiff.PhotometricRGB), 4, []uint64{2})
	if err != nil {
		t.Fatalf("deriveBands: %v", err)
	}
	if b.NBands != 4 || !b.HasAlpha {
		t.Errorf("got %+v, want NBands=4 HasAlpha=true", b)
	}
}

func TestDeriveBandsRGBWrongExtraSampleRejected(t *testing.T) {
	if _, err := deriveBands(uint64(tiff.PhotometricRGB), 4, []uint64{1}); err == nil {
		t.Fatal("expected error for associated-alpha (ExtraSamples=1), which this client doesn't support")
	}
}

func TestDeriveBandsMask(t *testing.T) {
	b, err := deriveBands(uint64(tiff.PhotometricMask), 1, nil)
	if err != nil {
		t.Fatalf("deriveBands: %v", err)
	}
	if b.NBands != 1 || !b.HasAlpha {
		t.Errorf("got %+v, want NBands=1 HasAlpha=true", b)
	}
}

func TestDeriveBandsUnsupportedPhotometric(t *testing.T) {
	if _, err := deriveBands(99, 1, nil); err == nil {
		t.Fatal("expected error for unsupported photometric interpretation")
	}
}

package cog

import "testing"

func TestDecodeGeotransform(t *testing.T) {
	tiePoints := []float64{0, 0, 0, 100.0, 200.0, 0}
	pixelScale := []float64{0.5, 0.5, 0}
	gt, err := decodeGeotransform(tiePoints, pixelScale)
	if err != nil {
		t.Fatalf("decodeGeotransform: %v", err)
	}
	if gt.UlX != 100.0 || gt.UlY != 200.0 {
		t.Errorf("UL = (%v,%v), want (100,200)", gt.UlX, gt.UlY)
	}
	if gt.XRes != 0.5 || gt.YRes != -0.5 {
		t.Errorf("res = (%v,%v), want (0.5,-0.5) (y negated)", gt.XRes, gt.YRes)
	}
	if got := gt.PixelResolution(); got != 0.5 {
		t.Errorf("PixelResolution() = %v, want 0.5", got)
	}
}

func TestDecodeGeotransformRejectsNonNorthUp(t *testing.T) {
	tiePoints := []float64{1, 0, 0, 100.0, 200.0, 0}
	pixelScale := []float64{0.5, 0.5, 0}
	if _, err := decodeGeotransform(tiePoints, pixelScale); err == nil {
		t.Fatal("expected error for non-zero tie point origin")
	}
}

func TestDecodeGeotransformRejectsVerticalCRS(t *testing.T) {
	tiePoints := []float64{0, 0, 0, 100.0, 200.0, 1}
	pixelScale := []float64{0.5, 0.5, 0}
	if _, err := decodeGeotransform(tiePoints, pixelScale); err == nil {
		t.Fatal("expected error for non-zero tie point elevation")
	}
}

func TestDecodeUnit(t *testing.T) {
	if u, err := decodeUnit(9001); err != nil || u != UnitLinearMeter {
		t.Errorf("decodeUnit(9001) = %v, %v, want UnitLinearMeter, nil", u, err)
	}
	if u, err := decodeUnit(9102); err != nil || u != UnitDegree {
		t.Errorf("decodeUnit(9102) = %v, %v, want UnitDegree, nil", u, err)
	}
	if _, err := decodeUnit(1234); err == nil {
		t.Error("expected error for unsupported unit code")
	}
}

func TestPixelResolutionInMetersConvertsDegrees(t *testing.T) {
	g := Georeference{
		Unit:         UnitDegree,
		Geotransform: Geotransform{XRes: 1.0, YRes: -1.0},
	}
	got := g.PixelResolutionInMeters()
	want := lonToMetersEquator(1.0)
	if got != want {
		t.Errorf("PixelResolutionInMeters() = %v, want %v", got, want)
	}
	if want <= 1.0 {
		t.Errorf("one degree at the equator should be much more than one meter, got %v", want)
	}
}

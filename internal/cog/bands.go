package cog

import (
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/tiff"
)

// BandsInterpretation is the number of samples per pixel and whether the
// last one is an alpha channel, derived from SamplesPerPixel,
// ExtraSamples and PhotometricInterpretation (TIFF 6.0 §18).
type BandsInterpretation struct {
	NBands   int
	HasAlpha bool
}

// deriveBands applies the rules for each photometric interpretation this
// client understands. BlackIsZero carries no alpha; Rgb/YCbCr allow one
// unassociated-alpha extra sample; Mask is always a single alpha band.
func deriveBands(photometric uint64, nbands int, extraSamples []uint64) (BandsInterpretation, error) {
	switch photometric {
	case uint64(tiff.PhotometricBlackIsZero):
		if len(extraSamples) != 0 {
			for _, v := range extraSamples {
				if v != 0 {
					return BandsInterpretation{}, cogerr.New(cogerr.KindOther,
						"BlackIsZero expects no non-zero ExtraSamples, got %v", extraSamples)
				}
			}
		}
		return BandsInterpretation{NBands: nbands, HasAlpha: false}, nil

	case uint64(tiff.PhotometricRGB), uint64(tiff.PhotometricYCbCr):
		switch {
		case len(extraSamples) == 0:
			if nbands != 3 {
				return BandsInterpretation{}, cogerr.New(cogerr.KindOther,
					"RGB/YCbCr with no ExtraSamples requires nbands=3, got %d", nbands)
			}
			return BandsInterpretation{NBands: nbands, HasAlpha: false}, nil
		case len(extraSamples) == 1 && extraSamples[0] == 2:
			if nbands != 4 {
				return BandsInterpretation{}, cogerr.New(cogerr.KindOther,
					"RGB/YCbCr with unassociated alpha requires nbands=4, got %d", nbands)
			}
			return BandsInterpretation{NBands: nbands, HasAlpha: true}, nil
		default:
			return BandsInterpretation{}, cogerr.New(cogerr.KindOther,
				"unsupported ExtraSamples shape %v for RGB/YCbCr", extraSamples)
		}

	case uint64(tiff.PhotometricMask):
		if nbands != 1 || len(extraSamples) != 0 {
			return BandsInterpretation{}, cogerr.New(cogerr.KindOther,
				"Mask overview requires nbands=1 and no ExtraSamples, got nbands=%d extra=%v", nbands, extraSamples)
		}
		return BandsInterpretation{NBands: 1, HasAlpha: true}, nil

	default:
		return BandsInterpretation{}, cogerr.New(cogerr.KindUnsupportedTagValue, "unsupported photometric interpretation %d", photometric)
	}
}

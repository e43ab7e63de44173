package tiff

import (
	"strings"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// KeyID is a GeoTIFF GeoKey ID (GeoTIFF spec, version 1, revision 1.0/1.1).
type KeyID uint16

const (
	KeyGTModelType       KeyID = 1024
	KeyGTRasterType      KeyID = 1025
	KeyGTCitation        KeyID = 1026
	KeyGeodeticCRS       KeyID = 2048
	KeyGeogCitation      KeyID = 2049
	KeyGeodeticLinearUnits  KeyID = 2052
	KeyGeodeticAngularUnits KeyID = 2054
	KeyProjectedCRS      KeyID = 3072
	KeyProjLinearUnits   KeyID = 3076
)

// geoTagLocation values in a GeoKeyEntry's TIFFTagLocation field: where the
// value for this key actually lives.
const (
	geoTagInline     = 0
	geoTagDoubleParams = uint16(TagGeoDoubleParamsTag)
	geoTagAsciiParams  = uint16(TagGeoAsciiParamsTag)
	geoTagDirectory    = uint16(TagGeoKeyDirectoryTag)
)

// GeoKeyValue holds a decoded GeoKey's value — exactly one of these is set.
type GeoKeyValue struct {
	Short []uint16
	Ascii string
	Double []float64
}

// GeoKeyEntry is one (KeyID, value) pair from a GeoKey directory.
type GeoKeyEntry struct {
	ID    KeyID
	Value GeoKeyValue
}

// GeoKeyDirectory is the decoded GeoKeyDirectoryTag: an ordered list of
// (KeyID, value) pairs, values resolved either inline or via
// GeoDoubleParamsTag/GeoAsciiParamsTag/the directory's own short array.
type GeoKeyDirectory struct {
	Entries []GeoKeyEntry
}

// Get returns the entry for id, if present.
func (d *GeoKeyDirectory) Get(id KeyID) (*GeoKeyEntry, bool) {
	for i := range d.Entries {
		if d.Entries[i].ID == id {
			return &d.Entries[i], true
		}
	}
	return nil, false
}

// RequireShort returns the scalar Short value of a geokey.
func (d *GeoKeyDirectory) RequireShort(id KeyID) (uint16, error) {
	e, ok := d.Get(id)
	if !ok {
		return 0, cogerr.New(cogerr.KindRequiredGeoKeyNotFound, "geokey %d", id)
	}
	if len(e.Value.Short) != 1 {
		return 0, cogerr.New(cogerr.KindGeoKeyHasWrongType, "geokey %d is not a scalar short", id)
	}
	return e.Value.Short[0], nil
}

// ParseGeoKeyDirectory decodes the GeoKeyDirectoryTag short array, resolving
// references into GeoDoubleParamsTag/GeoAsciiParamsTag as needed.
//
// Directory layout (GeoTIFF spec §2.4): a 4-short header
// (KeyDirectoryVersion, KeyRevision, MinorRevision, NumberOfKeys) followed
// by NumberOfKeys 4-short entries of (KeyID, TIFFTagLocation, Count,
// Value_Offset).
func ParseGeoKeyDirectory(ifd *IFD, src Source) (*GeoKeyDirectory, error) {
	dirShorts, err := ifd.RequireUint64Slice(src, TagGeoKeyDirectoryTag)
	if err != nil {
		return nil, err
	}
	if len(dirShorts) < 4 {
		return nil, cogerr.New(cogerr.KindNotACOG, "GeoKeyDirectoryTag has fewer than 4 shorts")
	}
	numKeys := dirShorts[3]
	dir := &GeoKeyDirectory{}
	for i := uint64(0); i < numKeys; i++ {
		base := 4 + i*4
		if base+4 > uint64(len(dirShorts)) {
			return nil, cogerr.New(cogerr.KindNotACOG, "GeoKeyDirectoryTag truncated at key %d", i)
		}
		id := KeyID(dirShorts[base])
		tagLocation := uint16(dirShorts[base+1])
		count := dirShorts[base+2]
		valueOffset := dirShorts[base+3]

		entry := GeoKeyEntry{ID: id}
		switch tagLocation {
		case geoTagInline:
			if count != 1 {
				return nil, cogerr.New(cogerr.KindNotACOG, "geokey %d has TIFFTagLocation=0 but count=%d", id, count)
			}
			entry.Value = GeoKeyValue{Short: []uint16{uint16(valueOffset)}}
		case geoTagDoubleParams:
			vals, err := ifd.RequireFloat64Slice(src, TagGeoDoubleParamsTag)
			if err != nil {
				return nil, err
			}
			end := uint64(valueOffset) + uint64(count)
			if uint64(valueOffset) > uint64(len(vals)) || end > uint64(len(vals)) {
				return nil, cogerr.New(cogerr.KindNotACOG, "geokey %d: out-of-bounds GeoDoubleParamsTag reference", id)
			}
			entry.Value = GeoKeyValue{Double: vals[valueOffset:end]}
		case geoTagAsciiParams:
			val, rerr := resolveAscii(ifd, src)
			if rerr != nil {
				return nil, rerr
			}
			end := uint64(valueOffset) + uint64(count)
			if uint64(valueOffset) > uint64(len(val)) || end > uint64(len(val)) {
				return nil, cogerr.New(cogerr.KindNotACOG, "geokey %d: out-of-bounds GeoAsciiParamsTag reference", id)
			}
			s := val[valueOffset:end]
			// ASCII geokeys use '|' as the inter-string delimiter instead of
			// NUL (GeoTIFF spec §B.1.4); strip the trailing one.
			s = strings.TrimSuffix(s, "|")
			entry.Value = GeoKeyValue{Ascii: s}
		case geoTagDirectory:
			end := uint64(valueOffset) + uint64(count)
			if uint64(valueOffset) > uint64(len(dirShorts)) || end > uint64(len(dirShorts)) {
				return nil, cogerr.New(cogerr.KindNotACOG, "geokey %d: out-of-bounds GeoKeyDirectoryTag self-reference", id)
			}
			shorts := make([]uint16, count)
			for j, v := range dirShorts[valueOffset:end] {
				shorts[j] = uint16(v)
			}
			entry.Value = GeoKeyValue{Short: shorts}
		default:
			return nil, cogerr.New(cogerr.KindNotACOG, "geokey %d has invalid TIFFTagLocation %d", id, tagLocation)
		}
		dir.Entries = append(dir.Entries, entry)
	}
	return dir, nil
}

func resolveAscii(ifd *IFD, src Source) (string, error) {
	e, ok := ifd.Get(TagGeoAsciiParamsTag)
	if !ok {
		return "", cogerr.New(cogerr.KindRequiredTagNotFound, "GeoAsciiParamsTag")
	}
	val, err := e.Value(src)
	if err != nil {
		return "", err
	}
	return val.AsString()
}

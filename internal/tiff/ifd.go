package tiff

import (
	"encoding/binary"
	"math"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// maxIFDs bounds directory traversal so a file with a corrupted or
// maliciously cyclic next-IFD offset chain cannot loop forever — spec.md
// §4.2 flags the unbounded case as an open issue in the original.
const maxIFDs = 1024

// IFDValue is a decoded TIFF field value: a tagged union over the 13 TIFF
// field types (Byte..Double, plus BigTIFF's Long8/SLong8/IFD8). Only the
// slice appropriate to Type is populated.
type IFDValue struct {
	Type   FieldType
	Uints  []uint64 // Byte, Short, Long, Long8, IFD8 — widened to u64
	Ints   []int64  // SByte, SShort, SLong, SLong8 — widened to i64
	Floats []float64 // Float, Double, and Rational/SRational as num/den
	Ascii  string    // Ascii, NUL-trimmed
	Raw    []byte    // Undefined — raw bytes, uninterpreted
}

// AsUint64Slice widens any integer-typed value to []uint64.
func (v *IFDValue) AsUint64Slice() ([]uint64, error) {
	switch v.Type {
	case TByte, TShort, TLong, TLong8, TIFD8:
		return v.Uints, nil
	default:
		return nil, cogerr.New(cogerr.KindTagHasWrongType, "value of type %v is not an unsigned integer", v.Type)
	}
}

// AsFloat64Slice returns Float/Double/Rational values as float64.
func (v *IFDValue) AsFloat64Slice() ([]float64, error) {
	switch v.Type {
	case TFloat, TDouble, TRational, TSRational:
		return v.Floats, nil
	default:
		return nil, cogerr.New(cogerr.KindTagHasWrongType, "value of type %v is not a double", v.Type)
	}
}

// AsString returns an Ascii value.
func (v *IFDValue) AsString() (string, error) {
	if v.Type != TAscii {
		return "", cogerr.New(cogerr.KindTagHasWrongType, "value of type %v is not ascii", v.Type)
	}
	return v.Ascii, nil
}

// AsRaw returns an Undefined value's raw bytes.
func (v *IFDValue) AsRaw() ([]byte, error) {
	if v.Type != TUndefined {
		return nil, cogerr.New(cogerr.KindTagHasWrongType, "value of type %v is not undefined/raw", v.Type)
	}
	return v.Raw, nil
}

// IFDEntry is IFD entry metadata: the field's tag, type, count, and either
// its inline bytes or an offset the payload must be fetched from. The
// payload itself is resolved lazily — see Value.
type IFDEntry struct {
	Tag      Tag
	Type     FieldType
	Count    uint64
	inline   []byte // populated when the payload fits the inline slot
	offset   uint64 // populated otherwise
	isInline bool
}

// Value resolves the entry's payload, reading through the cached Source
// path when the value lives at an offset rather than inline.
func (e *IFDEntry) Value(src Source) (*IFDValue, error) {
	size := e.Type.Size()
	if size == 0 {
		return nil, cogerr.New(cogerr.KindInvalidData, "unknown field type %d for tag %d", e.Type, e.Tag)
	}
	total := size * int(e.Count)

	var payload []byte
	if e.isInline {
		payload = e.inline[:total]
	} else {
		payload = make([]byte, total)
		if err := src.ReadExact(int64(e.offset), payload); err != nil {
			return nil, cogerr.Wrap(cogerr.KindIO, err, "reading tag %d value (%d bytes at offset %d)", e.Tag, total, e.offset)
		}
	}
	return decodeValue(e.Type, e.Count, payload)
}

func decodeValue(t FieldType, count uint64, payload []byte) (*IFDValue, error) {
	v := &IFDValue{Type: t}
	switch t {
	case TByte:
		v.Uints = make([]uint64, count)
		for i := range v.Uints {
			v.Uints[i] = uint64(payload[i])
		}
	case TSByte:
		v.Ints = make([]int64, count)
		for i := range v.Ints {
			v.Ints[i] = int64(int8(payload[i]))
		}
	case TUndefined:
		v.Raw = payload
	case TAscii:
		v.Ascii = trimASCII(payload)
	case TShort:
		v.Uints = make([]uint64, count)
		for i := range v.Uints {
			v.Uints[i] = uint64(byteOrder.Uint16(payload[i*2:]))
		}
	case TSShort:
		v.Ints = make([]int64, count)
		for i := range v.Ints {
			v.Ints[i] = int64(int16(byteOrder.Uint16(payload[i*2:])))
		}
	case TLong:
		v.Uints = make([]uint64, count)
		for i := range v.Uints {
			v.Uints[i] = uint64(byteOrder.Uint32(payload[i*4:]))
		}
	case TSLong:
		v.Ints = make([]int64, count)
		for i := range v.Ints {
			v.Ints[i] = int64(int32(byteOrder.Uint32(payload[i*4:])))
		}
	case TLong8, TIFD8:
		v.Uints = make([]uint64, count)
		for i := range v.Uints {
			v.Uints[i] = byteOrder.Uint64(payload[i*8:])
		}
	case TSLong8:
		v.Ints = make([]int64, count)
		for i := range v.Ints {
			v.Ints[i] = int64(byteOrder.Uint64(payload[i*8:]))
		}
	case TFloat:
		v.Floats = make([]float64, count)
		for i := range v.Floats {
			v.Floats[i] = float64(math.Float32frombits(byteOrder.Uint32(payload[i*4:])))
		}
	case TDouble:
		v.Floats = make([]float64, count)
		for i := range v.Floats {
			v.Floats[i] = math.Float64frombits(byteOrder.Uint64(payload[i*8:]))
		}
	case TRational:
		v.Floats = make([]float64, count)
		for i := range v.Floats {
			num := byteOrder.Uint32(payload[i*8:])
			den := byteOrder.Uint32(payload[i*8+4:])
			v.Floats[i] = float64(num) / float64(den)
		}
	case TSRational:
		v.Floats = make([]float64, count)
		for i := range v.Floats {
			num := int32(byteOrder.Uint32(payload[i*8:]))
			den := int32(byteOrder.Uint32(payload[i*8+4:]))
			v.Floats[i] = float64(num) / float64(den)
		}
	default:
		return nil, cogerr.New(cogerr.KindInvalidData, "unknown field type %d", t)
	}
	return v, nil
}

func trimASCII(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// IFD is one Image File Directory: an ordered list of entries plus the
// offset of the next IFD (0 if this is the last).
type IFD struct {
	Entries []IFDEntry
	Next    uint64
}

// Get returns the entry for tag, if present.
func (d *IFD) Get(tag Tag) (*IFDEntry, bool) {
	for i := range d.Entries {
		if d.Entries[i].Tag == tag {
			return &d.Entries[i], true
		}
	}
	return nil, false
}

// RequireUint64 resolves a single scalar unsigned-integer-typed tag,
// failing with RequiredTagNotFound / TagHasWrongType as appropriate.
func (d *IFD) RequireUint64(src Source, tag Tag) (uint64, error) {
	e, ok := d.Get(tag)
	if !ok {
		return 0, cogerr.New(cogerr.KindRequiredTagNotFound, "tag %d", tag)
	}
	val, err := e.Value(src)
	if err != nil {
		return 0, err
	}
	ints, err := val.AsUint64Slice()
	if err != nil || len(ints) == 0 {
		return 0, cogerr.New(cogerr.KindTagHasWrongType, "tag %d is not a scalar unsigned integer", tag)
	}
	return ints[0], nil
}

// OptionalUint64 is like RequireUint64 but returns (def, nil) if absent.
func (d *IFD) OptionalUint64(src Source, tag Tag, def uint64) (uint64, error) {
	if _, ok := d.Get(tag); !ok {
		return def, nil
	}
	return d.RequireUint64(src, tag)
}

// RequireUint64Slice resolves a vector unsigned-integer-typed tag.
func (d *IFD) RequireUint64Slice(src Source, tag Tag) ([]uint64, error) {
	e, ok := d.Get(tag)
	if !ok {
		return nil, cogerr.New(cogerr.KindRequiredTagNotFound, "tag %d", tag)
	}
	val, err := e.Value(src)
	if err != nil {
		return nil, err
	}
	return val.AsUint64Slice()
}

// RequireFloat64Slice resolves a vector double-typed tag (ModelPixelScaleTag
// and ModelTiepointTag are stored as Double, per the GeoTIFF spec).
func (d *IFD) RequireFloat64Slice(src Source, tag Tag) ([]float64, error) {
	e, ok := d.Get(tag)
	if !ok {
		return nil, cogerr.New(cogerr.KindRequiredTagNotFound, "tag %d", tag)
	}
	val, err := e.Value(src)
	if err != nil {
		return nil, err
	}
	return val.AsFloat64Slice()
}

// RawUndefined resolves an Undefined-typed tag's raw bytes (JpegTables).
func (d *IFD) RawUndefined(src Source, tag Tag) ([]byte, error) {
	e, ok := d.Get(tag)
	if !ok {
		return nil, cogerr.New(cogerr.KindRequiredTagNotFound, "tag %d", tag)
	}
	val, err := e.Value(src)
	if err != nil {
		return nil, err
	}
	return val.AsRaw()
}

// header describes the decoded 8/16-byte TIFF/BigTIFF file header.
type header struct {
	bigTIFF      bool
	firstIFDOff  uint64
}

func parseHeader(src Source) (*header, error) {
	buf := make([]byte, 16)
	// Read the maximum possible header size (BigTIFF, 16 bytes); a Classic
	// TIFF still has valid bytes at offsets 8-15 because the first IFD
	// immediately follows in any real file, and we only look at [0:8]
	// for Classic anyway.
	if err := src.ReadExact(0, buf[:8]); err != nil {
		return nil, cogerr.Wrap(cogerr.KindIO, err, "reading TIFF header")
	}
	if buf[0] != 'I' || buf[1] != 'I' {
		return nil, cogerr.New(cogerr.KindUnsupportedTagValue, "byte order %q not supported (only little-endian 'II')", buf[0:2])
	}
	magic := binary.LittleEndian.Uint16(buf[2:4])
	switch magic {
	case 42:
		return &header{
			bigTIFF:     false,
			firstIFDOff: uint64(binary.LittleEndian.Uint32(buf[4:8])),
		}, nil
	case 43:
		if err := src.ReadExact(0, buf); err != nil {
			return nil, cogerr.Wrap(cogerr.KindIO, err, "reading BigTIFF header")
		}
		offsetSize := binary.LittleEndian.Uint16(buf[4:6])
		if offsetSize != 8 {
			return nil, cogerr.New(cogerr.KindInvalidData, "BigTIFF offset size must be 8, got %d", offsetSize)
		}
		if buf[6] != 0 || buf[7] != 0 {
			return nil, cogerr.New(cogerr.KindInvalidData, "BigTIFF header reserved bytes must be zero")
		}
		return &header{
			bigTIFF:     true,
			firstIFDOff: binary.LittleEndian.Uint64(buf[8:16]),
		}, nil
	default:
		return nil, cogerr.New(cogerr.KindInvalidData, "unsupported TIFF magic %d", magic)
	}
}

// ParseAll walks the IFD chain from the file header and returns every IFD
// in file order.
func ParseAll(src Source) ([]IFD, error) {
	hdr, err := parseHeader(src)
	if err != nil {
		return nil, err
	}
	var ifds []IFD
	offset := hdr.firstIFDOff
	for i := 0; offset != 0; i++ {
		if i >= maxIFDs {
			return nil, cogerr.New(cogerr.KindInvalidData, "more than %d IFDs, aborting (possible cyclic offset chain)", maxIFDs)
		}
		ifd, next, err := parseOneIFD(src, offset, hdr.bigTIFF)
		if err != nil {
			return nil, err
		}
		ifds = append(ifds, *ifd)
		offset = next
	}
	return ifds, nil
}

func parseOneIFD(src Source, offset uint64, bigTIFF bool) (*IFD, uint64, error) {
	var count uint64
	var entrySize, inlineSlot, nextOff, countWidth int
	if bigTIFF {
		entrySize, inlineSlot, nextOff, countWidth = 20, 8, 8, 8
	} else {
		entrySize, inlineSlot, nextOff, countWidth = 12, 4, 4, 2
	}

	countBuf := make([]byte, countWidth)
	if err := src.ReadExact(int64(offset), countBuf); err != nil {
		return nil, 0, cogerr.Wrap(cogerr.KindIO, err, "reading IFD entry count at offset %d", offset)
	}
	if bigTIFF {
		count = byteOrder.Uint64(countBuf)
	} else {
		count = uint64(byteOrder.Uint16(countBuf))
	}

	body := make([]byte, int(count)*entrySize+nextOff)
	if err := src.ReadExact(int64(offset)+int64(countWidth), body); err != nil {
		return nil, 0, cogerr.Wrap(cogerr.KindIO, err, "reading %d IFD entries at offset %d", count, offset)
	}

	entries := make([]IFDEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		raw := body[i*uint64(entrySize) : (i+1)*uint64(entrySize)]
		tag := Tag(byteOrder.Uint16(raw[0:2]))
		ftype := FieldType(byteOrder.Uint16(raw[2:4]))

		var entryCount uint64
		var slot []byte
		if bigTIFF {
			entryCount = byteOrder.Uint64(raw[4:12])
			slot = raw[12:20]
		} else {
			entryCount = uint64(byteOrder.Uint32(raw[4:8]))
			slot = raw[8:12]
		}

		size := ftype.Size()
		if size == 0 || entryCount == 0 {
			// Unknown type or empty entry: skip, not fatal (spec.md §4.2).
			continue
		}
		entry := IFDEntry{Tag: tag, Type: ftype, Count: entryCount}
		if int(entryCount)*size <= inlineSlot {
			entry.isInline = true
			entry.inline = append([]byte(nil), slot[:int(entryCount)*size]...)
		} else {
			if bigTIFF {
				entry.offset = byteOrder.Uint64(slot)
			} else {
				entry.offset = uint64(byteOrder.Uint32(slot))
			}
		}
		entries = append(entries, entry)
	}

	var next uint64
	nextRaw := body[uint64(count)*uint64(entrySize):]
	if bigTIFF {
		next = byteOrder.Uint64(nextRaw)
	} else {
		next = uint64(byteOrder.Uint32(nextRaw))
	}
	return &IFD{Entries: entries, Next: next}, next, nil
}

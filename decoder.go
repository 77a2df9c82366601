package zpng

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Decoder reconstructs frames. Like the Encoder it reuses its scratch
// and zstd state across calls and is not safe for concurrent use.
type Decoder struct {
	zdec    *zstd.Decoder
	dict    *Dictionary
	packing []byte
}

func NewDecoder() *Decoder {
	return &Decoder{zdec: newZstdDecoder()}
}

// SetDictionary registers a trained dictionary so frames compressed
// with it can be decoded. Frames without a dictionary still decode.
func (d *Decoder) SetDictionary(dict *Dictionary) { d.dict = dict }

// Close releases the zstd state. Closing twice is a no-op.
func (d *Decoder) Close() {
	if d.zdec != nil {
		d.zdec.Close()
		d.zdec = nil
	}
	d.packing = nil
	d.dict = nil
}

// Decode reconstructs an intra frame. Buffers carrying the video magic
// are rejected; use DecodeVideo with the reference frame for those.
func (d *Decoder) Decode(data []byte) (*ImageData, error) {
	return d.decode(nil, data)
}

// DecodeVideo reconstructs a frame against ref. Intra frames are
// accepted too (the returned descriptor then has IsIFrame set), so a
// video stream's saturation fallback decodes through the same call.
func (d *Decoder) DecodeVideo(ref *ImageData, data []byte) (*ImageData, error) {
	return d.decode(ref, data)
}

func (d *Decoder) decode(ref *ImageData, data []byte) (*ImageData, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}

	magic, img := parseHeader(data)
	switch magic {
	case headerMagic:
		// IsIFrame keeps its initialization default of true.
	case videoHeaderMagic:
		if ref == nil {
			return nil, ErrInvalidMagic
		}
		img.IsIFrame = false
	default:
		return nil, ErrInvalidMagic
	}

	if err := img.validShape(); err != nil {
		return nil, err
	}
	byteCount := img.byteCount()

	if cap(d.packing) < byteCount+packingSlack {
		d.packing = make([]byte, 0, byteCount+packingSlack)
	}
	zdec := d.zdec
	if d.dict != nil {
		zdec = d.dict.dec
	}
	packed, err := zdec.DecodeAll(data[headerSize:], d.packing[:0])
	if err != nil {
		return nil, fmt.Errorf("zpng: zstd decode: %w", err)
	}
	d.packing = packed[:0]
	if len(packed) < byteCount {
		return nil, ErrTruncated
	}

	img.Pix = make([]byte, byteCount)

	if ref != nil && !img.IsIFrame {
		if err := ref.validate(); err != nil {
			return nil, err
		}
		if !ref.sameShape(&img) {
			return nil, ErrInvalidFormat
		}
		unpackFilterVideo(ref, packed, &img)
	} else {
		unpackIntra(packed, &img)
	}

	return &img, nil
}

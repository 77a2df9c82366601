package zpng

import (
	"github.com/klauspost/compress/zstd"
)

// packIntra selects the intra filter for a frame: Bayer for sentinel
// depths, the color-transform variants for 3- and 4-byte pixels, the
// generic row filter otherwise. Dispatch is by filtered bytes per
// pixel, so e.g. a two-channel 16-bit image runs the 4-byte path.
func packIntra(img *ImageData, out []byte) {
	if img.bayer() {
		packFilterXGGY(img, out)
		return
	}
	switch pb := img.pixelBytes(); pb {
	case 3:
		packFilterRGB(img, out)
	case 4:
		packFilterRGBA(img, out)
	default:
		packFilter(img, pb, out)
	}
}

func unpackIntra(in []byte, img *ImageData) {
	if img.bayer() {
		unpackFilterXGGY(in, img)
		return
	}
	switch pb := img.pixelBytes(); pb {
	case 3:
		unpackFilterRGB(in, img)
	case 4:
		unpackFilterRGBA(in, img)
	default:
		unpackFilter(in, pb, img)
	}
}

// Encoder compresses frames. It keeps its packing scratch and zstd
// state across calls, so reusing one Encoder amortizes allocations.
// An Encoder must not be used from more than one goroutine at a time.
type Encoder struct {
	zenc    *zstd.Encoder
	packing []byte
	dict    *Dictionary
}

// NewEncoder returns an Encoder that compresses without a dictionary.
func NewEncoder() *Encoder {
	return &Encoder{zenc: newZstdEncoder()}
}

// SetDictionary makes the encoder compress with an externally trained
// dictionary; hand the same Dictionary to Decoder.SetDictionary on the
// decode side. A nil dict clears it.
func (e *Encoder) SetDictionary(d *Dictionary) {
	e.dict = d
}

// Dictionary returns the dictionary in use, or nil.
func (e *Encoder) Dictionary() *Dictionary { return e.dict }

// Close releases the zstd state. The Encoder must not be used after.
// Closing twice is a no-op.
func (e *Encoder) Close() {
	if e.zenc != nil {
		e.zenc.Close()
		e.zenc = nil
	}
	e.packing = nil
	e.dict = nil
}

func (e *Encoder) maxBufferSize(img *ImageData) int {
	return headerSize + e.zenc.MaxEncodedSize(img.byteCount()+packingSlack)
}

// Encode compresses img as an intra frame into a new buffer.
func (e *Encoder) Encode(img *ImageData) ([]byte, error) {
	return e.EncodeVideo(nil, img)
}

// EncodeVideo compresses img as a delta against ref. A nil ref is
// equivalent to Encode. When the delta overflows too often the frame is
// silently written as an intra frame instead; the output stays
// self-describing either way.
func (e *Encoder) EncodeVideo(ref, img *ImageData) ([]byte, error) {
	if err := e.validateInput(ref, img); err != nil {
		return nil, err
	}
	out := make([]byte, headerSize, e.maxBufferSize(img))
	return e.encode(ref, img, out)
}

// EncodeInto is Encode writing into a caller-provided buffer, which
// must be at least MaximumBufferSize(img) long. It returns the number
// of bytes written.
func (e *Encoder) EncodeInto(dst []byte, img *ImageData) (int, error) {
	return e.EncodeVideoInto(dst, nil, img)
}

// EncodeVideoInto is EncodeVideo writing into a caller-provided buffer.
func (e *Encoder) EncodeVideoInto(dst []byte, ref, img *ImageData) (int, error) {
	if err := e.validateInput(ref, img); err != nil {
		return 0, err
	}
	if len(dst) < e.maxBufferSize(img) {
		return 0, ErrOutputTooSmall
	}
	out, err := e.encode(ref, img, dst[:headerSize:len(dst)])
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

func (e *Encoder) validateInput(ref, img *ImageData) error {
	if err := img.validate(); err != nil {
		return err
	}
	if ref != nil {
		if err := ref.validate(); err != nil {
			return err
		}
		if !ref.sameShape(img) {
			return ErrInvalidFormat
		}
	}
	return nil
}

// encode runs the filter stage into the packing scratch, compresses the
// packed bytes appended to out and stamps the header. out must arrive
// with exactly headerSize bytes and enough capacity for the worst case.
func (e *Encoder) encode(ref, img *ImageData, out []byte) ([]byte, error) {
	byteCount := img.byteCount()

	if cap(e.packing) < byteCount+packingSlack {
		e.packing = make([]byte, byteCount+packingSlack)
	} else {
		e.packing = e.packing[:byteCount+packingSlack]
		clear(e.packing)
	}

	overflow := 0
	if ref != nil {
		overflow = packFilterVideo(ref, img, e.packing)
	} else {
		packIntra(img, e.packing)
	}

	packed := e.packing[:byteCount]
	if overflow > 0 {
		packed = e.packing[:byteCount+overflow]
	}

	if e.dict != nil {
		out = e.dict.enc.EncodeAll(packed, out)
	} else {
		out = e.zenc.EncodeAll(packed, out)
	}

	magic := uint16(headerMagic)
	if ref != nil && overflow >= 0 {
		magic = videoHeaderMagic
	}
	putHeader(out[:headerSize], magic, img)
	return out, nil
}

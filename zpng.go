// Package zpng implements a lossless image codec that pairs a small
// family of reversible pixel filters with a zstd entropy stage.
//
// Encoding runs raw pixels through a predictive filter (row-wise
// left-neighbor deltas, with specialized variants for RGB/RGBA, Bayer
// mosaic data and inter-frame video deltas), compresses the filtered
// bytes with zstd and prepends an 8-byte little-endian header. Decoding
// reverses the pipeline bit-exactly.
package zpng

import (
	"encoding/binary"
	"errors"
)

const (
	// headerMagic marks an intra-coded frame, videoHeaderMagic a frame
	// coded as a delta against a reference.
	headerMagic      = 0xFBF8
	videoHeaderMagic = 0xF8FB

	headerSize = 8

	// packingSlack pads the filter scratch past the main region so the
	// video overflow literals always have room.
	packingSlack = 1000

	// overflowLimit is the escape budget of a video encode; reaching it
	// abandons the delta path and re-encodes the frame as intra.
	overflowLimit = 1000

	// BytesPerChannel values above bayerSentinel select the Bayer
	// mosaic filter instead of describing a per-channel depth.
	bayerSentinel = 8

	maxDimension = 0xFFFF
)

var (
	ErrInvalidFormat  = errors.New("zpng: unsupported pixel format")
	ErrInvalidMagic   = errors.New("zpng: bad header magic")
	ErrOutputTooSmall = errors.New("zpng: output buffer too small")
	ErrTruncated      = errors.New("zpng: truncated buffer")
)

// ImageData describes an uncompressed raster. The pixel buffer is
// caller-owned; the codec never retains it after a call returns.
type ImageData struct {
	Width  int // 1..65535
	Height int // 1..65535

	// Channels is the number of interleaved channels per pixel. The
	// filters handle 1..8 bytes per pixel; pixels of 3 or 4 bytes (e.g.
	// 8-bit RGB and RGBA) get the RGB(A) color transform, all other
	// sizes the generic filter.
	Channels int

	// BytesPerChannel is 1 or 2. Values above 8 are a sentinel that
	// selects the Bayer mosaic filter; the buffer then holds one byte
	// per pixel and Channels must be 1.
	BytesPerChannel int

	// Stride is informational; rows are assumed contiguous at
	// Width*Channels*BytesPerChannel.
	Stride int

	// Pix holds Width*Height pixels, interleaved, row-major.
	Pix []byte

	// IsIFrame is set by the decoder: true unless the frame was decoded
	// from a video (inter) frame.
	IsIFrame bool
}

// pixelBytes is the number of filtered bytes per pixel. The Bayer
// sentinel collapses BytesPerChannel to one byte per channel.
func (d *ImageData) pixelBytes() int {
	if d.BytesPerChannel > bayerSentinel {
		return d.Channels
	}
	return d.BytesPerChannel * d.Channels
}

func (d *ImageData) byteCount() int {
	return d.pixelBytes() * d.Width * d.Height
}

func (d *ImageData) bayer() bool {
	return d.BytesPerChannel > bayerSentinel
}

// validShape checks everything the filter layer assumes about the
// descriptor fields, ignoring the pixel buffer.
func (d *ImageData) validShape() error {
	if d.Width < 1 || d.Width > maxDimension || d.Height < 1 || d.Height > maxDimension {
		return ErrInvalidFormat
	}
	pb := d.pixelBytes()
	if pb < 1 || pb > 8 {
		return ErrInvalidFormat
	}
	if d.bayer() {
		// The mosaic filter halves both axes and reads one byte per
		// pixel; odd dimensions and multi-channel layouts are rejected
		// rather than scanning past the plane boundaries.
		if d.Channels != 1 || d.Width%2 != 0 || d.Height%2 != 0 {
			return ErrInvalidFormat
		}
	}
	return nil
}

func (d *ImageData) validate() error {
	if err := d.validShape(); err != nil {
		return err
	}
	if len(d.Pix) < d.byteCount() {
		return ErrInvalidFormat
	}
	return nil
}

func (d *ImageData) sameShape(o *ImageData) bool {
	return d.Width == o.Width && d.Height == o.Height &&
		d.Channels == o.Channels && d.BytesPerChannel == o.BytesPerChannel
}

// Header: magic(uint16) + width(uint16) + height(uint16) +
// channels(uint8) + bytesPerChannel(uint8), little-endian.

func putHeader(dst []byte, magic uint16, img *ImageData) {
	binary.LittleEndian.PutUint16(dst[0:2], magic)
	binary.LittleEndian.PutUint16(dst[2:4], uint16(img.Width))
	binary.LittleEndian.PutUint16(dst[4:6], uint16(img.Height))
	dst[6] = uint8(img.Channels)
	dst[7] = uint8(img.BytesPerChannel)
}

func parseHeader(data []byte) (magic uint16, img ImageData) {
	magic = binary.LittleEndian.Uint16(data[0:2])
	img.Width = int(binary.LittleEndian.Uint16(data[2:4]))
	img.Height = int(binary.LittleEndian.Uint16(data[4:6]))
	img.Channels = int(data[6])
	img.BytesPerChannel = int(data[7])
	img.Stride = img.Width * img.Channels
	img.IsIFrame = true
	return magic, img
}

// MaximumBufferSize returns the worst-case encoded size for img,
// including the header. Buffers passed to EncodeInto must be at least
// this large.
func MaximumBufferSize(img *ImageData) int {
	e := encoderPool.Get().(*Encoder)
	n := e.maxBufferSize(img)
	encoderPool.Put(e)
	return n
}

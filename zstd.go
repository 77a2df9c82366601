package zpng

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Higher compression levels do not gain much on filtered pixel data but
// hurt speed, so everything runs at the fastest level.

func newZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func newZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

// The package-level API runs on pooled codec instances so one-shot
// callers do not pay the zstd setup cost per frame.

var encoderPool = sync.Pool{
	New: func() any { return NewEncoder() },
}

var decoderPool = sync.Pool{
	New: func() any { return NewDecoder() },
}

// Compress encodes img as an intra frame.
func Compress(img *ImageData) ([]byte, error) {
	e := encoderPool.Get().(*Encoder)
	buf, err := e.Encode(img)
	encoderPool.Put(e)
	return buf, err
}

// CompressVideo encodes img as a delta against ref; a nil ref encodes
// an intra frame.
func CompressVideo(ref, img *ImageData) ([]byte, error) {
	e := encoderPool.Get().(*Encoder)
	buf, err := e.EncodeVideo(ref, img)
	encoderPool.Put(e)
	return buf, err
}

// Decompress reconstructs an intra frame.
func Decompress(data []byte) (*ImageData, error) {
	d := decoderPool.Get().(*Decoder)
	img, err := d.Decode(data)
	decoderPool.Put(d)
	return img, err
}

// DecompressVideo reconstructs a frame against ref. The returned
// descriptor's IsIFrame reports whether the buffer was intra-coded.
func DecompressVideo(ref *ImageData, data []byte) (*ImageData, error) {
	d := decoderPool.Get().(*Decoder)
	img, err := d.DecodeVideo(ref, data)
	decoderPool.Put(d)
	return img, err
}

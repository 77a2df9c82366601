package zpng

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Dictionary is a serialized zstd dictionary together with an encoder
// and decoder bound to it. klauspost/compress applies dictionaries but
// does not train them; train one externally over packed frames (the
// upstream zstd CLI, `zstd --train`) and hand the serialized result to
// NewDictionary. Share one Dictionary across encoders and decoders of
// the same stream, but pin it to one goroutine at a time.
type Dictionary struct {
	raw []byte
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewDictionary wraps a serialized zstd dictionary. Bytes that are not
// a valid dictionary are rejected.
func NewDictionary(raw []byte) (*Dictionary, error) {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithLowerEncoderMem(true),
		zstd.WithEncoderDict(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("zpng: load dictionary: %w", err)
	}
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderDicts(raw),
	)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zpng: load dictionary: %w", err)
	}
	return &Dictionary{raw: raw, enc: enc, dec: dec}, nil
}

// Bytes returns the serialized dictionary for persistence.
func (d *Dictionary) Bytes() []byte { return d.raw }

// Close releases the coders bound to the dictionary. Closing twice is a
// no-op.
func (d *Dictionary) Close() {
	if d.enc != nil {
		d.enc.Close()
		d.enc = nil
	}
	if d.dec != nil {
		d.dec.Close()
		d.dec = nil
	}
}

package zpng

import (
	"bytes"
	"testing"
)

func testImage(w, h, channels, bytesPerChannel int) *ImageData {
	pb := bytesPerChannel * channels
	if bytesPerChannel > bayerSentinel {
		pb = channels
	}
	pix := make([]byte, w*h*pb)
	for i := range pix {
		pix[i] = uint8((i * 31) ^ (i >> 3) ^ 0x5A)
	}
	return &ImageData{
		Width: w, Height: h,
		Channels: channels, BytesPerChannel: bytesPerChannel,
		Stride: w * channels, Pix: pix,
	}
}

func TestPackFilter_SingleGrayPixel(t *testing.T) {
	img := &ImageData{Width: 1, Height: 1, Channels: 1, BytesPerChannel: 1, Pix: []byte{0x42}}
	out := make([]byte, 1)
	packFilter(img, 1, out)
	if out[0] != 0x42 {
		t.Fatalf("filtered byte = %#x, want 0x42", out[0])
	}

	dec := &ImageData{Width: 1, Height: 1, Channels: 1, BytesPerChannel: 1, Pix: make([]byte, 1)}
	unpackFilter(out, 1, dec)
	if dec.Pix[0] != 0x42 {
		t.Fatalf("unfiltered byte = %#x, want 0x42", dec.Pix[0])
	}
}

func TestPackFilter_RowReset(t *testing.T) {
	// Two rows; the predictor must restart at 0 on the second row.
	img := &ImageData{Width: 2, Height: 2, Channels: 1, BytesPerChannel: 1, Pix: []byte{10, 30, 50, 55}}
	out := make([]byte, 4)
	packFilter(img, 1, out)
	want := []byte{10, 20, 50, 5}
	if !bytes.Equal(out, want) {
		t.Fatalf("packed = %v, want %v", out, want)
	}
}

func TestPackFilterRGB_TwoPixelRow(t *testing.T) {
	img := &ImageData{
		Width: 2, Height: 1, Channels: 3, BytesPerChannel: 1,
		Pix: []byte{10, 20, 30, 15, 24, 29},
	}
	out := make([]byte, 6)
	packFilterRGB(img, out)

	// Planar layout: Y, then U, then V.
	want := []byte{30, 0xFF, 0xF6, 5, 10, 0xFF}
	if !bytes.Equal(out, want) {
		t.Fatalf("packed = %x, want %x", out, want)
	}

	dec := &ImageData{Width: 2, Height: 1, Channels: 3, BytesPerChannel: 1, Pix: make([]byte, 6)}
	unpackFilterRGB(out, dec)
	if !bytes.Equal(dec.Pix, img.Pix) {
		t.Fatalf("round trip = %v, want %v", dec.Pix, img.Pix)
	}
}

func TestPackFilterXGGY_PlaneLayout(t *testing.T) {
	img := &ImageData{
		Width: 4, Height: 2, Channels: 1, BytesPerChannel: 9,
		Pix: []byte{
			10, 20, 30, 40, // even row: R,G pairs
			50, 60, 70, 80, // odd row: G,B pairs
		},
	}
	out := make([]byte, 8)
	packFilterXGGY(img, out)

	// R plane, B plane, G plane (even-row then odd-row greens).
	want := []byte{10, 20, 60, 20, 20, 20, 50, 20}
	if !bytes.Equal(out, want) {
		t.Fatalf("packed = %v, want %v", out, want)
	}

	dec := &ImageData{Width: 4, Height: 2, Channels: 1, BytesPerChannel: 9, Pix: make([]byte, 8)}
	unpackFilterXGGY(out, dec)
	if !bytes.Equal(dec.Pix, img.Pix) {
		t.Fatalf("round trip = %v, want %v", dec.Pix, img.Pix)
	}
}

func TestPackUnpackFilter_AllChannelCounts(t *testing.T) {
	for channels := 1; channels <= 8; channels++ {
		img := testImage(13, 7, channels, 1)
		out := make([]byte, len(img.Pix))
		packFilter(img, channels, out)

		dec := testImage(13, 7, channels, 1)
		dec.Pix = make([]byte, len(img.Pix))
		unpackFilter(out, channels, dec)

		if !bytes.Equal(dec.Pix, img.Pix) {
			t.Fatalf("channels=%d: round trip mismatch", channels)
		}
	}
}

func TestPackFilterRGBA_RoundTrip(t *testing.T) {
	img := testImage(9, 5, 4, 1)
	out := make([]byte, len(img.Pix))
	packFilterRGBA(img, out)

	dec := testImage(9, 5, 4, 1)
	dec.Pix = make([]byte, len(img.Pix))
	unpackFilterRGBA(out, dec)

	if !bytes.Equal(dec.Pix, img.Pix) {
		t.Fatalf("round trip mismatch")
	}
}

func TestPackFilterVideo_InRangeDelta(t *testing.T) {
	ref := testImage(8, 4, 1, 1)
	cur := testImage(8, 4, 1, 1)
	for i := range cur.Pix {
		ref.Pix[i] = 100
		cur.Pix[i] = 103
	}

	out := make([]byte, len(cur.Pix)+packingSlack)
	n := packFilterVideo(ref, cur, out)
	if n != 0 {
		t.Fatalf("overflow count = %d, want 0", n)
	}
	for i := range cur.Pix {
		if out[i] != 3 {
			t.Fatalf("delta[%d] = %#x, want 0x03", i, out[i])
		}
	}
}

func TestPackFilterVideo_NegativeDelta(t *testing.T) {
	ref := &ImageData{Width: 1, Height: 1, Channels: 1, BytesPerChannel: 1, Pix: []byte{10}}
	cur := &ImageData{Width: 1, Height: 1, Channels: 1, BytesPerChannel: 1, Pix: []byte{5}}

	out := make([]byte, 1+packingSlack)
	if n := packFilterVideo(ref, cur, out); n != 0 {
		t.Fatalf("overflow count = %d, want 0", n)
	}
	if out[0] != 0xFB { // -5 as two's complement
		t.Fatalf("delta = %#x, want 0xFB", out[0])
	}

	dec := &ImageData{Width: 1, Height: 1, Channels: 1, BytesPerChannel: 1, Pix: make([]byte, 1)}
	unpackFilterVideo(ref, out[:1+0], dec)
	if dec.Pix[0] != 5 {
		t.Fatalf("round trip = %d, want 5", dec.Pix[0])
	}
}

func TestPackFilterVideo_OverflowEscape(t *testing.T) {
	ref := testImage(4, 4, 1, 1)
	cur := testImage(4, 4, 1, 1)
	for i := range ref.Pix {
		ref.Pix[i] = 10
		cur.Pix[i] = 10
	}
	cur.Pix[5] = 210 // +200, out of delta range

	out := make([]byte, len(cur.Pix)+packingSlack)
	n := packFilterVideo(ref, cur, out)
	if n != 1 {
		t.Fatalf("overflow count = %d, want 1", n)
	}
	if out[5] != overflowEscape {
		t.Fatalf("delta[5] = %#x, want escape", out[5])
	}
	if out[len(cur.Pix)] != 210 {
		t.Fatalf("overflow literal = %d, want 210", out[len(cur.Pix)])
	}

	dec := testImage(4, 4, 1, 1)
	dec.Pix = make([]byte, len(cur.Pix))
	unpackFilterVideo(ref, out[:len(cur.Pix)+n], dec)
	if !bytes.Equal(dec.Pix, cur.Pix) {
		t.Fatalf("round trip mismatch")
	}
}

func TestPackFilterVideo_SaturationBoundary(t *testing.T) {
	// 64x32 one-byte-per-pixel Bayer frames: 2048 samples, enough room
	// for the escape budget.
	mk := func(escapes int) (ref, cur *ImageData) {
		ref = &ImageData{Width: 64, Height: 32, Channels: 1, BytesPerChannel: 9, Pix: make([]byte, 2048)}
		cur = &ImageData{Width: 64, Height: 32, Channels: 1, BytesPerChannel: 9, Pix: make([]byte, 2048)}
		for i := 0; i < escapes; i++ {
			cur.Pix[i] = 200
		}
		return ref, cur
	}

	ref, cur := mk(999)
	out := make([]byte, len(cur.Pix)+packingSlack)
	if n := packFilterVideo(ref, cur, out); n != 999 {
		t.Fatalf("999 escapes: overflow count = %d, want 999", n)
	}

	ref, cur = mk(1000)
	out = make([]byte, len(cur.Pix)+packingSlack)
	if n := packFilterVideo(ref, cur, out); n != -1 {
		t.Fatalf("1000 escapes: overflow count = %d, want -1 fallback", n)
	}

	// The fallback must have re-packed the frame as a Bayer intra frame
	// from the start of the buffer.
	want := make([]byte, len(cur.Pix))
	packFilterXGGY(cur, want)
	if !bytes.Equal(out[:len(want)], want) {
		t.Fatalf("fallback packing does not match intra packing")
	}
}

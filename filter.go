package zpng

// The intra filters emit, for every channel, the wraparound difference
// to the previous pixel of the same row. The per-row predictor reset
// keeps rows independent, so a bit flip never propagates past one row.

// packFilter filters an interleaved image with channels bytes per pixel
// (1..8) into out. Output stays interleaved and has the same size as
// the input.
func packFilter(img *ImageData, channels int, out []byte) {
	width, height := img.Width, img.Height
	in := img.Pix

	p := 0
	for y := 0; y < height; y++ {
		var prev [8]uint8
		for x := 0; x < width; x++ {
			for i := 0; i < channels; i++ {
				a := in[p+i]
				out[p+i] = a - prev[i]
				prev[i] = a
			}
			p += channels
		}
	}
}

// unpackFilter is the exact inverse of packFilter.
func unpackFilter(in []byte, channels int, img *ImageData) {
	width, height := img.Width, img.Height
	out := img.Pix

	p := 0
	for y := 0; y < height; y++ {
		var prev [8]uint8
		for x := 0; x < width; x++ {
			for i := 0; i < channels; i++ {
				a := in[p+i] + prev[i]
				out[p+i] = a
				prev[i] = a
			}
			p += channels
		}
	}
}

package zpng

// Bayer XGGY filter for 2x2 mosaic sensor data: even rows carry X,G
// pairs, odd rows G,Y pairs (X/Y being R/B in either order, which the
// filter does not care about). Samples are one byte per pixel. The scan
// runs over row pairs with stride-2 predictors and splits the result
// into planes: R (W*H/4 bytes), B (W*H/4), then G (W*H/2) mixing even-
// and odd-row greens in scan order.
//
// Both dimensions must be even; the descriptor validation enforces it.

func packFilterXGGY(img *ImageData, out []byte) {
	width, height := img.Width, img.Height
	in := img.Pix

	planeBytes := width * height / 4
	or := 0
	ob := planeBytes
	og := planeBytes * 2

	p := 0
	for row := 0; row < height; row += 2 {
		var prev [2]uint8

		// even row: X,G pairs
		for x := 0; x < width; x += 2 {
			r := in[p]
			g := in[p+1]

			out[or] = r - prev[0]
			out[og] = g - prev[1]
			or++
			og++

			prev[0] = r
			prev[1] = g
			p += 2
		}

		prev[0], prev[1] = 0, 0

		// odd row: G,Y pairs
		for x := 0; x < width; x += 2 {
			g := in[p]
			b := in[p+1]

			out[og] = g - prev[0]
			out[ob] = b - prev[1]
			og++
			ob++

			prev[0] = g
			prev[1] = b
			p += 2
		}
	}
}

func unpackFilterXGGY(in []byte, img *ImageData) {
	width, height := img.Width, img.Height
	out := img.Pix

	planeBytes := width * height / 4
	ir := 0
	ib := planeBytes
	ig := planeBytes * 2

	p := 0
	for row := 0; row < height; row += 2 {
		var prev [2]uint8

		// even row
		for x := 0; x < width; x += 2 {
			r := in[ir] + prev[0]
			g := in[ig] + prev[1]
			ir++
			ig++

			out[p] = r
			out[p+1] = g

			prev[0] = r
			prev[1] = g
			p += 2
		}

		prev[0], prev[1] = 0, 0

		// odd row
		for x := 0; x < width; x += 2 {
			g := in[ig] + prev[0]
			b := in[ib] + prev[1]
			ig++
			ib++

			out[p] = g
			out[p+1] = b

			prev[0] = g
			prev[1] = b
			p += 2
		}
	}
}

package zpng

// RGB and RGBA frames get two transforms on top of the row delta: the
// GB-RG color decorrelation from BCIF, applied to the deltas, and a
// planar split into Y, U, V (and A) planes of Width*Height bytes each.
// The delta is taken before the color transform on the encode side and
// undone after it on the decode side; swapping that order breaks
// reversibility.

func packFilterRGB(img *ImageData, out []byte) {
	width, height := img.Width, img.Height
	in := img.Pix

	planeBytes := width * height
	oy := 0
	ou := planeBytes
	ov := planeBytes * 2

	p := 0
	for row := 0; row < height; row++ {
		var prev [3]uint8
		for x := 0; x < width; x++ {
			r := in[p] - prev[0]
			g := in[p+1] - prev[1]
			b := in[p+2] - prev[2]

			prev[0] = in[p]
			prev[1] = in[p+1]
			prev[2] = in[p+2]

			out[oy] = b
			out[ou] = g - b
			out[ov] = g - r
			oy++
			ou++
			ov++

			p += 3
		}
	}
}

func unpackFilterRGB(in []byte, img *ImageData) {
	width, height := img.Width, img.Height
	out := img.Pix

	planeBytes := width * height
	iy := 0
	iu := planeBytes
	iv := planeBytes * 2

	p := 0
	for row := 0; row < height; row++ {
		var prev [3]uint8
		for x := 0; x < width; x++ {
			y := in[iy]
			u := in[iu]
			v := in[iv]
			iy++
			iu++
			iv++

			b := y
			g := u + b
			r := g - v

			r += prev[0]
			g += prev[1]
			b += prev[2]

			out[p] = r
			out[p+1] = g
			out[p+2] = b

			prev[0] = r
			prev[1] = g
			prev[2] = b

			p += 3
		}
	}
}

// RGBA variant: alpha skips the color transform and is delta-coded into
// its own plane.

func packFilterRGBA(img *ImageData, out []byte) {
	width, height := img.Width, img.Height
	in := img.Pix

	planeBytes := width * height
	oy := 0
	ou := planeBytes
	ov := planeBytes * 2
	oa := planeBytes * 3

	p := 0
	for row := 0; row < height; row++ {
		var prev [4]uint8
		for x := 0; x < width; x++ {
			r := in[p] - prev[0]
			g := in[p+1] - prev[1]
			b := in[p+2] - prev[2]
			a := in[p+3] - prev[3]

			prev[0] = in[p]
			prev[1] = in[p+1]
			prev[2] = in[p+2]
			prev[3] = in[p+3]

			out[oy] = b
			out[ou] = g - b
			out[ov] = g - r
			out[oa] = a
			oy++
			ou++
			ov++
			oa++

			p += 4
		}
	}
}

func unpackFilterRGBA(in []byte, img *ImageData) {
	width, height := img.Width, img.Height
	out := img.Pix

	planeBytes := width * height
	iy := 0
	iu := planeBytes
	iv := planeBytes * 2
	ia := planeBytes * 3

	p := 0
	for row := 0; row < height; row++ {
		var prev [4]uint8
		for x := 0; x < width; x++ {
			y := in[iy]
			u := in[iu]
			v := in[iv]
			a := in[ia]
			iy++
			iu++
			iv++
			ia++

			b := y
			g := u + b
			r := g - v

			r += prev[0]
			g += prev[1]
			b += prev[2]
			a += prev[3]

			out[p] = r
			out[p+1] = g
			out[p+2] = b
			out[p+3] = a

			prev[0] = r
			prev[1] = g
			prev[2] = b
			prev[3] = a

			p += 4
		}
	}
}

package zpng

import "image"

// FromImage copies an image.Image into a descriptor the codec can
// encode. Gray images become one-channel, RGBA/NRGBA four-channel;
// anything else is converted pixel by pixel into four channels. Bounds
// are normalized to start at (0,0).
func FromImage(src image.Image) *ImageData {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch s := src.(type) {
	case *image.Gray:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], s.Pix[y*s.Stride:y*s.Stride+w])
		}
		return &ImageData{
			Width: w, Height: h,
			Channels: 1, BytesPerChannel: 1,
			Stride: w, Pix: pix,
		}
	case *image.RGBA:
		return fromPix(s.Pix, s.Stride, w, h)
	case *image.NRGBA:
		return fromPix(s.Pix, s.Stride, w, h)
	default:
		pix := make([]byte, w*h*4)
		p := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r16, g16, b16, a16 := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
				pix[p] = uint8(r16 >> 8)
				pix[p+1] = uint8(g16 >> 8)
				pix[p+2] = uint8(b16 >> 8)
				pix[p+3] = uint8(a16 >> 8)
				p += 4
			}
		}
		return &ImageData{
			Width: w, Height: h,
			Channels: 4, BytesPerChannel: 1,
			Stride: w * 4, Pix: pix,
		}
	}
}

func fromPix(src []byte, stride, w, h int) *ImageData {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(pix[y*w*4:(y+1)*w*4], src[y*stride:y*stride+w*4])
	}
	return &ImageData{
		Width: w, Height: h,
		Channels: 4, BytesPerChannel: 1,
		Stride: w * 4, Pix: pix,
	}
}

// Image converts an 8-bit descriptor with 1, 3 or 4 channels back into
// an image.Image. Other layouts (16-bit, Bayer, 5..8 channels) have no
// stdlib image counterpart and return ErrInvalidFormat.
func (d *ImageData) Image() (image.Image, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if d.BytesPerChannel != 1 {
		return nil, ErrInvalidFormat
	}
	w, h := d.Width, d.Height

	switch d.Channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w], d.Pix[y*w:(y+1)*w])
		}
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		p := 0
		for y := 0; y < h; y++ {
			o := y * img.Stride
			for x := 0; x < w; x++ {
				img.Pix[o] = d.Pix[p]
				img.Pix[o+1] = d.Pix[p+1]
				img.Pix[o+2] = d.Pix[p+2]
				img.Pix[o+3] = 0xFF
				o += 4
				p += 3
			}
		}
		return img, nil
	case 4:
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w*4], d.Pix[y*w*4:(y+1)*w*4])
		}
		return img, nil
	default:
		return nil, ErrInvalidFormat
	}
}

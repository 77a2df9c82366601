package zpng

import "log/slog"

// overflowEscape marks a byte whose delta against the reference did not
// fit in [-127, 127]. A true delta of -128 is never emitted, so the
// escape is unambiguous; the literal value follows in the overflow
// region at offset byteCount.
const overflowEscape = 0x80

// packFilterVideo writes per-byte deltas of img against ref into out.
// Deltas outside [-127, 127] emit overflowEscape and append the literal
// to the overflow region. Returns the number of overflow literals, or
// -1 when the escape budget saturates: the frame is then re-packed from
// the start of out as an intra frame and the caller must frame it with
// the intra magic.
func packFilterVideo(ref, img *ImageData, out []byte) int {
	in := img.Pix
	rp := ref.Pix
	n := img.byteCount()

	overflow := n
	count := 0

	for i := 0; i < n; i++ {
		diff := int(in[i]) - int(rp[i])
		if diff > 127 || diff < -127 {
			if count == overflowLimit-1 {
				packIntra(img, out)
				return -1
			}
			out[i] = overflowEscape
			out[overflow] = in[i]
			overflow++
			count++
		} else {
			out[i] = uint8(int8(diff))
		}
	}

	if count != 0 {
		slog.Debug("zpng: video overflow escapes", "count", count)
	}
	return count
}

// unpackFilterVideo reconstructs img from the delta stream in[:n] and
// the overflow region behind it. A stream that escapes more often than
// the overflow region is long decodes the missing literals as zero.
func unpackFilterVideo(ref *ImageData, in []byte, img *ImageData) {
	rp := ref.Pix
	out := img.Pix
	n := img.byteCount()

	overflow := in[n:]
	ov := 0

	for i := 0; i < n; i++ {
		if in[i] == overflowEscape {
			if ov < len(overflow) {
				out[i] = overflow[ov]
			} else {
				out[i] = 0
			}
			ov++
		} else {
			out[i] = rp[i] + in[i]
		}
	}
}

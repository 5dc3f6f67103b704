package trackers

import "image"

// gray converts the region r of img to 8-bit luma, row-major.
func gray(img *image.RGBA, r image.Rectangle) []uint8 {
	out := make([]uint8, r.Dx()*r.Dy())
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		p := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			out[i] = luma(img.Pix[p], img.Pix[p+1], img.Pix[p+2])
			i++
			p += 4
		}
	}
	return out
}

func luma(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
}

// hsv converts one pixel using the 8-bit OpenCV ranges:
// hue in [0,180), saturation and value in [0,255].
func hsv(r, g, b uint8) (h, s, v uint8) {
	max, min := r, r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}
	v = max
	if max == 0 {
		return 0, 0, 0
	}
	d := int(max) - int(min)
	s = uint8(d * 255 / int(max))
	if d == 0 {
		return 0, s, v
	}

	var hue int
	switch max {
	case r:
		hue = 60 * (int(g) - int(b)) / d
	case g:
		hue = 120 + 60*(int(b)-int(r))/d
	default:
		hue = 240 + 60*(int(r)-int(g))/d
	}
	if hue < 0 {
		hue += 360
	}
	return uint8(hue / 2 % 180), s, v
}

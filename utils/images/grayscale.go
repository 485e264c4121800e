package images

import (
	"image"
	"image/color"
)

// IsGrayscale reports whether every pixel of img has R==G==B. Gray images
// answer immediately, everything else is scanned pixel by pixel which may be
// slow for large images.
func IsGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !grayPixel(img.At(x, y)) {
				return false
			}
		}
	}
	return true
}

func grayPixel(c color.Color) bool {
	p := color.NRGBAModel.Convert(c).(color.NRGBA)
	return p.R == p.G && p.G == p.B
}

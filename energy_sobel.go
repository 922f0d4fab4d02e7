package carve

import (
	"image"

	"github.com/disintegration/gift"
)

// NewSobelReader runs a Sobel edge filter over img once and returns a
// ReadFunc backed by the resulting magnitude field instead of per-pixel
// brightness. Energy then becomes the gradient of edge strength rather
// than the gradient of brightness, pushing seams harder away from strong
// edges; img's pixel order must match the PixelBuffer the carver reads,
// i.e. img should be the same image the carver was built from.
func NewSobelReader(img image.Image) ReadFunc {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	g := gift.New(gift.Sobel())
	dst := image.NewGray(image.Rect(0, 0, w, h))
	g.Draw(dst, img)

	field := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			field[y*w+x] = float64(dst.GrayAt(x, y).Y) / 255
		}
	}

	return func(_ *PixelBuffer, p int) float64 {
		if p < 0 || p >= len(field) {
			return 0
		}
		return field[p]
	}
}

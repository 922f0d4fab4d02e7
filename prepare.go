package carve

import (
	"image"

	"github.com/disintegration/imaging"
)

// FitBounds computes a coarse pre-carving size: when the aspect ratio
// change between (srcW,srcH) and (targetW,targetH) is large, resizing the
// whole distance with seams alone means discarding or duplicating most of
// one axis. FitBounds returns an intermediate width/height that closes
// most of the gap with a single conventional resample, leaving seam
// carving to do the rest of the work near the target.
func FitBounds(srcW, srcH, targetW, targetH int, maxStep float64) (w, h int) {
	if maxStep <= 0 {
		maxStep = 1
	}
	clampAxis := func(src, target int) int {
		delta := float64(target - src)
		bound := float64(src) * maxStep
		if delta > bound {
			delta = bound
		} else if delta < -bound {
			delta = -bound
		}
		return src + int(delta)
	}
	return clampAxis(srcW, targetW), clampAxis(srcH, targetH)
}

// Prepare rescales img to (w,h) with Lanczos resampling, the coarse pass a
// driver can run before handing the result to a Carver when the
// requested resize is too large a fraction of the source to carve
// directly (see FitBounds).
func Prepare(img image.Image, w, h int) image.Image {
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

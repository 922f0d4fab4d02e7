package carve

import (
	"fmt"
	"math"

	"github.com/liquidcarve/carve/internal/xmath"
)

// AddBiasArea folds an RGB (optionally RGBA) buffer into the bias map over
// the sub-rectangle (xOff,yOff,w,h), clipped against the carver's bounds.
// factor scales the per-pixel contribution: negative factors lower the
// energy and draw seams into the region (discard mask), positive factors
// raise it and keep seams away (preservation mask). rgb holds w*h*bpp samples in [0,255]; bpp is 3 or 4
// (the 4th channel, if present, is alpha and pre-multiplies the bias).
func (c *Carver) AddBiasArea(factor float64, rgb []uint8, bpp, xOff, yOff, w, h int) error {
	if bpp != 3 && bpp != 4 {
		return newError("AddBiasArea", errFmt("bpp must be 3 or 4, got %d", bpp))
	}
	x0 := xmath.Max(0, xOff)
	y0 := xmath.Max(0, yOff)
	x1 := xmath.Min(c.w0, xOff+w)
	y1 := xmath.Min(c.h0, yOff+h)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sx, sy := x-xOff, y-yOff
			base := (sy*w + sx) * bpp
			if base+bpp > len(rgb) {
				continue
			}
			mean := (float64(rgb[base]) + float64(rgb[base+1]) + float64(rgb[base+2])) / 3 / 255
			alpha := 1.0
			if bpp == 4 {
				alpha = float64(rgb[base+3]) / 255
			}
			p := y*c.wStart + x
			c.bias[p] += alpha * factor * mean / 2
		}
	}
	return nil
}

// AddBias folds an RGB(A) buffer covering the whole w0*h0 extent into bias.
func (c *Carver) AddBias(factor float64, rgb []uint8, bpp int) error {
	return c.AddBiasArea(factor, rgb, bpp, 0, 0, c.w0, c.h0)
}

// SetRigidityMaskArea replaces (not accumulates) the rigidity multiplier
// over the given sub-rectangle from an RGB(A) buffer, the same per-pixel
// scalar AddBiasArea computes, alpha-weighted when present.
func (c *Carver) SetRigidityMaskArea(rgb []uint8, bpp, xOff, yOff, w, h int) error {
	if bpp != 3 && bpp != 4 {
		return newError("SetRigidityMaskArea", errFmt("bpp must be 3 or 4, got %d", bpp))
	}
	if c.rigidityMask == nil {
		c.rigidityMask = make([]float64, c.w0*c.h0)
		for i := range c.rigidityMask {
			c.rigidityMask[i] = 1
		}
	}
	x0 := xmath.Max(0, xOff)
	y0 := xmath.Max(0, yOff)
	x1 := xmath.Min(c.w0, xOff+w)
	y1 := xmath.Min(c.h0, yOff+h)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sx, sy := x-xOff, y-yOff
			base := (sy*w + sx) * bpp
			if base+bpp > len(rgb) {
				continue
			}
			mean := (float64(rgb[base]) + float64(rgb[base+1]) + float64(rgb[base+2])) / 3 / 255
			alpha := 1.0
			if bpp == 4 {
				alpha = float64(rgb[base+3]) / 255
			}
			p := y*c.wStart + x
			c.rigidityMask[p] = alpha * mean
		}
	}
	return nil
}

// SetRigidityMask replaces the whole-image rigidity mask.
func (c *Carver) SetRigidityMask(rgb []uint8, bpp int) error {
	return c.SetRigidityMaskArea(rgb, bpp, 0, 0, c.w0, c.h0)
}

// buildRigidityMap precomputes rigidity_map[dx] = rigidity * |dx|^1.5 / h
// for dx in [-deltaX, deltaX], the fixed-at-init lookup table used by the
// forward pass.
func (c *Carver) buildRigidityMap() {
	n := 2*c.deltaX + 1
	c.rigidityMap = make([]float64, n)
	h := float64(xmath.Max(c.h0, 1))
	for dx := -c.deltaX; dx <= c.deltaX; dx++ {
		c.rigidityMap[dx+c.deltaX] = c.rigidity * math.Pow(xmath.Abs(float64(dx)), 1.5) / h
	}
}

// rescaleRigidityMap rescales every entry by factor, applied when the image
// is transposed (the original rescales by w0/h0 because the lateral-step
// cost should stay proportional to the axis currently being carved).
func (c *Carver) rescaleRigidityMap(factor float64) {
	for i := range c.rigidityMap {
		c.rigidityMap[i] *= factor
	}
}

func errFmt(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

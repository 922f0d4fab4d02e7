package carve

// Scan advances the readout cursor to the next visible pixel in row-major
// order and reports its logical coordinates (already corrected for the
// transposed flag, so callers never need to know the internal
// orientation) along with the physical index to read channels from via
// Buffer(). ok is false once the image has been fully scanned; the cursor
// then auto-resets, so a caller can loop `for { x, y, p, ok := c.Scan(); if
// !ok { break } }` once per readout pass.
//
// Depth-specific *_16 scan variants from the original API collapse into
// this one: PixelBuffer.Channel already dispatches on ColorDepth, so there
// is nothing left for a parallel 16-bit entry point to do.
func (c *Carver) Scan() (x, y int, physIndex int32, ok bool) {
	for c.cursorY < c.h0 {
		if c.cursorX < c.w {
			lx, ly := c.cursorX, c.cursorY
			phys := c.rawAt(ly, lx)
			c.cursorX++

			px, py := lx, ly
			if c.transposed {
				px, py = ly, lx
			}
			return px, py, phys, true
		}
		c.cursorX = 0
		c.cursorY++
	}
	c.ScanReset()
	return 0, 0, 0, false
}

// ScanReset rewinds the readout cursor to the top-left of the image.
func (c *Carver) ScanReset() {
	c.cursorX, c.cursorY = 0, 0
}

// ScanLine returns the physical indices of every visible pixel in logical
// row y (pre-transpose), left to right.
func (c *Carver) ScanLine(y int) []int32 {
	out := make([]int32, c.w)
	for x := 0; x < c.w; x++ {
		out[x] = c.rawAt(y, x)
	}
	return out
}

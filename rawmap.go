package carve

// rawAt returns the physical index currently occupying virtual column x of
// row y.
func (c *Carver) rawAt(y, x int) int32 {
	return c.raw[y*c.rawStride+x]
}

// carveRow removes logical column col from row y's live window by shifting
// every entry to its right one slot left. The vacated physical index at the
// old end of the window is left untouched; it remains addressable through
// vs/bias/en by any future operation that needs the invisible pixel.
func (c *Carver) carveRow(y, col int) {
	base := y * c.rawStride
	for x := col; x < c.w-1; x++ {
		c.raw[base+x] = c.raw[base+x+1]
	}
}

// carve removes the seam recorded in vpathX (one column index per row) from
// every row of raw, then shrinks the logical width by one. Every attached
// carver (root or not, masks-only or not) follows the exact same column
// path through its own raw array, since that is what "attached" means:
// physically removing the same columns, regardless of whether its own
// logical width is later set to the root's target.
func (c *Carver) carve() {
	for y := 0; y < c.h0; y++ {
		c.carveRow(y, int(c.vpathX[y]))
	}
	c.w--
	for _, aux := range c.attached {
		for y := 0; y < aux.h0; y++ {
			aux.carveRow(y, int(c.vpathX[y]))
		}
		aux.w--
	}
}

package carve

// inflate embeds enlargement information in the same vsmap that encodes
// removal, so one completed removal schedule (ranks 1..wStart, one per
// physical pixel) can also drive any target in [wStart, 2*wStart-1]. l is
// the total number of extra columns the carver's w0 should carry beyond
// wStart; calling it again with a larger l only duplicates the additional
// columns needed, leaving already-duplicated ones alone.
//
// Every attached carver inflates its own pixel/bias/rigidity arrays first,
// against the same l and reading the root's vs before it is rewritten, so
// each duplicates exactly the ranks the root does; the root then inflates
// (it owns vs) and hands its new vs to every attached carver.
func (c *Carver) inflate(l int) error {
	root := c.rootOf()
	if root != c {
		return root.inflate(l)
	}
	for _, aux := range c.attached {
		if err := aux.inflateSelf(l); err != nil {
			return err
		}
	}
	return c.inflateSelf(l)
}

// inflateSelf grows w0 by the columns not yet duplicated for total extra
// count l. Duplication picks the least salient (lowest-ranked, first
// removed) survivors first: a physical pixel whose rank falls in
// [2*maxLevel-1, l+maxLevel-1] gets an averaged duplicate (the mean of the
// pixel and its right-hand neighbour; a plain copy at the end of a row)
// inserted immediately after it. maxLevel is 1 for a first inflate, since
// vs then holds the ranks 1..wStart of a complete removal schedule whatever
// level an earlier shrink left behind, and otherwise the carrier's
// max_level before this call, never mutated mid-schedule. Every
// surviving original's own rank then shifts up by l-maxLevel+1, so a
// later call with a larger l can tell already-duplicated ranks from
// still-pending ones without re-scanning what it already placed.
func (c *Carver) inflateSelf(l int) error {
	priorExtra := c.w0 - c.wStart
	incremental := l - priorExtra
	if incremental <= 0 {
		return nil
	}

	maxLevel := c.maxLevel
	if priorExtra == 0 {
		maxLevel = 1
	}
	thresholdLo := int32(2*maxLevel - 1)
	thresholdHi := int32(l + maxLevel - 1)
	shift := int32(l - maxLevel + 1)

	oldW0 := c.w0
	w1 := oldW0 + incremental

	newBuf, err := NewPixelBuffer(c.buf.Depth, c.buf.ImageType, c.buf.Channels, c.buf.AlphaChannel, c.buf.BlackChannel, w1*c.h0)
	if err != nil {
		return outOfMemory("inflate", err)
	}

	isRoot := c.isRoot()
	var newVS []int32
	if isRoot {
		newVS = make([]int32, w1*c.h0)
	}
	newBias := make([]float64, w1*c.h0)
	var newRigidity []float64
	if c.rigidityMask != nil {
		newRigidity = make([]float64, w1*c.h0)
	}

	// Enlargement walks every physical pixel of the buffer in its natural
	// row-major order, not through raw: by the time inflate runs, raw has
	// been carved down to a single live column per row and no longer holds
	// the other columns at all (carveRow overwrites them with duplicates of
	// their neighbour as it shifts). vs, bias and the pixel buffer itself
	// still hold every original pixel addressed by its plain physical
	// index, so that's what this walk uses.
	for y := 0; y < c.h0; y++ {
		out := 0
		for x := 0; x < oldW0; x++ {
			now := int32(y*oldW0 + x)
			vsNow := c.vs[now]

			dst := y*w1 + out
			newBuf.CopyPixel(dst, c.buf, int(now))
			newBias[dst] = c.bias[now]
			if newRigidity != nil {
				newRigidity[dst] = c.rigidityMaskAt(now)
			}
			if isRoot && vsNow != 0 {
				newVS[dst] = vsNow + shift
			}
			out++

			if vsNow != 0 && vsNow >= thresholdLo && vsNow <= thresholdHi {
				dup := y*w1 + out
				if x+1 < oldW0 {
					next := now + 1
					newBuf.AveragePixel(dup, c.buf, int(now), c.buf, int(next))
					newBias[dup] = (c.bias[now] + c.bias[next]) / 2
					if newRigidity != nil {
						newRigidity[dup] = (c.rigidityMaskAt(now) + c.rigidityMaskAt(next)) / 2
					}
				} else {
					newBuf.CopyPixel(dup, c.buf, int(now))
					newBias[dup] = c.bias[now]
					if newRigidity != nil {
						newRigidity[dup] = c.rigidityMaskAt(now)
					}
				}
				if isRoot {
					newVS[dup] = int32(l) - vsNow + int32(maxLevel)
				}
				out++
			}
		}
	}

	newRaw := make([]int32, c.h0*w1)
	for i := range newRaw {
		newRaw[i] = int32(i)
	}

	c.buf = newBuf
	c.bias = newBias
	c.rigidityMask = newRigidity
	c.raw = newRaw
	c.rawStride = w1
	c.w0 = w1
	if isRoot {
		c.vs = newVS
		for _, aux := range c.attached {
			aux.vs = newVS
		}
	}

	n := c.w0 * c.h0
	c.en = make([]float64, n)
	c.m = make([]float64, n)
	c.least = make([]int32, n)
	c.level = c.wStart + l
	c.maxLevel = c.level
	c.w = c.wStart

	return c.buildEnergyMap()
}

func (c *Carver) rigidityMaskAt(p int32) float64 {
	if c.rigidityMask == nil {
		return 1
	}
	return c.rigidityMask[p]
}

package carve

import "github.com/liquidcarve/carve/internal/xmath"

// Resize drives the carver to width w1, height h1, building (and caching)
// whatever seam levels the target requires beyond what's already scheduled.
// Must be called on the root of an attached family; attached carvers are
// carried along automatically.
func (c *Carver) Resize(w1, h1 int) error {
	if !c.isRoot() {
		return newError("Resize", errFmt("Resize must be called on the root of an attached family"))
	}

	var axes []func() error
	switch c.resizeOrder {
	case ResizeVerticalFirst:
		axes = []func() error{func() error { return c.resizeHeight(h1) }, func() error { return c.resizeWidth(w1) }}
	default:
		axes = []func() error{func() error { return c.resizeWidth(w1) }, func() error { return c.resizeHeight(h1) }}
	}

	for _, axis := range axes {
		if err := axis(); err != nil {
			return err
		}
		if c.dumpVMaps {
			if vm, err := c.DumpVMap(""); err == nil {
				c.vmapDumps = append(c.vmapDumps, vm)
			}
		}
	}
	return nil
}

func (c *Carver) resizeWidth(target int) error {
	if target == c.Width() {
		return nil
	}
	if c.transposed {
		if err := c.Transpose(); err != nil {
			return err
		}
	}
	c.progress.reporter.Init(c.progress.initWidthMessage)
	depth := resizeDepth(target, c.wStart)
	if err := c.buildMaps(depth); err != nil {
		return err
	}
	c.setWidth(target)
	c.progress.reporter.End(c.progress.endWidthMessage)
	return nil
}

// resizeDepth converts a target width into the schedule depth buildMaps
// needs: wStart-target+1 removal levels to shrink to target, or exactly
// target itself when enlarging past wStart, since inflate's extra-column
// count is depth-wStart.
func resizeDepth(target, wStart int) int {
	if target > wStart {
		return target
	}
	return xmath.Abs(target-wStart) + 1
}

func (c *Carver) resizeHeight(target int) error {
	if target == c.Height() {
		return nil
	}
	if !c.transposed {
		if err := c.Transpose(); err != nil {
			return err
		}
	}
	c.progress.reporter.Init(c.progress.initHeightMessage)
	depth := resizeDepth(target, c.wStart)
	if err := c.buildMaps(depth); err != nil {
		return err
	}
	c.setWidth(target)
	c.progress.reporter.End(c.progress.endHeightMessage)
	return nil
}

// setWidth adjusts the logical width and rebuilds raw from vs to match,
// rather than trusting whatever window the triggering buildMaps call's
// incremental carving happened to leave raw sitting at: that leftover state
// only ever reflects the depth buildMaps stopped at, which can be narrower
// than target (resizing back up after resizing down) or simply stale
// (reading out an inflated carver at a width below w0, where raw is just
// the identity map inflate left behind). rebuildRawForLevel derives the
// correct window directly from vs every time, so it's correct regardless of
// build history.
func (c *Carver) setWidth(target int) {
	c.w = target
	c.rebuildRawForLevel(c.w0 - target + 1)
	for _, aux := range c.attached {
		if !aux.masksOnly {
			aux.w = target
		}
		aux.rebuildRawForLevel(aux.w0 - aux.w + 1)
	}
}

// Flatten drops all scheduling state and makes the current logical image
// the new baseline: w0 = wStart = w, h0 = hStart = h, level = maxLevel = 1.
// Attached carvers flatten first, recursively, before the root reallocates
// the shared vs.
func (c *Carver) Flatten() error {
	if !c.isRoot() {
		return c.rootOf().Flatten()
	}
	if err := c.checkCancelled("Flatten"); err != nil {
		return err
	}

	for _, aux := range c.attached {
		buf, bias, rig, err := aux.flattenedPixels()
		if err != nil {
			return err
		}
		aux.applyFlatten(buf, bias, rig)
	}

	buf, bias, rig, err := c.flattenedPixels()
	if err != nil {
		return err
	}
	w, h := c.w, c.h0
	c.applyFlatten(buf, bias, rig)

	newVS := make([]int32, w*h)
	c.vs = newVS
	for _, aux := range c.attached {
		aux.vs = newVS
	}
	return c.buildEnergyMap()
}

// flattenedPixels materialises what the carver's pixel/bias/rigidity arrays
// would look like compacted to the current live window, without mutating
// the carver yet (so Flatten can compute every member's new state before
// committing any of them).
func (c *Carver) flattenedPixels() (*PixelBuffer, []float64, []float64, error) {
	w, h := c.w, c.h0
	buf, err := NewPixelBuffer(c.buf.Depth, c.buf.ImageType, c.buf.Channels, c.buf.AlphaChannel, c.buf.BlackChannel, w*h)
	if err != nil {
		return nil, nil, nil, outOfMemory("Flatten", err)
	}
	bias := make([]float64, w*h)
	var rig []float64
	if c.rigidityMask != nil {
		rig = make([]float64, w*h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			now := c.rawAt(y, x)
			dst := y*w + x
			buf.CopyPixel(dst, c.buf, int(now))
			bias[dst] = c.bias[now]
			if rig != nil {
				rig[dst] = c.rigidityMaskAt(now)
			}
		}
	}
	return buf, bias, rig, nil
}

func (c *Carver) applyFlatten(buf *PixelBuffer, bias, rig []float64) {
	w, h := c.w, c.h0

	c.buf = buf
	c.bias = bias
	c.rigidityMask = rig
	c.w0, c.h0 = w, h
	c.wStart, c.hStart = w, h
	c.w, c.h = w, h
	c.level, c.maxLevel = 1, 1

	c.rawStride = w
	c.raw = identityRaw(w * h)

	n := w * h
	c.en = make([]float64, n)
	c.m = make([]float64, n)
	c.least = make([]int32, n)
	c.vpath = make([]int32, h)
	c.vpathX = make([]int32, h)
	c.vsSnapshot = nil
	c.buildRigidityMap()
}

// Transpose rotates the carver's notion of width and height 90 degrees.
// If a schedule is already in progress (level > 1) it flattens first, since
// transposing mid-schedule would leave vs describing a shape that no
// longer matches the buffer.
func (c *Carver) Transpose() error {
	if !c.isRoot() {
		return c.rootOf().Transpose()
	}
	if c.level > 1 {
		if err := c.Flatten(); err != nil {
			return err
		}
	}
	if err := c.checkCancelled("Transpose"); err != nil {
		return err
	}

	for _, aux := range c.attached {
		aux.transposeSelf()
	}
	c.transposeSelf()

	newVS := make([]int32, c.w0*c.h0)
	c.vs = newVS
	for _, aux := range c.attached {
		aux.vs = newVS
	}

	factor := float64(c.w0) / float64(xmath.Max(c.h0, 1))
	c.rescaleRigidityMap(factor)

	c.transposed = !c.transposed
	for _, aux := range c.attached {
		aux.transposed = c.transposed
	}

	return c.buildEnergyMap()
}

func (c *Carver) transposeSelf() {
	w0, h0 := c.w0, c.h0
	newBuf, _ := NewPixelBuffer(c.buf.Depth, c.buf.ImageType, c.buf.Channels, c.buf.AlphaChannel, c.buf.BlackChannel, w0*h0)
	newBias := make([]float64, w0*h0)
	var newRig []float64
	if c.rigidityMask != nil {
		newRig = make([]float64, w0*h0)
	}

	for y := 0; y < h0; y++ {
		for x := 0; x < w0; x++ {
			src := y*w0 + x
			dst := x*h0 + y
			newBuf.CopyPixel(dst, c.buf, src)
			newBias[dst] = c.bias[src]
			if newRig != nil {
				newRig[dst] = c.rigidityMaskAt(int32(src))
			}
		}
	}

	c.buf = newBuf
	c.bias = newBias
	c.rigidityMask = newRig
	c.w0, c.h0 = h0, w0
	c.wStart, c.hStart = c.w0, c.h0
	c.w, c.h = c.w0, c.h0

	c.rawStride = c.w0
	c.raw = identityRaw(c.w0 * c.h0)

	n := c.w0 * c.h0
	c.en = make([]float64, n)
	c.m = make([]float64, n)
	c.least = make([]int32, n)
	c.vpath = make([]int32, c.h0)
	c.vpathX = make([]int32, c.h0)
	c.vsSnapshot = nil
}

func identityRaw(n int) []int32 {
	r := make([]int32, n)
	for i := range r {
		r[i] = int32(i)
	}
	return r
}

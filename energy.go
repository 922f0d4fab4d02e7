package carve

import "math"

// GradientFunc aggregates the horizontal and vertical finite differences at
// a pixel into a single non-negative energy scalar.
type GradientFunc func(gx, gy float64) float64

// Built-in aggregators. GradXAbs is the default (matching the original's
// default gradient function); GradYAbs and GradNull are additive
// enrichments exposed for completeness of the pluggable slot.
var (
	GradNorm   GradientFunc = func(gx, gy float64) float64 { return math.Hypot(gx, gy) }
	GradSumAbs GradientFunc = func(gx, gy float64) float64 { return math.Abs(gx) + math.Abs(gy) }
	GradXAbs   GradientFunc = func(gx, gy float64) float64 { return math.Abs(gx) }
	GradYAbs   GradientFunc = func(gx, gy float64) float64 { return math.Abs(gy) }
	GradNull   GradientFunc = func(gx, gy float64) float64 { return 0 }
)

func (c *Carver) read(p int32) float64 {
	return c.readFunc(c.buf, int(p))
}

// derivative computes the one-sided or centred finite difference of read()
// along one axis, given the three neighbouring physical indices (prev may
// be -1 at the lower edge, next may be -1 at the upper edge; cur is always
// valid).
func (c *Carver) derivative(prev, cur, next int32) float64 {
	switch {
	case prev < 0:
		return c.read(next) - c.read(cur)
	case next < 0:
		return c.read(cur) - c.read(prev)
	default:
		return (c.read(next) - c.read(prev)) / 2
	}
}

// energyAt computes the gradient-plus-bias energy for logical column x of
// row y, per §4.2: the bias term is scaled by 1/w_start so it stays
// comparable across resize targets.
func (c *Carver) energyAt(y, x int) float64 {
	now := c.rawAt(y, x)

	var xPrev, xNext int32 = -1, -1
	if x > 0 {
		xPrev = c.rawAt(y, x-1)
	}
	if x < c.w-1 {
		xNext = c.rawAt(y, x+1)
	}
	gx := c.derivative(xPrev, now, xNext)

	var yPrev, yNext int32 = -1, -1
	if y > 0 {
		yPrev = c.rawAt(y-1, x)
	}
	if y < c.h0-1 {
		yNext = c.rawAt(y+1, x)
	}
	gy := c.derivative(yPrev, now, yNext)

	return c.gradFunc(gx, gy) + c.bias[now]/float64(c.wStart)
}

// buildEnergyMap fills en for every live cell in the current window.
func (c *Carver) buildEnergyMap() error {
	for y := 0; y < c.h0; y++ {
		if err := c.checkCancelled("buildEnergyMap"); err != nil {
			return err
		}
		for x := 0; x < c.w; x++ {
			now := c.rawAt(y, x)
			c.en[now] = c.energyAt(y, x)
		}
	}
	return nil
}

// updateEnergyMap recomputes only the cells within deltaX columns of the
// seam's column at each row (vpathX), the only cells whose
// finite-difference neighbours changed after that seam was carved.
func (c *Carver) updateEnergyMap() error {
	for y := 0; y < c.h0; y++ {
		if err := c.checkCancelled("updateEnergyMap"); err != nil {
			return err
		}
		seamCol := int(c.vpathX[y])
		lo := xmathMax0(seamCol - c.deltaX)
		hi := seamCol + c.deltaX
		if hi > c.w-1 {
			hi = c.w - 1
		}
		for x := lo; x <= hi; x++ {
			now := c.rawAt(y, x)
			c.en[now] = c.energyAt(y, x)
		}
	}
	return nil
}

func xmathMax0(x int) int {
	if x < 0 {
		return 0
	}
	return x
}

package carve

import "github.com/liquidcarve/carve/internal/xmath"

// computeMinpathCell fills m/least for logical column x of row y from the
// row above. Row 0 has no predecessor: m equals en there and least is left
// at the sentinel -1.
func (c *Carver) computeMinpathCell(y, x int) {
	now := c.rawAt(y, x)
	if y == 0 {
		c.m[now] = c.en[now]
		c.least[now] = -1
		return
	}

	deltaMin := xmath.Max(-x, -c.deltaX)
	deltaMax := xmath.Min(c.w-1-x, c.deltaX)

	var best float64
	var bestPhys int32 = -1
	first := true

	for dx := deltaMin; dx <= deltaMax; dx++ {
		prevPhys := c.rawAt(y-1, x+dx)
		cost := c.m[prevPhys]
		if c.rigidity > 0 {
			rFact := 1.0
			if c.rigidityMask != nil {
				rFact = c.rigidityMask[now]
			}
			cost += rFact * c.rigidityMap[dx+c.deltaX]
		}

		switch {
		case first:
			best, bestPhys, first = cost, prevPhys, false
		case c.leftright == 1:
			if cost <= best {
				best, bestPhys = cost, prevPhys
			}
		default:
			if cost < best {
				best, bestPhys = cost, prevPhys
			}
		}
	}

	c.least[now] = bestPhys
	c.m[now] = c.en[now] + best
}

// buildMinpathMap rebuilds m/least for every live cell, row by row.
func (c *Carver) buildMinpathMap() error {
	for y := 0; y < c.h0; y++ {
		if err := c.checkCancelled("buildMinpathMap"); err != nil {
			return err
		}
		for x := 0; x < c.w; x++ {
			c.computeMinpathCell(y, x)
		}
	}
	return nil
}

// updateMinpathMap recomputes m/least only in the band of columns that
// could have changed after the seam at vpathX was carved. The band starts
// at the neighbourhood of the removed seam's own column and is carried
// forward row by row, taking in that row's seam column and widening by
// deltaX on both sides; the two shortcut rules from §4.5 trim it as soon as
// a recomputed cell turns out identical to its old value, which keeps the
// amortised cost close to buildMinpathMap's without resorting to a full
// rebuild on every seam.
func (c *Carver) updateMinpathMap() error {
	if c.h0 == 0 {
		return nil
	}

	seam0 := int(c.vpathX[0])
	xMin := xmath.Max(0, seam0-c.deltaX)
	xMax := xmath.Min(c.w-1, seam0+c.deltaX)

	for y := 0; y < c.h0; y++ {
		if err := c.checkCancelled("updateMinpathMap"); err != nil {
			return err
		}
		seamCol := int(c.vpathX[y])

		lo := xmath.Max(0, xmath.Min(xMin, seamCol)-c.deltaX)
		hi := xmath.Min(c.w-1, xmath.Max(xMax, seamCol)+c.deltaX)

		newXMin := lo
		newXMax := hi
		for x := lo; x <= hi; x++ {
			now := c.rawAt(y, x)
			oldM, oldLeast := c.m[now], c.least[now]
			c.computeMinpathCell(y, x)
			unchanged := c.m[now] == oldM && c.least[now] == oldLeast

			if x == newXMin && x < seamCol && unchanged {
				newXMin = x + 1
			}
			if x >= seamCol && unchanged {
				newXMax = x
				break
			}
		}
		xMin, xMax = newXMin, newXMax
	}
	return nil
}

// findColumn scans row y's live window for the column holding physical
// index phys, recovering vpath_x during seam extraction.
func (c *Carver) findColumn(y int, phys int32) int {
	base := y * c.rawStride
	for x := 0; x < c.w; x++ {
		if c.raw[base+x] == phys {
			return x
		}
	}
	return -1
}

// extractSeam finds the lowest-cost seam in the current m/least map and
// records its physical path (vpath) and logical columns (vpathX).
func (c *Carver) extractSeam() error {
	if err := c.checkCancelled("extractSeam"); err != nil {
		return err
	}

	y := c.h0 - 1
	var best float64
	var bestPhys int32
	var bestX int
	first := true

	for x := 0; x < c.w; x++ {
		phys := c.rawAt(y, x)
		cost := c.m[phys]
		switch {
		case first:
			best, bestPhys, bestX, first = cost, phys, x, false
		case c.leftright == 1:
			if cost <= best {
				best, bestPhys, bestX = cost, phys, x
			}
		default:
			if cost < best {
				best, bestPhys, bestX = cost, phys, x
			}
		}
	}
	c.vpath[y] = bestPhys
	c.vpathX[y] = int32(bestX)

	for y := c.h0 - 2; y >= 0; y-- {
		phys := c.least[c.vpath[y+1]]
		c.vpath[y] = phys
		c.vpathX[y] = int32(c.findColumn(y, phys))
	}
	return nil
}

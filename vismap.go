package carve

// buildMaps extends the visibility-map schedule to depth levels. It is
// idempotent and progressive: a depth already covered by maxLevel returns
// immediately, and a deeper call only computes the additional levels, it
// never redoes work already stamped into vs.
func (c *Carver) buildMaps(depth int) error {
	if depth <= c.maxLevel {
		return nil
	}
	root := c.rootOf()
	if root != c {
		return root.buildMaps(depth)
	}

	c.w = c.wStart - c.maxLevel + 1
	if err := c.buildEnergyMap(); err != nil {
		return err
	}
	if err := c.buildMinpathMap(); err != nil {
		return err
	}

	switchEvery := 0
	if c.lrSwitchFrequency > 0 {
		switchEvery = (depth-c.maxLevel-1)/c.lrSwitchFrequency + 1
		if switchEvery < 1 {
			switchEvery = 1
		}
	}

	// The removal schedule only ever has wStart real levels to give: once
	// w has shrunk to a single column there is nothing left to extract,
	// and any depth beyond wStart is purely enlargement information that
	// inflate derives from the completed removal ranks rather than from
	// further seam extraction.
	removalDepth := depth
	if removalDepth > c.wStart {
		removalDepth = c.wStart
	}

	total := removalDepth - c.maxLevel
	seamsDone := 0
	lastReported := 0.0
	c.progress.reporter.Init(c.progress.initWidthMessage)

	for l := c.maxLevel; l < removalDepth; l++ {
		if err := c.checkCancelled("buildMaps"); err != nil {
			return err
		}

		if switchEvery > 0 && seamsDone > 0 && seamsDone%switchEvery == 0 {
			c.leftright = 1 - c.leftright
			if err := c.buildMinpathMap(); err != nil {
				return err
			}
		}

		if err := c.extractSeam(); err != nil {
			return err
		}
		for y := 0; y < c.h0; y++ {
			c.vs[c.vpath[y]] = int32(l)
		}

		c.level++
		c.carve()

		if c.w > 1 {
			if err := c.updateEnergyMap(); err != nil {
				return err
			}
			if err := c.updateMinpathMap(); err != nil {
				return err
			}
		} else {
			c.stampLastColumn()
			seamsDone++
			break
		}

		seamsDone++
		if total > 0 {
			fraction := float64(seamsDone) / float64(total)
			if fraction-lastReported >= c.progress.updateStep || fraction >= 1 {
				c.progress.reporter.Update(fraction)
				lastReported = fraction
			}
		}
	}
	c.progress.reporter.End(c.progress.endWidthMessage)

	// vs now holds a complete rank 1..wStart for every physical pixel
	// (the "last seam" stamp reuses w0, which equals wStart here); that
	// is exactly the state a VMap dump needs to restore before replaying
	// any enlargement, so it is captured once, the first time the
	// removal schedule completes.
	if c.vsSnapshot == nil && removalDepth == c.wStart {
		c.vsSnapshot = append([]int32(nil), c.vs[:c.wStart*c.hStart]...)
	}

	// inflate runs before maxLevel advances to removalDepth (a later
	// inflate's duplicate-band math reads c.maxLevel as it stood when this
	// schedule started); inflateSelf sets level/maxLevel itself once it's done.
	// A call that only extends the removal schedule (no enlargement)
	// advances them here instead.
	if depth > c.wStart {
		if err := c.inflate(depth - c.wStart); err != nil {
			return err
		}
	} else {
		c.level = removalDepth
		c.maxLevel = removalDepth
	}

	c.w = c.wStart
	for _, aux := range c.attached {
		aux.w = aux.wStart
	}
	return nil
}

// stampLastColumn handles the single remaining live column when w has
// shrunk to 1: its pixels belong to the last seam, stamped with w0 per the
// "last-seam pass" described in §4.6.
func (c *Carver) stampLastColumn() {
	for y := 0; y < c.h0; y++ {
		now := c.rawAt(y, 0)
		c.vs[now] = int32(c.w0)
	}
}

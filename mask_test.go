package carve

import "testing"

func newTestCarver(t *testing.T, w, h int) *Carver {
	t.Helper()
	buf := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(10*y + x) })
	c, err := New(buf, w, h, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c
}

func TestAddBiasAreaAccumulates(t *testing.T) {
	const w, h = 4, 4
	c := newTestCarver(t, w, h)

	mask := columnStripeMask(w, h, 1)
	if err := c.AddBiasArea(1, mask, 3, 0, 0, w, h); err != nil {
		t.Fatalf("AddBiasArea 1: %v", err)
	}
	first := c.bias[1]
	if first <= 0 {
		t.Fatalf("bias after first AddBiasArea = %v, want > 0", first)
	}

	if err := c.AddBiasArea(1, mask, 3, 0, 0, w, h); err != nil {
		t.Fatalf("AddBiasArea 2: %v", err)
	}
	if got, want := c.bias[1], first*2; got != want {
		t.Fatalf("bias after second AddBiasArea = %v, want %v (accumulated)", got, want)
	}

	// A column outside the masked stripe must stay untouched.
	if c.bias[0] != 0 {
		t.Fatalf("bias[0] = %v, want 0 (outside the masked column)", c.bias[0])
	}
}

func TestAddBiasAreaSignFlipsDirection(t *testing.T) {
	const w, h = 4, 4
	mask := columnStripeMask(w, h, 2)

	discard := newTestCarver(t, w, h)
	if err := discard.AddBiasArea(-1, mask, 3, 0, 0, w, h); err != nil {
		t.Fatalf("AddBiasArea discard: %v", err)
	}
	preserve := newTestCarver(t, w, h)
	if err := preserve.AddBiasArea(1, mask, 3, 0, 0, w, h); err != nil {
		t.Fatalf("AddBiasArea preserve: %v", err)
	}

	if discard.bias[2] >= 0 {
		t.Fatalf("discard bias[2] = %v, want negative", discard.bias[2])
	}
	if preserve.bias[2] <= 0 {
		t.Fatalf("preserve bias[2] = %v, want positive", preserve.bias[2])
	}
}

func TestAddBiasAreaAlphaWeighting(t *testing.T) {
	const w, h = 2, 1
	c := newTestCarver(t, w, h)

	// Full-white RGBA mask, half alpha on pixel 0, full alpha on pixel 1:
	// the bias contribution should scale down proportionally for the
	// half-alpha pixel.
	rgba := []uint8{255, 255, 255, 128, 255, 255, 255, 255}
	if err := c.AddBiasArea(1, rgba, 4, 0, 0, w, h); err != nil {
		t.Fatalf("AddBiasArea: %v", err)
	}
	if c.bias[0] >= c.bias[1] {
		t.Fatalf("half-alpha bias[0]=%v should be less than full-alpha bias[1]=%v", c.bias[0], c.bias[1])
	}
}

func TestAddBiasAreaRejectsBadBpp(t *testing.T) {
	c := newTestCarver(t, 2, 2)
	if err := c.AddBiasArea(1, []uint8{0, 0}, 2, 0, 0, 2, 2); err == nil {
		t.Fatalf("expected an error for bpp=2")
	}
}

func TestAddBiasAreaClipsOutOfBounds(t *testing.T) {
	const w, h = 4, 4
	c := newTestCarver(t, w, h)
	mask := columnStripeMask(w, h, 0)
	// Offset the area entirely outside the carver; nothing should change
	// and no index panic should occur.
	if err := c.AddBiasArea(1, mask, 3, w, h, w, h); err != nil {
		t.Fatalf("AddBiasArea out of bounds: %v", err)
	}
	for i, b := range c.bias {
		if b != 0 {
			t.Fatalf("bias[%d] = %v, want 0 for an entirely out-of-range area", i, b)
		}
	}
}

func TestSetRigidityMaskAreaReplaces(t *testing.T) {
	const w, h = 4, 4
	c := newTestCarver(t, w, h)

	white := columnStripeMask(w, h, 1)
	if err := c.SetRigidityMaskArea(white, 3, 0, 0, w, h); err != nil {
		t.Fatalf("SetRigidityMaskArea 1: %v", err)
	}
	if c.rigidityMask[1] != 1 {
		t.Fatalf("rigidityMask[1] = %v, want 1 after a fully-white area", c.rigidityMask[1])
	}

	black := make([]uint8, w*h*3)
	if err := c.SetRigidityMaskArea(black, 3, 0, 0, w, h); err != nil {
		t.Fatalf("SetRigidityMaskArea 2: %v", err)
	}
	if c.rigidityMask[1] != 0 {
		t.Fatalf("rigidityMask[1] = %v, want 0 after overwriting with a black area (replace, not accumulate)", c.rigidityMask[1])
	}
}

func TestSetRigidityMaskDefaultsToOne(t *testing.T) {
	const w, h = 3, 3
	c := newTestCarver(t, w, h)
	if c.rigidityMask != nil {
		t.Fatalf("rigidityMask should be nil until first set")
	}
	stripe := columnStripeMask(w, h, 0)
	if err := c.SetRigidityMaskArea(stripe, 3, 0, 0, 1, h); err != nil {
		t.Fatalf("SetRigidityMaskArea: %v", err)
	}
	for x := 1; x < w; x++ {
		if c.rigidityMask[x] != 1 {
			t.Fatalf("rigidityMask[%d] = %v, want the default 1 outside the set area", x, c.rigidityMask[x])
		}
	}
}

func TestBuildRigidityMapSymmetric(t *testing.T) {
	buf := newGreyBuffer(t, 5, 5, func(x, y int) uint8 { return uint8(10*y + x) })
	c, err := New(buf, 5, 5, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(2, 0.5); err != nil {
		t.Fatalf("Init: %v", err)
	}
	n := len(c.rigidityMap)
	if c.rigidityMap[c.deltaX] != 0 {
		t.Fatalf("rigidityMap at dx=0 = %v, want 0", c.rigidityMap[c.deltaX])
	}
	for i := 0; i < n/2; i++ {
		if c.rigidityMap[i] != c.rigidityMap[n-1-i] {
			t.Errorf("rigidityMap[%d]=%v != rigidityMap[%d]=%v, want symmetric about dx=0",
				i, c.rigidityMap[i], n-1-i, c.rigidityMap[n-1-i])
		}
	}
}

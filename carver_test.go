package carve

import "testing"

func newGreyBuffer(t *testing.T, w, h int, fill func(x, y int) uint8) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(ColorDepth8, Grey, 1, -1, -1, w*h)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.SetChannel(y*w+x, 0, float64(fill(x, y)))
		}
	}
	return buf
}

// columnStripeMask builds a w*h*3 RGB mask that is white on column `col`
// and black elsewhere, the shape AddBiasArea expects.
func columnStripeMask(w, h, col int) []uint8 {
	rgb := make([]uint8, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == col {
				base := (y*w + x) * 3
				rgb[base], rgb[base+1], rgb[base+2] = 255, 255, 255
			}
		}
	}
	return rgb
}

func TestIdentityResize(t *testing.T) {
	const w, h = 4, 4
	buf := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(16*y + x) })

	c, err := New(buf, w, h, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Resize(w, h); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := c.Flatten(); err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if c.Width() != w || c.Height() != h {
		t.Fatalf("got %dx%d, want %dx%d", c.Width(), c.Height(), w, h)
	}
	out := c.Buffer()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := c.rawAt(y, x)
			want := float64(16*y + x)
			if got := out.Channel(int(p), 0); got != want {
				t.Errorf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestDownscaleByOneColumn(t *testing.T) {
	const w, h = 5, 3
	buf := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(10*y + x) })

	c, err := New(buf, w, h, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(0, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.SetEnergyFunction(GradNull)
	if err := c.AddBiasArea(-1, columnStripeMask(w, h, 2), 3, 0, 0, w, h); err != nil {
		t.Fatalf("AddBiasArea: %v", err)
	}

	if err := c.Resize(4, h); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	if c.Width() != 4 {
		t.Fatalf("width = %d, want 4", c.Width())
	}
	for y := 0; y < h; y++ {
		row := c.ScanLine(y)
		if len(row) != 4 {
			t.Fatalf("row %d: %d pixels, want 4", y, len(row))
		}
		for _, phys := range row {
			x := int(phys) - y*w
			if x == 2 {
				t.Errorf("row %d still contains carved column 2 (phys %d)", y, phys)
			}
		}
	}
}

func TestAttachedSync(t *testing.T) {
	const w, h = 4, 4
	primary := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(16*y + x) })
	mask := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(100 + x) })

	root, err := New(primary, w, h, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := root.Init(0, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	root.SetEnergyFunction(GradNull)
	if err := root.AddBiasArea(-1, columnStripeMask(w, h, 1), 3, 0, 0, w, h); err != nil {
		t.Fatalf("AddBiasArea: %v", err)
	}

	aux, err := New(mask, w, h, 1)
	if err != nil {
		t.Fatalf("New aux: %v", err)
	}
	if err := aux.Init(0, 0); err != nil {
		t.Fatalf("Init aux: %v", err)
	}
	if err := root.Attach(aux); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if err := root.Resize(3, h); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	if aux.Width() != 3 || aux.Height() != h {
		t.Fatalf("aux size = %dx%d, want 3x%d", aux.Width(), aux.Height(), h)
	}
	if len(aux.vs) == 0 || &aux.vs[0] != &root.vs[0] {
		t.Fatalf("aux.vs does not alias root.vs")
	}

	for y := 0; y < h; y++ {
		primaryRow := root.ScanLine(y)
		auxRow := aux.ScanLine(y)
		if len(primaryRow) != len(auxRow) {
			t.Fatalf("row %d: primary has %d cols, aux has %d", y, len(primaryRow), len(auxRow))
		}
		for x, phys := range primaryRow {
			wantAuxPhys := phys // same w0 stride, same (x,y)->index mapping
			if auxRow[x] != wantAuxPhys {
				t.Errorf("row %d col %d: primary phys %d, aux phys %d", y, x, phys, auxRow[x])
			}
		}
	}
}

func TestMasksOnlyNeverResizedIndependently(t *testing.T) {
	const w, h = 4, 4
	primary := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(x) })
	mask := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(x) })

	root, _ := New(primary, w, h, 1)
	_ = root.Init(0, 0)
	aux, _ := New(mask, w, h, 1)
	_ = aux.Init(0, 0)
	if err := root.AttachMasksOnly(aux); err != nil {
		t.Fatalf("AttachMasksOnly: %v", err)
	}

	root.setWidth(2)
	if aux.w != w {
		t.Fatalf("masks-only aux.w changed to %d, want unchanged %d", aux.w, w)
	}
}

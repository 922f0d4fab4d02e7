package carve

import "testing"

func newRGBBuffer(t *testing.T, w, h int, fill func(x, y int) (r, g, b uint8)) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(ColorDepth8, RGB, 3, -1, -1, w*h)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := fill(x, y)
			p := y*w + x
			buf.SetChannel(p, 0, float64(r))
			buf.SetChannel(p, 1, float64(g))
			buf.SetChannel(p, 2, float64(b))
		}
	}
	return buf
}

func TestTransposeRoundTrip(t *testing.T) {
	const w, h = 6, 4
	buf := newRGBBuffer(t, w, h, func(x, y int) (uint8, uint8, uint8) {
		return uint8(x * 10), uint8(y * 10), uint8(x + y)
	})

	c, err := New(buf, w, h, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := c.Transpose(); err != nil {
		t.Fatalf("Transpose 1: %v", err)
	}
	if err := c.Transpose(); err != nil {
		t.Fatalf("Transpose 2: %v", err)
	}

	if c.Width() != w || c.Height() != h {
		t.Fatalf("size after double transpose = %dx%d, want %dx%d", c.Width(), c.Height(), w, h)
	}
	out := c.Buffer()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := c.rawAt(y, x)
			wantR, wantG, wantB := uint8(x*10), uint8(y*10), uint8(x+y)
			if out.Channel(int(p), 0) != float64(wantR) ||
				out.Channel(int(p), 1) != float64(wantG) ||
				out.Channel(int(p), 2) != float64(wantB) {
				t.Errorf("pixel (%d,%d) changed after double transpose", x, y)
			}
		}
	}
}

func TestFlattenIdempotent(t *testing.T) {
	const w, h = 4, 4
	buf := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(16*y + x) })
	c, err := New(buf, w, h, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Flatten(); err != nil {
		t.Fatalf("Flatten 1: %v", err)
	}
	first := append([]int32(nil), c.raw...)
	if err := c.Flatten(); err != nil {
		t.Fatalf("Flatten 2: %v", err)
	}
	if len(first) != len(c.raw) {
		t.Fatalf("raw length changed across idempotent flatten")
	}
	for i := range first {
		if first[i] != c.raw[i] {
			t.Fatalf("raw[%d] changed across idempotent flatten: %d vs %d", i, first[i], c.raw[i])
		}
	}
}

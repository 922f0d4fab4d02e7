package carve

import "testing"

func buildResizedBuffer(t *testing.T, w, h, target int) []float64 {
	t.Helper()
	buf := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(10*y + x) })
	c, err := New(buf, w, h, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Resize(target, h); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := c.Flatten(); err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	out := make([]float64, c.Width()*c.Height())
	for i := range out {
		p := c.rawAt(i/c.Width(), i%c.Width())
		out[i] = c.Buffer().Channel(int(p), 0)
	}
	return out
}

func TestVMapPersistenceRoundTrip(t *testing.T) {
	const w, h, target = 4, 4, 3

	direct := buildResizedBuffer(t, w, h, target)

	buf := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(10*y + x) })
	c, err := New(buf, w, h, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Resize(target, h); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	vm, err := c.DumpVMap("roundtrip")
	if err != nil {
		t.Fatalf("DumpVMap: %v", err)
	}

	fresh := newGreyBuffer(t, w, h, func(x, y int) uint8 { return uint8(10*y + x) })
	d, err := New(fresh, w, h, 1)
	if err != nil {
		t.Fatalf("New fresh: %v", err)
	}
	if err := d.Init(1, 0); err != nil {
		t.Fatalf("Init fresh: %v", err)
	}
	if err := d.LoadVMap(vm); err != nil {
		t.Fatalf("LoadVMap: %v", err)
	}
	if err := d.Resize(target, h); err != nil {
		t.Fatalf("Resize after load: %v", err)
	}
	if err := d.Flatten(); err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	loaded := make([]float64, d.Width()*d.Height())
	for i := range loaded {
		p := d.rawAt(i/d.Width(), i%d.Width())
		loaded[i] = d.Buffer().Channel(int(p), 0)
	}

	if len(direct) != len(loaded) {
		t.Fatalf("direct has %d samples, loaded has %d", len(direct), len(loaded))
	}
	for i := range direct {
		if direct[i] != loaded[i] {
			t.Errorf("sample %d: direct %v, loaded %v", i, direct[i], loaded[i])
		}
	}
}

func TestEncodeDecodeVMap(t *testing.T) {
	vm := &VMap{
		Width:      2,
		Height:     2,
		Depth:      2,
		Transposed: false,
		Comment:    "test",
		Ranks:      []int32{1, 2, 2, 1},
	}
	data, err := EncodeVMap(vm)
	if err != nil {
		t.Fatalf("EncodeVMap: %v", err)
	}
	got, err := DecodeVMap(data, nil)
	if err != nil {
		t.Fatalf("DecodeVMap: %v", err)
	}
	if got.Width != vm.Width || got.Height != vm.Height || got.Depth != vm.Depth || got.Transposed != vm.Transposed {
		t.Fatalf("header mismatch: got %+v, want %+v", got, vm)
	}
	if len(got.Ranks) != len(vm.Ranks) {
		t.Fatalf("ranks length mismatch: got %d, want %d", len(got.Ranks), len(vm.Ranks))
	}
	for i := range vm.Ranks {
		if got.Ranks[i] != vm.Ranks[i] {
			t.Errorf("rank %d: got %d, want %d", i, got.Ranks[i], vm.Ranks[i])
		}
	}
}

func TestDecodeVMapMissingRequiredTag(t *testing.T) {
	vm := &VMap{Width: 2, Height: 1, Depth: 1, Ranks: []int32{1, 1}}
	data, err := EncodeVMap(vm)
	if err != nil {
		t.Fatalf("EncodeVMap: %v", err)
	}
	// Corrupt the header by truncating it to drop the depth tag.
	cut := []byte("VMAP[HEAD[[width=2][height=1]]BODY[")
	bad := append(append([]byte{}, cut...), data[len(data)-10:]...)
	if _, err := DecodeVMap(bad, nil); err == nil {
		t.Fatalf("expected a parse error for a missing required tag")
	}
}

package carve

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// ResizeOrder chooses which axis a combined width+height Resize carves
// first.
type ResizeOrder int

const (
	// ResizeHorizontalFirst carves width, then height.
	ResizeHorizontalFirst ResizeOrder = iota
	// ResizeVerticalFirst carves height, then width.
	ResizeVerticalFirst
)

// Carver is one multi-size representation of one image: the pixel buffer,
// every derived array the seam algorithm needs, and the bookkeeping that
// lets it be resized up or down any number of times.
//
// A Carver is either a root (owns vs and the build schedule) or attached to
// one: attached carvers share the root's vs slice and follow its seam
// schedule exactly, typically carrying a mask or a secondary image that
// must be cropped/stretched in lockstep with the primary.
type Carver struct {
	buf      *PixelBuffer
	channels int

	w0, h0         int
	wStart, hStart int
	w, h           int
	level, maxLevel int
	transposed     bool

	deltaX   int
	rigidity float64

	root     *Carver
	attached []*Carver
	masksOnly bool // an attached carver that never independently resizes

	vs []int32 // owned by the root; attached carvers alias this slice

	// vsSnapshot is the root's vs state captured the first time the removal
	// schedule completes, before any inflate folds insertion ranks into it
	// (LoadVMap also sets it when it restores a complete schedule) — the
	// record a VMap dump needs, since Load's job is to restore this
	// snapshot and re-run inflate itself (see vmapcodec.go).
	vsSnapshot []int32

	en           []float64
	bias         []float64
	rigidityMask []float64
	rigidityMap  []float64 // indexed [dx + deltaX], dx in [-deltaX, deltaX]

	m     []float64
	least []int32

	// raw maps a virtual column index (one per pixel ever materialised at
	// this row, original or inserted) to its current physical slot in
	// rgb/vs/bias/en/m/least. Its row stride grows from wStart to w0 as
	// inflate widens the buffer; rawStride always holds the current value.
	raw       []int32
	rawStride int

	vpath  []int32
	vpathX []int32

	leftright         int
	lrSwitchFrequency int

	gradFunc GradientFunc
	readFunc ReadFunc

	resizeOrder ResizeOrder
	dumpVMaps   bool
	vmapDumps   []*VMap

	progress *progressSpec
	logger   Logger

	cancelled int32 // atomic flag, see Cancel/Cancelled

	cursorX, cursorY int
}

// New adopts buf as the pixel array for a w x h image with the given
// channel count and returns an uninitialised Carver: allocation of the
// derived arrays happens in Init.
func New(buf *PixelBuffer, w, h, channels int) (*Carver, error) {
	if w <= 0 || h <= 0 || channels <= 0 {
		return nil, newError("New", errors.New("width, height and channels must be positive"))
	}
	c := &Carver{
		buf:         buf,
		channels:    channels,
		w0:          w,
		h0:          h,
		wStart:      w,
		hStart:      h,
		w:           w,
		h:           h,
		level:       1,
		maxLevel:    1,
		resizeOrder: ResizeHorizontalFirst,
		gradFunc:    GradXAbs,
		readFunc:    ReadBrightness,
		progress:    newProgressSpec(),
		logger:      defaultLogger,
	}
	c.vs = make([]int32, w*h)
	return c, nil
}

// Init allocates the energy, minpath and raw-index arrays and the rigidity
// lookup table. deltaX bounds how far a seam may step sideways between
// consecutive rows; rigidity scales the cost of that step (0 disables
// rigidity entirely).
func (c *Carver) Init(deltaX int, rigidity float64) error {
	if deltaX < 0 {
		return newError("Init", errors.New("deltaX must be >= 0"))
	}
	if rigidity < 0 {
		return newError("Init", errors.New("rigidity must be >= 0"))
	}
	c.deltaX = deltaX
	c.rigidity = rigidity

	n := c.w0 * c.h0
	c.en = make([]float64, n)
	c.m = make([]float64, n)
	c.least = make([]int32, n)
	c.bias = make([]float64, n)
	c.rigidityMask = nil // absent until a caller loads one

	c.rawStride = c.w0
	c.raw = make([]int32, c.h0*c.w0)
	for y := 0; y < c.h0; y++ {
		for x := 0; x < c.w0; x++ {
			c.raw[y*c.w0+x] = int32(y*c.w0 + x)
		}
	}

	c.vpath = make([]int32, c.h0)
	c.vpathX = make([]int32, c.h0)

	c.buildRigidityMap()

	if err := c.buildEnergyMap(); err != nil {
		return err
	}
	return nil
}

// Attach binds aux as an auxiliary carver that shares this carver's vs
// schedule. aux must have matching w0/h0. aux's own vs slice is discarded;
// from this point its pixels are carved/inflated in lockstep with the
// root's every time a root seam is scheduled.
func (c *Carver) Attach(aux *Carver) error {
	if aux.w0 != c.w0 || aux.h0 != c.h0 {
		return newError("Attach", errors.New("attached carver dimensions must match the root"))
	}
	root := c.rootOf()
	aux.root = root
	aux.vs = root.vs
	root.attached = append(root.attached, aux)
	return nil
}

// AttachMasksOnly behaves like Attach but marks aux so that Resize never
// drives it independently — only the root's schedule ever touches it. This
// mirrors a carrier image (e.g. a debug overlay) that must track the root's
// seams without ever being asked for its own target size.
func (c *Carver) AttachMasksOnly(aux *Carver) error {
	if err := c.Attach(aux); err != nil {
		return err
	}
	aux.masksOnly = true
	return nil
}

func (c *Carver) rootOf() *Carver {
	if c.root != nil {
		return c.root
	}
	return c
}

func (c *Carver) isRoot() bool { return c.root == nil }

// SetEnergyFunction selects the built-in gradient aggregator used by
// buildEnergyMap/updateEnergyMap.
func (c *Carver) SetEnergyFunction(fn GradientFunc) { c.gradFunc = fn }

// SetReadFunction selects how per-pixel brightness samples are taken before
// the gradient is computed.
func (c *Carver) SetReadFunction(fn ReadFunc) { c.readFunc = fn }

// SetResizeOrder chooses which axis Resize carves first on a combined
// width+height request.
func (c *Carver) SetResizeOrder(o ResizeOrder) { c.resizeOrder = o }

// SetSideSwitchFrequency configures the tie-break toggle described in the
// minpath extractor (§4.5); f == 0 disables switching (the default).
func (c *Carver) SetSideSwitchFrequency(f int) { c.lrSwitchFrequency = f }

// SetDumpVMaps enables pushing a VMap snapshot after every axis resize.
// Retrieve them with VMapDumps.
func (c *Carver) SetDumpVMaps(enable bool) { c.dumpVMaps = enable }

// VMapDumps returns every snapshot accumulated while SetDumpVMaps(true) is
// active; reading them does not clear the list.
func (c *Carver) VMapDumps() []*VMap { return c.vmapDumps }

// SetProgress installs the progress callback and its framing messages.
func (c *Carver) SetProgress(p Progress, initW, initH, endW, endH string, updateStep float64) {
	if p == nil {
		p = nullProgress{}
	}
	c.progress = &progressSpec{
		reporter:          p,
		initWidthMessage:  initW,
		initHeightMessage: initH,
		endWidthMessage:   endW,
		endHeightMessage:  endH,
		updateStep:        updateStep,
	}
}

// SetLogger overrides the default stdlib logger used for non-fatal
// warnings (e.g. an unknown VMap tag).
func (c *Carver) SetLogger(l Logger) {
	if l == nil {
		l = defaultLogger
	}
	c.logger = l
}

// Cancel requests cooperative cancellation of any in-progress build. Safe
// to call from another goroutine.
func (c *Carver) Cancel() { atomic.StoreInt32(&c.cancelled, 1) }

// Cancelled reports whether Cancel has been called and not yet cleared.
func (c *Carver) Cancelled() bool { return atomic.LoadInt32(&c.cancelled) != 0 }

func (c *Carver) clearCancel() { atomic.StoreInt32(&c.cancelled, 0) }

func (c *Carver) checkCancelled(op string) error {
	if c.Cancelled() {
		return cancelled(op)
	}
	return nil
}

// Width returns the current logical width, accounting for transposition.
func (c *Carver) Width() int {
	if c.transposed {
		return c.h
	}
	return c.w
}

// Height returns the current logical height, accounting for transposition.
func (c *Carver) Height() int {
	if c.transposed {
		return c.w
	}
	return c.h
}

// Channels returns the channel count of the underlying pixel buffer.
func (c *Carver) Channels() int { return c.channels }

// Buffer exposes the underlying pixel buffer for readout by a caller
// encoding the result.
func (c *Carver) Buffer() *PixelBuffer { return c.buf }

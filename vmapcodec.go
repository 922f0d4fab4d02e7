package carve

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// VMap is the in-memory form of a visibility-map snapshot: the rank a
// carver assigned each physical pixel of its w_start*h_start raster, plus
// enough geometry to restore it onto a compatible carver later.
type VMap struct {
	Width      int
	Height     int
	Depth      int
	Transposed bool
	Comment    string
	Ranks      []int32
}

const vmapTagBound = 1000

// DumpVMap packages the root's current schedule as a VMap: every physical
// pixel of the w_start*h_start raster carries either its removal rank or 0
// if the schedule hasn't reached it yet (a dump doesn't require a complete
// schedule). Once the carver has been inflated at least once, vs itself no
// longer indexes the original wStart*hStart raster (w0 has grown past it),
// so the dump instead reads vsSnapshot, captured the moment the removal
// schedule first reached w=1 (always true by the time an inflate has run,
// since buildMaps only inflates once the removal schedule is complete).
func (c *Carver) DumpVMap(comment string) (*VMap, error) {
	root := c.rootOf()
	if root != c {
		return root.DumpVMap(comment)
	}

	var ranks []int32
	if c.w0 == c.wStart {
		ranks = append([]int32(nil), c.vs[:c.wStart*c.hStart]...)
	} else if c.vsSnapshot != nil {
		ranks = append([]int32(nil), c.vsSnapshot...)
	} else {
		return nil, newError("DumpVMap", errors.New("no removal schedule available to dump"))
	}
	return &VMap{
		Width:      c.wStart,
		Height:     c.hStart,
		Depth:      c.maxLevel,
		Transposed: c.transposed,
		Comment:    comment,
		Ranks:      ranks,
	}, nil
}

// LoadVMap restores a previously dumped schedule onto the root carver.
// Dimensions must match wStart/hStart directly, or their swap if the
// stored orientation differs from the carver's current one. The carver is
// flattened first (any in-progress schedule is discarded), transposed to
// align orientation if needed, then the ranks are copied into vs and
// inflate(depth) replays any enlargement encoded beyond wStart.
func (c *Carver) LoadVMap(vm *VMap) error {
	root := c.rootOf()
	if root != c {
		return root.LoadVMap(vm)
	}

	straight := vm.Width == c.wStart && vm.Height == c.hStart
	swapped := vm.Width == c.hStart && vm.Height == c.wStart
	needTranspose := vm.Transposed != c.transposed
	if (needTranspose && !swapped) || (!needTranspose && !straight) {
		return newError("LoadVMap", errors.Errorf("vmap %dx%d does not match carver %dx%d", vm.Width, vm.Height, c.wStart, c.hStart))
	}

	if err := c.Flatten(); err != nil {
		return err
	}
	if needTranspose {
		if err := c.Transpose(); err != nil {
			return err
		}
	}

	n := c.wStart * c.hStart
	if len(vm.Ranks) != n {
		return newError("LoadVMap", errors.Errorf("vmap carries %d ranks, want %d", len(vm.Ranks), n))
	}
	c.vs = append([]int32(nil), vm.Ranks...)
	for _, aux := range c.attached {
		aux.vs = c.vs
	}

	scheduleDepth := vm.Depth
	if scheduleDepth > c.wStart {
		scheduleDepth = c.wStart
	}
	c.rebuildRawForLevel(scheduleDepth)
	for _, aux := range c.attached {
		aux.rebuildRawForLevel(scheduleDepth)
	}
	c.w = c.wStart - scheduleDepth + 1
	for _, aux := range c.attached {
		if !aux.masksOnly {
			aux.w = c.w
		}
	}
	if scheduleDepth == c.wStart {
		c.vsSnapshot = append([]int32(nil), vm.Ranks...)
	}

	// When an enlargement is replayed, level/maxLevel stay at Flatten's
	// reset value here: inflateSelf advances them itself once it's done.
	if vm.Depth > c.wStart {
		return c.inflate(vm.Depth - c.wStart)
	}
	c.level = scheduleDepth
	c.maxLevel = scheduleDepth
	return nil
}

// rebuildRawForLevel recomputes raw directly from vs instead of replaying
// each carve() step or trusting whatever window the last build happened to
// leave raw sitting at: a physical pixel stays in row y's live window at the
// given level iff it was never scheduled (vs==0) or its rank falls at or
// beyond level, and survivors keep their original left-to-right order since
// carving never reorders what's left. This holds at any w0, inflated or
// not: every physical pixel's vs is either 0 or a distinct rank in
// [1, w0], so level = w0-target+1 recovers exactly the target-width window,
// whether that window sits below wStart (a plain shrink) or above it (a
// readout narrower than an already-inflated w0).
func (c *Carver) rebuildRawForLevel(level int) {
	newRaw := make([]int32, c.h0*c.w0)
	for y := 0; y < c.h0; y++ {
		base := y * c.w0
		out := 0
		for x := 0; x < c.w0; x++ {
			p := int32(base + x)
			if r := c.vs[p]; r == 0 || int(r) >= level {
				newRaw[base+out] = p
				out++
			}
		}
	}
	c.raw = newRaw
	c.rawStride = c.w0
}

// EncodeVMap renders vm in the VMAP[HEAD[...]BODY[...]] wire format: a
// bracket-delimited tag header (width/height/orientation/depth/comment)
// followed by the width*height ranks as big-endian signed 32-bit integers.
func EncodeVMap(vm *VMap) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("VMAP[HEAD[")

	orientation := "0"
	if vm.Transposed {
		orientation = "1"
	}
	tags := []struct{ name, value string }{
		{"width", strconv.Itoa(vm.Width)},
		{"height", strconv.Itoa(vm.Height)},
		{"orientation", orientation},
		{"depth", strconv.Itoa(vm.Depth)},
	}
	if vm.Comment != "" {
		tags = append(tags, struct{ name, value string }{"comment", vm.Comment})
	}
	for _, t := range tags {
		if len(t.name) > vmapTagBound || len(t.value) > vmapTagBound {
			return nil, newError("EncodeVMap", errors.Errorf("tag %q exceeds the %d byte bound", t.name, vmapTagBound))
		}
		fmt.Fprintf(&buf, "[%s=%s]", t.name, t.value)
	}
	buf.WriteString("]BODY[")

	want := vm.Width * vm.Height
	if len(vm.Ranks) != want {
		return nil, newError("EncodeVMap", errors.Errorf("%d ranks, want %d", len(vm.Ranks), want))
	}
	for _, r := range vm.Ranks {
		if err := binary.Write(&buf, binary.BigEndian, r); err != nil {
			return nil, outOfMemory("EncodeVMap", err)
		}
	}
	buf.WriteString("]]")
	return buf.Bytes(), nil
}

// DecodeVMap parses the VMAP[...] wire format written by EncodeVMap.
// Unknown tags are ignored with a warning logged through logger (nil
// selects the package default). Any of width/height/depth/orientation
// missing from the header is a parse error; a comment tag is optional and,
// when present, is kept in vm.Comment for round-tripping.
func DecodeVMap(data []byte, logger Logger) (*VMap, error) {
	if logger == nil {
		logger = defaultLogger
	}
	const prefix = "VMAP[HEAD["
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return nil, newError("DecodeVMap", errors.New("missing VMAP[HEAD[ magic prefix"))
	}
	rest := data[len(prefix):]

	headEnd := bytes.Index(rest, []byte("]BODY["))
	if headEnd < 0 {
		return nil, newError("DecodeVMap", errors.New("missing ]BODY[ section marker"))
	}
	head := rest[:headEnd]
	body := rest[headEnd+len("]BODY["):]
	if !bytes.HasSuffix(body, []byte("]]")) {
		return nil, newError("DecodeVMap", errors.New("missing closing ]] terminator"))
	}
	body = body[:len(body)-2]

	tags, err := parseVMapTags(head)
	if err != nil {
		return nil, err
	}

	vm := &VMap{}
	seen := map[string]bool{}
	for _, t := range tags {
		switch t.name {
		case "width":
			vm.Width, err = strconv.Atoi(t.value)
		case "height":
			vm.Height, err = strconv.Atoi(t.value)
		case "depth":
			vm.Depth, err = strconv.Atoi(t.value)
		case "orientation":
			vm.Transposed = t.value == "1"
		case "comment":
			vm.Comment = t.value
		default:
			logger.Printf("carve: vmap: ignoring unknown tag %q", t.name)
			continue
		}
		if err != nil {
			return nil, newError("DecodeVMap", errors.Wrapf(err, "tag %q", t.name))
		}
		seen[t.name] = true
	}
	for _, required := range []string{"width", "height", "depth", "orientation"} {
		if !seen[required] {
			return nil, newError("DecodeVMap", errors.Errorf("missing required tag %q", required))
		}
	}

	n := vm.Width * vm.Height
	if len(body)%4 != 0 || len(body)/4 != n {
		return nil, newError("DecodeVMap", errors.Errorf("body holds %d bytes, want %d ranks", len(body), n))
	}
	vm.Ranks = make([]int32, n)
	r := bytes.NewReader(body)
	for i := range vm.Ranks {
		if err := binary.Read(r, binary.BigEndian, &vm.Ranks[i]); err != nil {
			return nil, newError("DecodeVMap", errors.Wrap(err, "reading rank body"))
		}
	}
	return vm, nil
}

type vmapTag struct{ name, value string }

// parseVMapTags walks a run of "[name=value]" groups, enforcing the
// per-tag-name and per-tag-value length bound.
func parseVMapTags(head []byte) ([]vmapTag, error) {
	var tags []vmapTag
	for len(head) > 0 {
		if head[0] != '[' {
			return nil, newError("DecodeVMap", errors.New("malformed tag header"))
		}
		end := bytes.IndexByte(head, ']')
		if end < 0 {
			return nil, newError("DecodeVMap", errors.New("unterminated tag"))
		}
		pair := head[1:end]
		eq := bytes.IndexByte(pair, '=')
		if eq < 0 {
			return nil, newError("DecodeVMap", errors.New("tag missing '='"))
		}
		name, value := string(pair[:eq]), string(pair[eq+1:])
		if len(name) > vmapTagBound || len(value) > vmapTagBound {
			return nil, newError("DecodeVMap", errors.Errorf("tag %q exceeds the %d byte bound", name, vmapTagBound))
		}
		tags = append(tags, vmapTag{name, value})
		head = head[end+1:]
	}
	return tags, nil
}

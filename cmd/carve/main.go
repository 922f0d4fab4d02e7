// Command carve is a reference driver over the carve library: decode an
// image, resize it by content-aware seam carving, encode the result.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"

	"github.com/liquidcarve/carve"
	"github.com/liquidcarve/carve/imop"
	"github.com/liquidcarve/carve/internal/cli"
)

// resolveInput returns a local path for o.in, downloading it first if it
// names a remote URL rather than a file on disk.
func resolveInput(in string) (string, error) {
	if !cli.IsValidURL(in) {
		return in, nil
	}
	f, err := cli.DownloadImage(in)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return f.Name(), nil
}

func main() {
	os.Exit(run())
}

type options struct {
	in, out       string
	width, height string
	rigidity      float64
	maxStep       float64
	preservePath  string
	preserveAmt   float64
	discardPath   string
	discardAmt    float64
	rigidityPath  string
	vmapIn        string
	vmapOut       string
	vertical      bool
	switchFreq    int
	energy        string
	quiet         bool
	debugOverlay  string
}

func run() int {
	var o options
	flag.StringVar(&o.in, "in", "", "input image path")
	flag.StringVar(&o.out, "out", "", "output image path")
	flag.StringVar(&o.width, "width", "", "target width, absolute or a percentage like 80%")
	flag.StringVar(&o.height, "height", "", "target height, absolute or a percentage like 80%")
	flag.Float64Var(&o.rigidity, "rigidity", 0, "lateral seam-step rigidity (0 disables)")
	flag.Float64Var(&o.maxStep, "max-step", 1, "accepted but not used by this driver")
	flag.StringVar(&o.preservePath, "preserve-mask", "", "RGB mask image: bright areas attract seams away")
	flag.Float64Var(&o.preserveAmt, "preserve-strength", 0.2, "preservation mask factor")
	flag.StringVar(&o.discardPath, "discard-mask", "", "RGB mask image: bright areas attract seams toward removal")
	flag.Float64Var(&o.discardAmt, "discard-strength", 0.2, "discard mask factor")
	flag.StringVar(&o.rigidityPath, "rigidity-mask", "", "RGB mask image overriding the per-pixel rigidity multiplier")
	flag.StringVar(&o.vmapIn, "vmap-in", "", "load a previously dumped vmap instead of recomputing seams")
	flag.StringVar(&o.vmapOut, "vmap-out", "", "dump the computed vmap to this path after resizing")
	flag.BoolVar(&o.vertical, "vertical-first", false, "carve height before width")
	flag.IntVar(&o.switchFreq, "switch-freq", 0, "side-switch tie-break frequency (0 disables)")
	flag.StringVar(&o.energy, "energy", "brightness", "energy read function: brightness, luma, or sobel")
	flag.BoolVar(&o.quiet, "quiet", false, "suppress the progress spinner")
	flag.StringVar(&o.debugOverlay, "debug-overlay", "", "write the source image with preserve/discard masks tinted on top, for checking mask alignment before a carve")
	flag.Parse()

	if o.in == "" || o.out == "" {
		fmt.Fprintln(os.Stderr, "carve: -in and -out are required")
		flag.Usage()
		return 1
	}

	if err := runResize(o); err != nil {
		log.Printf("carve: %v", err)
		return 1
	}
	return 0
}

func runResize(o options) error {
	inPath, err := resolveInput(o.in)
	if err != nil {
		return err
	}
	img, err := imaging.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	targetW, err := resolveDimension(o.width, srcW, srcW)
	if err != nil {
		return fmt.Errorf("-width: %w", err)
	}
	targetH, err := resolveDimension(o.height, srcH, srcH)
	if err != nil {
		return fmt.Errorf("-height: %w", err)
	}
	warnInflationBound(targetW, srcW, "width")
	warnInflationBound(targetH, srcH, "height")

	if o.debugOverlay != "" {
		if err := writeDebugOverlay(o.debugOverlay, img, o.preservePath, o.discardPath); err != nil {
			return fmt.Errorf("-debug-overlay: %w", err)
		}
	}

	buf, err := imageToBuffer(img)
	if err != nil {
		return err
	}

	c, err := carve.New(buf, srcW, srcH, buf.Channels)
	if err != nil {
		return err
	}
	if err := c.Init(1, o.rigidity); err != nil {
		return err
	}
	if o.vertical {
		c.SetResizeOrder(carve.ResizeVerticalFirst)
	}
	c.SetSideSwitchFrequency(o.switchFreq)
	if err := applyEnergyFunction(c, img, o.energy); err != nil {
		return err
	}
	if err := applyMasks(c, o); err != nil {
		return err
	}

	var spinner *cli.Spinner
	if !o.quiet {
		spinner = cli.NewSpinner(cli.Decorate("resizing", cli.StatusMessage), 80*time.Millisecond, true)
		spinner.Start()
		defer spinner.Stop()
		c.SetProgress(spinnerProgress{spinner}, "carving width...", "carving height...", "width done", "height done", 0.05)
	}

	if o.vmapIn != "" {
		vm, err := loadVMap(o.vmapIn)
		if err != nil {
			return err
		}
		if err := c.LoadVMap(vm); err != nil {
			return err
		}
	}

	if err := c.Resize(targetW, targetH); err != nil {
		return err
	}
	if err := c.Flatten(); err != nil {
		return err
	}

	if o.vmapOut != "" {
		vm, err := c.DumpVMap("carve cli dump")
		if err != nil {
			return err
		}
		if err := saveVMap(o.vmapOut, vm); err != nil {
			return err
		}
	}

	out := bufferToImage(c)
	return saveImage(o.out, out)
}

// resolveDimension parses either an absolute pixel count or a "NN%"
// percentage of src, per the spec's "absolute or percentage" contract.
func resolveDimension(spec string, src, fallback int) (int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return fallback, nil
	}
	if strings.HasSuffix(spec, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(spec, "%"), 64)
		if err != nil {
			return 0, err
		}
		return int(float64(src) * pct / 100), nil
	}
	return strconv.Atoi(spec)
}

// warnInflationBound prints (not errors) when a target exceeds what one
// schedule can enlarge to in a single pass, matching the original CLI's
// warning-only behaviour for the unbounded inflation case.
func warnInflationBound(target, src int, axis string) {
	if target > 2*src-1 {
		fmt.Fprintf(os.Stderr, "carve: warning: requested %s %d exceeds 2*%d-1, results may look repetitive\n", axis, target, src)
	}
}

func applyEnergyFunction(c *carve.Carver, img image.Image, name string) error {
	switch strings.ToLower(name) {
	case "", "brightness":
		c.SetReadFunction(carve.ReadBrightness)
	case "luma":
		c.SetReadFunction(carve.ReadLuma)
	case "sobel":
		c.SetReadFunction(carve.NewSobelReader(img))
	default:
		return fmt.Errorf("unknown -energy %q", name)
	}
	return nil
}

func applyMasks(c *carve.Carver, o options) error {
	if o.preservePath != "" {
		rgb, w, h, err := loadRGBMask(o.preservePath)
		if err != nil {
			return err
		}
		if err := c.AddBiasArea(o.preserveAmt, rgb, 3, 0, 0, w, h); err != nil {
			return err
		}
	}
	if o.discardPath != "" {
		rgb, w, h, err := loadRGBMask(o.discardPath)
		if err != nil {
			return err
		}
		if err := c.AddBiasArea(-o.discardAmt, rgb, 3, 0, 0, w, h); err != nil {
			return err
		}
	}
	if o.rigidityPath != "" {
		rgb, _, _, err := loadRGBMask(o.rigidityPath)
		if err != nil {
			return err
		}
		if err := c.SetRigidityMask(rgb, 3); err != nil {
			return err
		}
	}
	return nil
}

// writeDebugOverlay renders src with its preserve/discard masks tinted on
// top (green for preserve, red for discard) via Porter-Duff source-over
// composition, so a mask can be checked for alignment before spending a
// carve pass on it. Either mask path may be empty; doing nothing for both
// is a no-op, not an error.
func writeDebugOverlay(path string, src image.Image, preservePath, discardPath string) error {
	bounds := src.Bounds()
	dst := imaging.Clone(src)

	op := imop.InitOp()
	op.Set(imop.SrcOver)
	blend := imop.NewBlend()
	blend.Set(imop.Normal)

	overlay := func(maskPath string, tint color.NRGBA) error {
		if maskPath == "" {
			return nil
		}
		layer, err := buildMaskOverlay(bounds, maskPath, tint)
		if err != nil {
			return err
		}
		bitmap := imop.NewBitmap(bounds)
		op.Draw(bitmap, layer, dst, blend)
		dst = bitmap.Img
		return nil
	}
	if err := overlay(preservePath, color.NRGBA{G: 255}); err != nil {
		return err
	}
	if err := overlay(discardPath, color.NRGBA{R: 255}); err != nil {
		return err
	}
	return saveImage(path, dst)
}

// buildMaskOverlay reads a mask image and turns its per-pixel brightness
// into the alpha channel of a solid tint, the translucent layer
// writeDebugOverlay composites on top of the source image.
func buildMaskOverlay(bounds image.Rectangle, path string, tint color.NRGBA) (*image.NRGBA, error) {
	mask, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	layer := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := mask.At(x, y).RGBA()
			bright := (float64(r>>8) + float64(g>>8) + float64(b>>8)) / (3 * 255)
			layer.Set(x, y, color.NRGBA{R: tint.R, G: tint.G, B: tint.B, A: uint8(bright * 255)})
		}
	}
	return layer, nil
}

func loadRGBMask(path string) (rgb []uint8, w, h int, err error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()
	rgb = make([]uint8, w*h*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rgb[i] = uint8(r >> 8)
			rgb[i+1] = uint8(g >> 8)
			rgb[i+2] = uint8(bl >> 8)
			i += 3
		}
	}
	return rgb, w, h, nil
}

func imageToBuffer(img image.Image) (*carve.PixelBuffer, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf, err := carve.NewPixelBuffer(carve.ColorDepth8, carve.RGBA, 4, 3, -1, w*h)
	if err != nil {
		return nil, err
	}
	p := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			buf.SetChannel(p, 0, float64(r>>8))
			buf.SetChannel(p, 1, float64(g>>8))
			buf.SetChannel(p, 2, float64(bl>>8))
			buf.SetChannel(p, 3, float64(a>>8))
			p++
		}
	}
	return buf, nil
}

func bufferToImage(c *carve.Carver) *image.NRGBA {
	w, h := c.Width(), c.Height()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	buf := c.Buffer()
	for {
		x, y, p, ok := c.Scan()
		if !ok {
			break
		}
		i := out.PixOffset(x, y)
		out.Pix[i] = uint8(buf.Channel(int(p), 0))
		out.Pix[i+1] = uint8(buf.Channel(int(p), 1))
		out.Pix[i+2] = uint8(buf.Channel(int(p), 2))
		out.Pix[i+3] = uint8(buf.Channel(int(p), 3))
	}
	return out
}

func saveImage(path string, img image.Image) error {
	if strings.HasSuffix(strings.ToLower(path), ".bmp") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return bmp.Encode(f, img)
	}
	return imaging.Save(img, path)
}

func loadVMap(path string) (*carve.VMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return carve.DecodeVMap(data, nil)
}

func saveVMap(path string, vm *carve.VMap) error {
	data, err := carve.EncodeVMap(vm)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// spinnerProgress adapts internal/cli.Spinner to carve.Progress.
type spinnerProgress struct{ s *cli.Spinner }

func (p spinnerProgress) Init(message string)    { p.s.Message(message) }
func (p spinnerProgress) Update(fraction float64) {}
func (p spinnerProgress) End(message string)     { p.s.Message(message) }

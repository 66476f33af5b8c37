package termrender

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"
	sixelenc "github.com/mattn/go-sixel"
	"github.com/soniakeys/quant/median"
)

// SixelArgs are the render args of the sixel style.
type SixelArgs struct {
	ArgsBase

	// Colors is the palette size, at most 255.
	Colors int
	// Serpentine alternates the scan direction of the error diffusion.
	Serpentine bool
}

// SixelClass is the render class of the sixel style.
var SixelClass = MustClass("Sixel",
	WithBases(GraphicsClass),
	WithArgs(&SixelArgs{Colors: 255}),
)

// sixelStyle encodes frames as Sixel graphics: pixels are scaled to the
// target cell area, reduced to a median-cut palette with Floyd-Steinberg
// error diffusion, then Sixel-encoded.
type sixelStyle struct{}

func init() { registerStyle(sixelStyle{}) }

func (sixelStyle) Name() string        { return "sixel" }
func (sixelStyle) Class() *RenderClass { return SixelClass }

func (sixelStyle) Geometry(ti *TerminalInfo) CellGeometry {
	return GraphicsCellGeometry(ti.CellWidth, ti.CellHeight)
}

func (sixelStyle) Supported(_ *TerminalInfo) bool { return sixelSupported() }

func (s sixelStyle) Render(img image.Image, opts StyleRenderOptions) (string, error) {
	ns, err := opts.Args.Get(SixelClass)
	if err != nil {
		return "", err
	}
	args := ns.(*SixelArgs)
	colors := args.Colors
	if colors < 2 || colors > 255 {
		colors = 255
	}

	geom := s.Geometry(ActiveTerminal())
	scaled := scaleImage(
		flattenAlpha(img, opts.Alpha),
		geom.pixelsForCols(opts.Size.Cols),
		geom.pixelsForLines(opts.Size.Rows),
		ScaleFast,
	)

	palette := median.Quantizer(colors).Palette(scaled).ColorPalette()
	d := dither.NewDitherer([]color.Color(palette))
	d.Matrix = dither.FloydSteinberg
	d.Serpentine = args.Serpentine
	dithered := d.DitherPaletted(scaled)

	buf := getBuf()
	defer putBuf(buf)
	enc := sixelenc.NewEncoder(buf)
	enc.Dither = false // already dithered against the quantized palette
	if err := enc.Encode(dithered); err != nil {
		return "", fmt.Errorf("sixel encode: %w", err)
	}
	return wrapTmuxPassthrough(buf.String()), nil
}

func (s sixelStyle) ParseFormatSuffix(suffix string) (ArgsNamespace, error) {
	if suffix == "" {
		return nil, nil
	}
	args := &SixelArgs{Colors: 255}
	for _, tok := range strings.Split(suffix, ",") {
		switch {
		case tok == "s":
			args.Serpentine = true
		case strings.HasPrefix(tok, "p"):
			n, err := strconv.Atoi(tok[1:])
			if err != nil || n < 2 || n > 255 {
				return nil, styleErrorf(s.Name(), "invalid palette size %q", tok[1:])
			}
			args.Colors = n
		default:
			return nil, styleErrorf(s.Name(), "invalid format suffix %q", suffix)
		}
	}
	return args, nil
}

package termrender

import (
	"image"
	"strings"

	"github.com/charmbracelet/x/mosaic"
)

// HalfblocksArgs are the render args of the halfblocks style.
type HalfblocksArgs struct {
	ArgsBase

	// Dither enables ordered dithering of the color-reduced output.
	Dither bool
}

// HalfblocksClass is the render class of the halfblocks style. Halfblocks
// output is plain text with SGR colors, so support is unconditional.
var HalfblocksClass = MustClass("Halfblocks",
	WithBases(TextClass),
	WithArgs(&HalfblocksArgs{}),
	WithForcedSupport(true),
)

// halfblocksStyle draws two pixel rows per cell with the upper-half-block
// glyph, foreground for the top row and background for the bottom.
type halfblocksStyle struct{}

func init() { registerStyle(halfblocksStyle{}) }

func (halfblocksStyle) Name() string        { return "halfblocks" }
func (halfblocksStyle) Class() *RenderClass { return HalfblocksClass }

func (halfblocksStyle) Geometry(ti *TerminalInfo) CellGeometry {
	return TextCellGeometry(ti.CellRatio())
}

func (halfblocksStyle) Supported(_ *TerminalInfo) bool { return true }

func (s halfblocksStyle) Render(img image.Image, opts StyleRenderOptions) (string, error) {
	ns, err := opts.Args.Get(HalfblocksClass)
	if err != nil {
		return "", err
	}
	args := ns.(*HalfblocksArgs)

	flat := flattenAlpha(img, opts.Alpha)
	m := mosaic.New().
		Width(opts.Size.Cols).
		Height(opts.Size.Rows).
		Dither(args.Dither)
	return strings.TrimSuffix(m.Render(flat), "\n"), nil
}

func (s halfblocksStyle) ParseFormatSuffix(suffix string) (ArgsNamespace, error) {
	switch suffix {
	case "":
		return nil, nil
	case "d":
		return &HalfblocksArgs{Dither: true}, nil
	default:
		return nil, styleErrorf(s.Name(), "invalid format suffix %q", suffix)
	}
}

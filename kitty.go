package termrender

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// kittyChunkSize is the payload limit of a single Kitty graphics escape.
const kittyChunkSize = 4096

// KittyArgs are the render args of the kitty style.
type KittyArgs struct {
	ArgsBase

	// ZIndex is the stacking position of the image relative to text.
	// Negative values draw behind text.
	ZIndex int
}

// KittyClass is the render class of the kitty style.
var KittyClass = MustClass("Kitty",
	WithBases(GraphicsClass),
	WithArgs(&KittyArgs{}),
)

// kittyStyle emits Kitty graphics protocol transmissions: PNG payload,
// base64-encoded, chunked, placed over the requested cell area.
type kittyStyle struct{}

func init() { registerStyle(kittyStyle{}) }

func (kittyStyle) Name() string        { return "kitty" }
func (kittyStyle) Class() *RenderClass { return KittyClass }

func (kittyStyle) Geometry(ti *TerminalInfo) CellGeometry {
	return GraphicsCellGeometry(ti.CellWidth, ti.CellHeight)
}

func (kittyStyle) Supported(_ *TerminalInfo) bool { return kittySupported() }

func (s kittyStyle) Render(img image.Image, opts StyleRenderOptions) (string, error) {
	ns, err := opts.Args.Get(KittyClass)
	if err != nil {
		return "", err
	}
	args := ns.(*KittyArgs)

	payload, err := encodePNGBase64(flattenBackground(img, opts.Alpha))
	if err != nil {
		return "", fmt.Errorf("kitty render: %w", err)
	}

	// First chunk carries the control data; the rest only the continuation
	// flag. m=1 on every chunk but the last.
	chunks := chunkPayload(payload, kittyChunkSize)
	var out strings.Builder
	for i, chunk := range chunks {
		var ctrl string
		if i == 0 {
			ctrl = fmt.Sprintf("f=100,a=T,c=%d,r=%d,z=%d", opts.Size.Cols, opts.Size.Rows, args.ZIndex)
		}
		m := 1
		if i == len(chunks)-1 {
			m = 0
		}
		if ctrl != "" {
			ctrl += ","
		}
		seq := fmt.Sprintf("\x1b_G%sm=%d;%s\x1b\\", ctrl, m, chunk)
		out.WriteString(wrapTmuxPassthrough(seq))
	}
	return out.String(), nil
}

func (s kittyStyle) ParseFormatSuffix(suffix string) (ArgsNamespace, error) {
	if suffix == "" {
		return nil, nil
	}
	if strings.HasPrefix(suffix, "z") {
		z, err := strconv.Atoi(suffix[1:])
		if err != nil {
			return nil, styleErrorf(s.Name(), "invalid z-index %q", suffix[1:])
		}
		return &KittyArgs{ZIndex: z}, nil
	}
	return nil, styleErrorf(s.Name(), "invalid format suffix %q", suffix)
}

// KittyDelete clears all Kitty images from the screen.
func KittyDelete() string {
	return wrapTmuxPassthrough("\x1b_Ga=d,d=A\x1b\\")
}

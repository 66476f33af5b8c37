package termrender

import (
	"fmt"
	"image"
)

// ITerm2Args are the render args of the iterm2 style.
type ITerm2Args struct {
	ArgsBase

	// PreserveAspect lets the terminal keep the image's aspect ratio inside
	// the cell area instead of stretching to fill it.
	PreserveAspect bool
}

// ITerm2Class is the render class of the iterm2 style.
var ITerm2Class = MustClass("ITerm2",
	WithBases(GraphicsClass),
	WithArgs(&ITerm2Args{}),
)

// iterm2Style emits iTerm2 inline images (OSC 1337 File=). The payload is a
// single base64 PNG; iTerm2 imposes no chunking.
type iterm2Style struct{}

func init() { registerStyle(iterm2Style{}) }

func (iterm2Style) Name() string        { return "iterm2" }
func (iterm2Style) Class() *RenderClass { return ITerm2Class }

func (iterm2Style) Geometry(ti *TerminalInfo) CellGeometry {
	return GraphicsCellGeometry(ti.CellWidth, ti.CellHeight)
}

func (iterm2Style) Supported(_ *TerminalInfo) bool { return iterm2Supported() }

func (s iterm2Style) Render(img image.Image, opts StyleRenderOptions) (string, error) {
	ns, err := opts.Args.Get(ITerm2Class)
	if err != nil {
		return "", err
	}
	args := ns.(*ITerm2Args)

	payload, err := encodePNGBase64(flattenBackground(img, opts.Alpha))
	if err != nil {
		return "", fmt.Errorf("iterm2 render: %w", err)
	}

	preserve := 0
	if args.PreserveAspect {
		preserve = 1
	}
	seq := fmt.Sprintf(
		"\x1b]1337;File=inline=1;width=%d;height=%d;preserveAspectRatio=%d:%s\a",
		opts.Size.Cols, opts.Size.Rows, preserve, payload,
	)
	return wrapTmuxPassthrough(seq), nil
}

func (s iterm2Style) ParseFormatSuffix(suffix string) (ArgsNamespace, error) {
	switch suffix {
	case "":
		return nil, nil
	case "p":
		return &ITerm2Args{PreserveAspect: true}, nil
	default:
		return nil, styleErrorf(s.Name(), "invalid format suffix %q", suffix)
	}
}

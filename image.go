package termrender

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// ImageData is the data namespace of ImageClass. It carries the decoder
// handle for the duration of one render or one whole iteration.
type ImageData struct {
	DataBase

	Decoder Decoder
}

// ImageClass is the render class of Image; style classes derive from it
// through TextClass and GraphicsClass.
var ImageClass = MustClass("Image", WithBases(BaseClass), WithData(&ImageData{}))

// Decoder provides the pixel frames of an image source.
type Decoder interface {
	// Bounds returns the pixel size of the source.
	Bounds() image.Point
	// FrameCount returns the number of frames.
	FrameCount() FrameCount
	// Frame returns the frame at offset and its display duration.
	Frame(offset int) (image.Image, time.Duration, error)
	// Close releases decoder resources. A decoder over a caller-supplied
	// image must not invalidate that image.
	Close() error
}

// StaticDecoder adapts a single image.Image. Closing it never touches the
// underlying image, which remains owned by the caller.
type StaticDecoder struct {
	img image.Image
}

func NewStaticDecoder(img image.Image) *StaticDecoder { return &StaticDecoder{img: img} }

func (d *StaticDecoder) Bounds() image.Point    { return d.img.Bounds().Size() }
func (d *StaticDecoder) FrameCount() FrameCount { return Definite(1) }
func (d *StaticDecoder) Close() error           { return nil }

func (d *StaticDecoder) Frame(offset int) (image.Image, time.Duration, error) {
	if offset != 0 {
		return nil, 0, &SeekError{Offset: offset, Count: 1}
	}
	return d.img, 0, nil
}

// GIFDecoder adapts a decoded GIF. Frames are composed against their
// predecessors up front, honoring the background and none disposal methods.
type GIFDecoder struct {
	frames    []*image.RGBA
	durations []time.Duration
	bounds    image.Point
}

// minFrameDuration replaces the zero delays some encoders write.
const minFrameDuration = 10 * time.Millisecond

func NewGIFDecoder(g *gif.GIF) *GIFDecoder {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}

	d := &GIFDecoder{bounds: bounds.Size()}
	canvas := image.NewRGBA(bounds)
	for i, frame := range g.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		composed := image.NewRGBA(bounds)
		copy(composed.Pix, canvas.Pix)
		d.frames = append(d.frames, composed)

		var duration time.Duration
		if i < len(g.Delay) {
			duration = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		if duration < minFrameDuration {
			duration = minFrameDuration
		}
		d.durations = append(d.durations, duration)

		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalBackground {
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		}
	}
	return d
}

func (d *GIFDecoder) Bounds() image.Point    { return d.bounds }
func (d *GIFDecoder) FrameCount() FrameCount { return Definite(len(d.frames)) }
func (d *GIFDecoder) Close() error           { return nil }

func (d *GIFDecoder) Frame(offset int) (image.Image, time.Duration, error) {
	if offset < 0 || offset >= len(d.frames) {
		return nil, 0, &SeekError{Offset: offset, Count: len(d.frames)}
	}
	return d.frames[offset], d.durations[offset], nil
}

// Image is a terminal-renderable image.
//
// Configuration is fluent and applies to subsequent renders:
//
//	img, _ := termrender.Open("gopher.png")
//	frame, _ := termrender.RenderFrame(img.SetSizing(termrender.FitWithin), nil)
type Image struct {
	decoder Decoder

	style     Style
	sizing    SizingMode
	allowance Allowance
	maxSize   *Size
	alpha     Alpha
	duration  *FrameDuration
	extraArgs []ArgsNamespace

	count  FrameCount
	offset int
	closed bool
}

// NewImage creates an Image over a decoder.
func NewImage(dec Decoder) *Image {
	return &Image{
		decoder:   dec,
		style:     DetectStyle(),
		sizing:    FitWithin,
		allowance: DefaultAllowance,
		alpha:     DefaultAlpha,
		count:     dec.FrameCount(),
	}
}

// FromImage creates an Image over a caller-supplied image.Image. The image
// is never closed or modified.
func FromImage(img image.Image) *Image { return NewImage(NewStaticDecoder(img)) }

// FromGIF creates an animated Image over a decoded GIF.
func FromGIF(g *gif.GIF) *Image { return NewImage(NewGIFDecoder(g)) }

// Open decodes an image file (PNG, JPEG or GIF; GIFs keep their animation).
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	if g, err := gif.DecodeAll(f); err == nil && len(g.Image) > 1 {
		return FromGIF(g), nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(img), nil
}

// SetStyle selects the render style.
func (im *Image) SetStyle(s Style) *Image {
	im.style = s
	return im
}

// SetSizing selects how the render size is resolved.
func (im *Image) SetSizing(mode SizingMode) *Image {
	im.sizing = mode
	return im
}

// SetAllowance reserves terminal cells around the render.
func (im *Image) SetAllowance(a Allowance) *Image {
	im.allowance = a
	return im
}

// SetMaxSize caps the render size, replacing the available terminal space.
func (im *Image) SetMaxSize(s Size) *Image {
	im.maxSize = &s
	return im
}

// SetAlpha selects transparency handling.
func (im *Image) SetAlpha(a Alpha) *Image {
	im.alpha = a
	return im
}

// SetFrameDuration overrides the source's frame durations, e.g. to retime a
// GIF. A fixed duration applies to every frame.
func (im *Image) SetFrameDuration(fd FrameDuration) *Image {
	im.duration = &fd
	return im
}

// SetFormat applies a parsed format specifier: alpha handling and the
// style-specific suffix. Alignment and padding fields only affect Draw.
func (im *Image) SetFormat(spec string) (*Image, error) {
	fs, err := ParseFormatSpec(spec)
	if err != nil {
		return nil, err
	}
	if fs.Alpha != nil {
		im.alpha = *fs.Alpha
	}
	if fs.Suffix != "" {
		ns, err := im.style.ParseFormatSuffix(fs.Suffix)
		if err != nil {
			return nil, err
		}
		if ns != nil {
			im.extraArgs = append(im.extraArgs, ns)
		}
	}
	return im, nil
}

// StyleName returns the name of the active render style.
func (im *Image) StyleName() string { return im.style.Name() }

// Class returns the render class of the active style.
func (im *Image) Class() *RenderClass { return im.style.Class() }

// FrameCount returns the source's frame count.
func (im *Image) FrameCount() FrameCount { return im.count }

// FrameDuration reports dynamic durations for animated sources unless an
// instance override is set.
func (im *Image) FrameDuration() FrameDuration {
	if im.duration != nil {
		return *im.duration
	}
	if im.count.IsDefinite() && im.count.Count() > 1 {
		return DynamicDuration
	}
	return im.Class().DefaultFrameDuration()
}

// Tell returns the current frame offset.
func (im *Image) Tell() int { return im.offset }

// Seek moves the current frame offset.
func (im *Image) Seek(offset int, whence SeekWhence) (int, error) {
	if im.count.IsIndefinite() {
		return 0, &IndefiniteSeekError{}
	}
	abs, err := resolveSeek(offset, whence, im.offset, im.count.Count())
	if err != nil {
		return 0, err
	}
	im.offset = abs
	return abs, nil
}

// RenderSize resolves the size the next render will use against the active
// terminal.
func (im *Image) RenderSize() (Size, error) {
	ti := ActiveTerminal()
	return ResolveSize(
		im.decoder.Bounds(),
		im.sizing,
		im.style.Geometry(ti),
		im.allowance,
		ti.Size(),
		im.maxSize,
	)
}

// SeedRenderData fills the core namespace and hands the decoder to the
// render data. The decoder handle outlives a single Render only while an
// iteration is running.
func (im *Image) SeedRenderData(data *RenderData, iterating bool) error {
	if im.closed {
		return stateErrorf("image has been closed")
	}
	size, err := im.RenderSize()
	if err != nil {
		return err
	}

	core := data.Core()
	core.Size = size
	core.FrameOffset = im.offset
	core.Iteration = iterating

	ns, err := data.Get(ImageClass)
	if err != nil {
		return err
	}
	ns.(*ImageData).Decoder = im.decoder
	return nil
}

// Render renders the frame selected by the core data namespace.
func (im *Image) Render(data *RenderData, args *RenderArgs) (*Frame, error) {
	if im.closed {
		return nil, stateErrorf("image has been closed")
	}
	if args == nil || len(im.extraArgs) > 0 {
		var err error
		if args == nil {
			args, err = NewRenderArgs(im.Class(), im.extraArgs...)
		} else {
			args, err = args.With(im.extraArgs...)
		}
		if err != nil {
			return nil, err
		}
	}

	core := data.Core()
	ns, err := data.Get(ImageClass)
	if err != nil {
		return nil, err
	}
	dec := ns.(*ImageData).Decoder

	pixels, duration, err := dec.Frame(core.FrameOffset)
	if err != nil {
		return nil, err
	}
	if im.duration != nil && !im.duration.IsDynamic() {
		duration = im.duration.Duration()
	}
	core.Duration = duration

	text, err := im.style.Render(pixels, StyleRenderOptions{
		Size:  core.Size,
		Alpha: im.alpha,
		Args:  args,
	})
	if err != nil {
		return nil, err
	}
	return &Frame{
		Offset:   core.FrameOffset,
		Duration: duration,
		Size:     core.Size,
		Text:     text,
		Args:     args,
		Data:     data,
	}, nil
}

// Close releases the decoder. Idempotent.
func (im *Image) Close() error {
	if im.closed {
		return nil
	}
	im.closed = true
	return im.decoder.Close()
}

// flattenAlpha composes transparency per the alpha setting: disabled alpha
// flattens over black, a background color (explicit or the terminal's
// default) flattens over that color, and a threshold turns pixels below it
// fully transparent (for text styles) while keeping the rest opaque.
func flattenAlpha(img image.Image, alpha Alpha) image.Image {
	if !alpha.Disabled && !alpha.HasBackground && !alpha.TerminalBackground && alpha.Threshold <= 0 {
		return img
	}
	if !imageHasAlpha(img) {
		return img
	}

	bg := colorful.Color{} // black
	switch {
	case alpha.HasBackground:
		bg = alpha.Background
	case alpha.TerminalBackground:
		if c := ActiveTerminal().Background; c != nil {
			bg = termenv.ConvertToRGB(c)
		}
	}
	bgColor := color.NRGBA{
		R: uint8(bg.R*255 + 0.5),
		G: uint8(bg.G*255 + 0.5),
		B: uint8(bg.B*255 + 0.5),
		A: 255,
	}

	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	if alpha.Disabled || alpha.HasBackground || alpha.TerminalBackground {
		draw.Draw(out, bounds, image.NewUniform(bgColor), image.Point{}, draw.Src)
		draw.Draw(out, bounds, img, bounds.Min, draw.Over)
		return out
	}

	threshold := uint32(alpha.Threshold * 0xffff)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a <= threshold {
				out.SetRGBA(x, y, color.RGBA{})
				continue
			}
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: 255,
			})
		}
	}
	return out
}

// flattenBackground applies only the opaque variants of alpha handling.
// Graphics protocols carry partial transparency in the payload itself, so
// the threshold never applies to them.
func flattenBackground(img image.Image, alpha Alpha) image.Image {
	if !alpha.Disabled && !alpha.HasBackground && !alpha.TerminalBackground {
		return img
	}
	alpha.Threshold = 0
	return flattenAlpha(img, alpha)
}

func imageHasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	}
	return true
}

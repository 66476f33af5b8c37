package termrender

import (
	"image"
	"sort"
	"sync"
)

// TextClass is the base class of styles that draw with glyphs.
var TextClass = MustClass("TextImage", WithBases(ImageClass))

// GraphicsClass is the base class of styles that use a terminal graphics
// protocol.
var GraphicsClass = MustClass("GraphicsImage", WithBases(ImageClass))

// StyleRenderOptions carries everything a style needs to render one frame.
type StyleRenderOptions struct {
	// Size is the target size in cells.
	Size Size
	// Alpha selects transparency handling.
	Alpha Alpha
	// Args are the render args of the draw, bound to the style's class or a
	// subclass.
	Args *RenderArgs
}

// Style renders image pixels as terminal output.
//
// The style set is closed: halfblocks, kitty, iterm2 and sixel. Styles are
// stateless; all per-render state travels in StyleRenderOptions.
type Style interface {
	// Name returns the registry name of the style.
	Name() string

	// Class returns the render class carrying the style's args namespace
	// and descriptor state.
	Class() *RenderClass

	// Geometry returns the cell geometry renders of this style size against.
	Geometry(ti *TerminalInfo) CellGeometry

	// Supported reports whether the active terminal can display the style's
	// output. Overridden by the class's forced-support flag.
	Supported(ti *TerminalInfo) bool

	// Render renders img at the given cell size.
	Render(img image.Image, opts StyleRenderOptions) (string, error)

	// ParseFormatSuffix translates a format-spec style suffix into an args
	// namespace for the style's class. An empty suffix yields nil; an
	// unknown one yields *StyleError.
	ParseFormatSuffix(suffix string) (ArgsNamespace, error)
}

var styles = struct {
	sync.RWMutex
	byName map[string]Style
}{byName: make(map[string]Style)}

func registerStyle(s Style) {
	styles.Lock()
	defer styles.Unlock()
	styles.byName[s.Name()] = s
}

// StyleNamed returns a registered style by name.
func StyleNamed(name string) (Style, error) {
	styles.RLock()
	defer styles.RUnlock()
	s, ok := styles.byName[name]
	if !ok {
		return nil, styleErrorf(name, "unknown render style")
	}
	return s, nil
}

// StyleNames returns the names of all registered styles, sorted.
func StyleNames() []string {
	styles.RLock()
	defer styles.RUnlock()
	names := make([]string, 0, len(styles.byName))
	for name := range styles.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectStyle returns a registered style by name, failing up front when the
// active terminal cannot display it. Classes with forced support skip the
// terminal check.
func SelectStyle(name string) (Style, error) {
	s, err := StyleNamed(name)
	if err != nil {
		return nil, err
	}
	if !styleSupported(s, ActiveTerminal()) {
		return nil, styleErrorf(name, "not supported by the active terminal")
	}
	return s, nil
}

// DetectStyle picks the best style the active terminal supports, falling
// back to halfblocks, which every terminal can display.
func DetectStyle() Style {
	ti := ActiveTerminal()
	for _, name := range []string{"kitty", "iterm2", "sixel"} {
		if s, err := StyleNamed(name); err == nil && styleSupported(s, ti) {
			return s
		}
	}
	s, _ := StyleNamed("halfblocks")
	return s
}

func styleSupported(s Style, ti *TerminalInfo) bool {
	if s.Class().ForcedSupport() {
		return true
	}
	return s.Supported(ti)
}

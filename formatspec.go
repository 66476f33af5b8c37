package termrender

import (
	"regexp"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultAlphaThreshold is the alpha level below which a pixel is treated as
// fully transparent by text-based styles.
const DefaultAlphaThreshold = 40.0 / 255.0

// Alpha describes how transparent pixels are composed.
//
// The zero value leaves pixel alpha untouched; DefaultAlpha applies the
// default threshold.
type Alpha struct {
	// Disabled makes transparent pixels fully opaque over black.
	Disabled bool
	// Threshold is the transparency cutoff for text-based styles, in [0, 1).
	Threshold float64
	// Background, when valid, is a solid color composed under the image.
	Background    colorful.Color
	HasBackground bool
	// TerminalBackground composes against the terminal's default background.
	TerminalBackground bool
}

// DefaultAlpha blends with the default threshold.
var DefaultAlpha = Alpha{Threshold: DefaultAlphaThreshold}

// FormatSpec is a parsed render format specifier:
//
//	[h][W][.[v][H]][#[threshold|RRGGBB|#]][+suffix]
//
// h is one of "<|>" (left, center, right), v one of "^-_" (top, middle,
// bottom). W and H are the padding width and height. The "#" section selects
// alpha handling: bare "#" composes against the terminal's default
// background, ".N" is a threshold, RRGGBB a literal background, and a second
// "#" disables transparency. Everything after "+" is passed to the render
// style.
type FormatSpec struct {
	HAlign *HAlign
	Width  *int
	VAlign *VAlign
	Height *int
	Alpha  *Alpha
	Suffix string
}

// Padding converts the alignment and dimension fields into an AlignedPadding,
// defaulting to centered on both axes.
func (fs *FormatSpec) Padding() AlignedPadding {
	pad := AlignedPadding{HAlign: AlignCenter, VAlign: AlignMiddle}
	if fs.HAlign != nil {
		pad.HAlign = *fs.HAlign
	}
	if fs.VAlign != nil {
		pad.VAlign = *fs.VAlign
	}
	if fs.Width != nil {
		pad.Width = *fs.Width
	}
	if fs.Height != nil {
		pad.Height = *fs.Height
	}
	return pad
}

var formatSpecRe = regexp.MustCompile(
	`^(([<|>])?(\d+)?)?(\.([-^_])?(\d+)?)?(#(\.\d+|[0-9a-fA-F]{6}|#)?)?(\+(.+))?$`,
)

// ParseFormatSpec parses a render format specifier. The error for an invalid
// spec names the offending substring.
func ParseFormatSpec(spec string) (*FormatSpec, error) {
	m := formatSpecRe.FindStringSubmatch(spec)
	if m == nil {
		return nil, validationErrorf("invalid format specifier %q (unrecognized portion: %q)", spec, offendingPortion(spec))
	}

	fs := &FormatSpec{}
	if m[2] != "" {
		h := parseHAlign(m[2])
		fs.HAlign = &h
	}
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, validationErrorf("invalid padding width %q in %q", m[3], spec)
		}
		fs.Width = &n
	}
	if m[5] != "" {
		v := parseVAlign(m[5])
		fs.VAlign = &v
	}
	if m[6] != "" {
		n, err := strconv.Atoi(m[6])
		if err != nil {
			return nil, validationErrorf("invalid padding height %q in %q", m[6], spec)
		}
		fs.Height = &n
	}
	if m[7] != "" {
		alpha, err := parseAlpha(m[8], spec)
		if err != nil {
			return nil, err
		}
		fs.Alpha = alpha
	}
	fs.Suffix = m[10]
	return fs, nil
}

func parseAlpha(field, spec string) (*Alpha, error) {
	switch {
	case field == "":
		// Bare "#": compose against the terminal's default background.
		return &Alpha{TerminalBackground: true, Threshold: DefaultAlphaThreshold}, nil
	case field == "#":
		return &Alpha{Disabled: true}, nil
	case field[0] == '.':
		t, err := strconv.ParseFloat(field, 64)
		if err != nil || t >= 1 {
			return nil, validationErrorf("invalid alpha threshold %q in %q", field, spec)
		}
		return &Alpha{Threshold: t}, nil
	default:
		c, err := colorful.Hex("#" + field)
		if err != nil {
			return nil, validationErrorf("invalid background color %q in %q", field, spec)
		}
		return &Alpha{Background: c, HasBackground: true, Threshold: DefaultAlphaThreshold}, nil
	}
}

func parseHAlign(s string) HAlign {
	switch s {
	case "<":
		return AlignLeft
	case ">":
		return AlignRight
	default:
		return AlignCenter
	}
}

func parseVAlign(s string) VAlign {
	switch s {
	case "^":
		return AlignTop
	case "_":
		return AlignBottom
	default:
		return AlignMiddle
	}
}

// offendingPortion returns the leading part of spec up to and including the
// first byte at which matching fails.
func offendingPortion(spec string) string {
	for end := len(spec); end > 0; end-- {
		if formatSpecRe.MatchString(spec[:end-1]) {
			return spec[end-1:]
		}
	}
	return spec
}

package termrender

import (
	"fmt"
	"image"
	"math"
)

// Size is a terminal-cell size. Both axes of a resolved size are always >= 1.
type Size struct {
	Cols int
	Rows int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Cols, s.Rows) }

// Allowance is a non-negative margin, in cells, excluded from the space
// available for rendering (e.g. room for a shell prompt).
type Allowance struct {
	Horizontal int
	Vertical   int
}

// DefaultAllowance leaves two lines for the shell prompt below the image.
var DefaultAllowance = Allowance{Horizontal: 0, Vertical: 2}

// CellGeometry describes how a render style maps terminal cells to pixels.
//
// PixelsPerCol and PixelsPerLine are the pixel dimensions one cell represents
// in the style's output. PixelRatio is the width-to-height ratio of one such
// pixel as it appears on screen; it is what keeps an image undistorted on
// non-square cells.
type CellGeometry struct {
	PixelsPerCol  int
	PixelsPerLine int
	PixelRatio    float64
}

// TextCellGeometry is the geometry of glyph-mosaic styles: one cell holds a
// 1x2 pixel block, so a rendered pixel is twice as wide, relative to its
// height, as the cell itself.
func TextCellGeometry(cellRatio float64) CellGeometry {
	return CellGeometry{PixelsPerCol: 1, PixelsPerLine: 2, PixelRatio: 2 * cellRatio}
}

// GraphicsCellGeometry is the geometry of graphics-protocol styles, where the
// terminal maps image pixels onto device pixels directly.
func GraphicsCellGeometry(cellWidth, cellHeight int) CellGeometry {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 2
	}
	return CellGeometry{PixelsPerCol: cellWidth, PixelsPerLine: cellHeight, PixelRatio: 1.0}
}

func (g CellGeometry) colsForPixels(px float64) int {
	return int(math.Ceil(px / float64(g.PixelsPerCol)))
}

func (g CellGeometry) linesForPixels(px float64) int {
	return int(math.Ceil(px / float64(g.PixelsPerLine)))
}

func (g CellGeometry) pixelsForCols(cols int) int  { return cols * g.PixelsPerCol }
func (g CellGeometry) pixelsForLines(rows int) int { return rows * g.PixelsPerLine }

type sizingKind int

const (
	sizingFitWithin sizingKind = iota
	sizingFitToWidth
	sizingOriginal
	sizingAuto
	sizingExactWidth
	sizingExactHeight
)

// SizingMode selects how an original pixel size is resolved into a cell size.
type SizingMode struct {
	kind sizingKind
	n    int
}

var (
	// FitWithin sizes the image to fit optimally within the available space.
	FitWithin = SizingMode{kind: sizingFitWithin}
	// FitToWidth uses exactly the available width; the height follows the
	// aspect ratio and is exempt from vertical limits.
	FitToWidth = SizingMode{kind: sizingFitToWidth}
	// OriginalSize renders with as many pixels as the original consists of.
	OriginalSize = SizingMode{kind: sizingOriginal}
	// AutoSize is OriginalSize if that fits the available space, else FitWithin.
	AutoSize = SizingMode{kind: sizingAuto}
)

// ExactWidth fixes the width, in columns; the height follows the aspect ratio.
func ExactWidth(cols int) SizingMode { return SizingMode{kind: sizingExactWidth, n: cols} }

// ExactHeight fixes the height, in lines; the width follows the aspect ratio.
func ExactHeight(rows int) SizingMode { return SizingMode{kind: sizingExactHeight, n: rows} }

func (m SizingMode) String() string {
	switch m.kind {
	case sizingFitWithin:
		return "fit"
	case sizingFitToWidth:
		return "fit-to-width"
	case sizingOriginal:
		return "original"
	case sizingAuto:
		return "auto"
	case sizingExactWidth:
		return fmt.Sprintf("width=%d", m.n)
	default:
		return fmt.Sprintf("height=%d", m.n)
	}
}

// ResolveSize maps an original pixel size to a cell size.
//
// avail is the full terminal size; allow is subtracted from it before any
// fitting. When maxSize is non-nil it replaces the available space outright
// and allowances are ignored. Exact and FitToWidth results are checked
// against maxSize (and only against maxSize); every other combination is
// resolved without a fit check, which Draw performs separately.
//
// Either axis rounding to zero is forced to 1, so a resolved size is never
// null on any axis.
func ResolveSize(original image.Point, mode SizingMode, geom CellGeometry, allow Allowance, avail Size, maxSize *Size) (Size, error) {
	if original.X <= 0 || original.Y <= 0 {
		return Size{}, validationErrorf("original size must be positive on both axes (got: %dx%d)", original.X, original.Y)
	}
	if allow.Horizontal < 0 || allow.Vertical < 0 {
		return Size{}, validationErrorf("allowance must be non-negative (got: %d, %d)", allow.Horizontal, allow.Vertical)
	}
	if mode.kind == sizingExactWidth || mode.kind == sizingExactHeight {
		if mode.n <= 0 {
			return Size{}, validationErrorf("fixed dimension must be positive (got: %d)", mode.n)
		}
	}
	if maxSize != nil && (maxSize.Cols <= 0 || maxSize.Rows <= 0) {
		return Size{}, validationErrorf("max size must be positive on both axes (got: %s)", *maxSize)
	}

	// FitToWidth exempts the height from vertical limits.
	if mode.kind == sizingFitToWidth {
		allow.Vertical = 0
	}

	cols := avail.Cols - allow.Horizontal
	lines := avail.Rows - allow.Vertical
	if maxSize != nil {
		cols, lines = maxSize.Cols, maxSize.Rows
	}

	oriW, oriH := float64(original.X), float64(original.Y)
	maxWidthPx := float64(geom.pixelsForCols(cols))
	maxHeightPx := float64(geom.pixelsForLines(lines))

	switch mode.kind {
	case sizingExactWidth:
		heightPx := math.Round(oriH / oriW * float64(geom.pixelsForCols(mode.n)) * geom.PixelRatio)
		size := Size{
			Cols: mode.n,
			Rows: atLeastOne(geom.linesForPixels(heightPx)),
		}
		return checkMaxSize(size, maxSize)

	case sizingExactHeight:
		widthPx := math.Round(oriW / oriH * float64(geom.pixelsForLines(mode.n)) / geom.PixelRatio)
		size := Size{
			Cols: atLeastOne(geom.colsForPixels(widthPx)),
			Rows: mode.n,
		}
		return checkMaxSize(size, maxSize)
	}

	// The remaining modes size against the available space.
	if cols <= 0 {
		return Size{}, sizeErrorf("amount of available columns too small (got: %d)", cols)
	}
	if lines <= 0 {
		return Size{}, sizeErrorf("amount of available lines too small (got: %d)", lines)
	}

	kind := mode.kind
	if kind == sizingAuto {
		if oriW > maxWidthPx || math.Round(oriH*geom.PixelRatio) > maxHeightPx {
			kind = sizingFitWithin
		} else {
			kind = sizingOriginal
		}
	}

	switch kind {
	case sizingOriginal:
		return Size{
			Cols: atLeastOne(geom.colsForPixels(oriW)),
			Rows: atLeastOne(geom.linesForPixels(math.Round(oriH * geom.PixelRatio))),
		}, nil

	case sizingFitToWidth:
		heightPx := math.Round(oriH / oriW * maxWidthPx * geom.PixelRatio)
		size := Size{
			Cols: atLeastOne(geom.colsForPixels(maxWidthPx)),
			Rows: atLeastOne(geom.linesForPixels(heightPx)),
		}
		return checkMaxSize(size, maxSize)
	}

	// FitWithin. The axis with the smaller scale factor is the binding one;
	// the other axis is corrected by the pixel ratio, then clamped back into
	// the available space with the binding axis following proportionally.
	x := maxWidthPx / oriW
	y := maxHeightPx / oriH
	factor := math.Min(x, y)
	widthPx := oriW * factor
	heightPx := oriH * factor

	if x < y {
		corrected := heightPx * geom.PixelRatio
		heightPx = math.Min(corrected, maxHeightPx)
		widthPx = math.Round(heightPx / corrected * widthPx)
		heightPx = math.Round(heightPx)
	} else {
		corrected := widthPx / geom.PixelRatio
		widthPx = math.Min(corrected, maxWidthPx)
		heightPx = math.Round(widthPx / corrected * heightPx)
		widthPx = math.Round(widthPx)
	}

	return Size{
		Cols: atLeastOne(geom.colsForPixels(widthPx)),
		Rows: atLeastOne(geom.linesForPixels(heightPx)),
	}, nil
}

func checkMaxSize(size Size, maxSize *Size) (Size, error) {
	if maxSize != nil && (size.Cols > maxSize.Cols || size.Rows > maxSize.Rows) {
		return Size{}, sizeErrorf("the resulting size %s will not fit into the max size %s", size, *maxSize)
	}
	return size, nil
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

package termrender

import "strings"

// HAlign is the horizontal placement of a render within its padded width.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign is the vertical placement of a render within its padded height.
type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// Padding pads a rendered frame out to a target size.
type Padding interface {
	// Resolve returns the per-side padding for a frame of the given size on
	// a terminal of the given size. Negative results are treated as zero.
	Resolve(frame Size, terminal Size) (left, top, right, bottom int)
}

// ExactPadding pads each side by a fixed number of cells.
type ExactPadding struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

func (p ExactPadding) Resolve(_ Size, _ Size) (int, int, int, int) {
	return p.Left, p.Top, p.Right, p.Bottom
}

// AlignedPadding pads a frame out to a target width and height, placing the
// frame within that area by alignment. A non-positive dimension resolves
// relative to the terminal size: 0 means the full terminal axis, -n means n
// cells less than it.
type AlignedPadding struct {
	Width  int
	Height int
	HAlign HAlign
	VAlign VAlign
}

func (p AlignedPadding) Resolve(frame Size, terminal Size) (int, int, int, int) {
	width, height := p.Width, p.Height
	if width <= 0 {
		width += terminal.Cols
	}
	if height <= 0 {
		height += terminal.Rows
	}

	var left, top int
	switch p.HAlign {
	case AlignCenter:
		left = (width - frame.Cols) / 2
	case AlignRight:
		left = width - frame.Cols
	}
	switch p.VAlign {
	case AlignMiddle:
		top = (height - frame.Rows) / 2
	case AlignBottom:
		top = height - frame.Rows
	}
	return left, top, width - frame.Cols - left, height - frame.Rows - top
}

// padText pads every line of a frame's text with spaces and adds blank lines
// above and below, per the resolved padding. Lines added for padding are
// plain spaces without escape sequences.
func padText(text string, frame Size, pad Padding, terminal Size) (string, Size) {
	if pad == nil {
		return text, frame
	}
	left, top, right, bottom := pad.Resolve(frame, terminal)
	left, top, right, bottom = max(left, 0), max(top, 0), max(right, 0), max(bottom, 0)
	if left == 0 && top == 0 && right == 0 && bottom == 0 {
		return text, frame
	}

	width := left + frame.Cols + right
	lpad := strings.Repeat(" ", left)
	rpad := strings.Repeat(" ", right)
	blank := strings.Repeat(" ", width)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, top+len(lines)+bottom)
	for i := 0; i < top; i++ {
		out = append(out, blank)
	}
	for _, line := range lines {
		out = append(out, lpad+line+rpad)
	}
	for i := 0; i < bottom; i++ {
		out = append(out, blank)
	}
	return strings.Join(out, "\n"), Size{Cols: width, Rows: top + frame.Rows + bottom}
}

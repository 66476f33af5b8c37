package termrender

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/blacktop/go-termrender/pkg/csi"
)

// DefaultCellRatio is assumed when the terminal's cell pixel size cannot be
// queried: a cell twice as tall as it is wide.
const DefaultCellRatio = 0.5

// TerminalInfo is a snapshot of the active terminal's geometry and colors.
type TerminalInfo struct {
	// Columns and Rows are the terminal size in cells.
	Columns int
	Rows    int

	// CellWidth and CellHeight are the pixel dimensions of one cell, zero
	// when unqueryable.
	CellWidth  int
	CellHeight int

	// Interactive is set when stdout is attached to a terminal.
	Interactive bool

	// Foreground and Background are the terminal's default colors.
	Foreground termenv.Color
	Background termenv.Color
}

// Size returns the terminal size in cells.
func (ti *TerminalInfo) Size() Size {
	return Size{Cols: ti.Columns, Rows: ti.Rows}
}

// CellRatio is the width-to-height ratio of one cell, DefaultCellRatio when
// the pixel size is unknown.
func (ti *TerminalInfo) CellRatio() float64 {
	if ti.CellWidth > 0 && ti.CellHeight > 0 {
		return float64(ti.CellWidth) / float64(ti.CellHeight)
	}
	return DefaultCellRatio
}

var (
	terminalOnce sync.Once
	terminalInfo *TerminalInfo
)

// ActiveTerminal returns info about the terminal the process is attached
// to, queried once and cached.
func ActiveTerminal() *TerminalInfo {
	terminalOnce.Do(func() {
		terminalInfo = queryTerminal()
	})
	return terminalInfo
}

func queryTerminal() *TerminalInfo {
	ti := &TerminalInfo{
		// Fallback size, also used when not attached to a terminal.
		Columns: 80,
		Rows:    24,
	}

	ti.Interactive = term.IsTerminal(int(os.Stdout.Fd()))
	if cols, rows, err := csi.QueryWindowSize(); err == nil && cols > 0 && rows > 0 {
		ti.Columns, ti.Rows = cols, rows
	}

	if csi.QuerySupported() {
		if w, h, ok := csi.QueryCharacterCellSizeInPixels(); ok {
			ti.CellWidth, ti.CellHeight = w, h
		} else if w, h, ok := csi.QueryFontSize(); ok {
			ti.CellWidth, ti.CellHeight = w, h
		}
	}

	out := termenv.NewOutput(os.Stdout)
	ti.Foreground = out.ForegroundColor()
	ti.Background = out.BackgroundColor()
	return ti
}

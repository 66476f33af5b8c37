/*
Package csi issues CSI (Control Sequence Introducer) queries against the
controlling terminal and parses the replies.
*/
package csi

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// QueryTimeout is how long a query waits for the terminal's reply.
const QueryTimeout = 100 * time.Millisecond

// query writes an escape sequence to the controlling terminal in raw mode
// and returns whatever reply arrives within QueryTimeout.
func query(seq string) (string, bool) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return "", false
	}
	defer tty.Close()

	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return "", false
	}
	defer term.Restore(int(tty.Fd()), oldState)

	if _, err := tty.WriteString(wrapTmuxPassthrough(seq)); err != nil {
		return "", false
	}

	replyChan := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, err := tty.Read(buf)
		if err != nil || n == 0 {
			replyChan <- ""
			return
		}
		replyChan <- string(buf[:n])
	}()

	select {
	case reply := <-replyChan:
		return reply, reply != ""
	case <-time.After(QueryTimeout):
		return "", false
	}
}

// QueryTextAreaSizeInPixels queries the text area size in pixels (CSI 14t).
func QueryTextAreaSizeInPixels() (width, height int, ok bool) {
	reply, ok := query("\x1b[14t")
	if !ok || !strings.Contains(reply, "[4;") {
		return 0, 0, false
	}
	// Reply: CSI 4 ; height ; width t
	parts := strings.Split(reply, ";")
	if len(parts) < 3 {
		return 0, 0, false
	}
	fmt.Sscanf(parts[1], "%d", &height)
	fmt.Sscanf(parts[2], "%dt", &width)
	return width, height, width > 0 && height > 0
}

// QueryCharacterCellSizeInPixels queries the pixel size of one character
// cell (CSI 16t).
func QueryCharacterCellSizeInPixels() (width, height int, ok bool) {
	reply, ok := query("\x1b[16t")
	if !ok || !strings.Contains(reply, "[6;") || !strings.Contains(reply, "t") {
		return 0, 0, false
	}
	// Reply: CSI 6 ; height ; width t
	parts := strings.Split(reply, ";")
	if len(parts) < 3 {
		return 0, 0, false
	}
	fmt.Sscanf(parts[1], "%d", &height)
	fmt.Sscanf(parts[2], "%dt", &width)
	return width, height, width > 0 && height > 0
}

// QueryXTSMGRAPHICS queries the Sixel graphics geometry (XTSMGRAPHICS,
// xterm 344+).
func QueryXTSMGRAPHICS() (width, height int, ok bool) {
	// Pi=2 (Sixel), Pa=1 (read), Pv=0
	reply, ok := query("\x1b[?2;1;0S")
	if !ok || !strings.Contains(reply, "?2;") || !strings.Contains(reply, "S") {
		return 0, 0, false
	}
	// Reply: CSI ? 2 ; Ps ; width ; height S, Ps=0 on success
	parts := strings.Split(reply, ";")
	if len(parts) < 4 {
		return 0, 0, false
	}
	var status int
	fmt.Sscanf(parts[1], "%d", &status)
	if status != 0 {
		return 0, 0, false
	}
	fmt.Sscanf(parts[2], "%d", &width)
	fmt.Sscanf(parts[3], "%dS", &height)
	return width, height, width > 0 && height > 0
}

// QueryPrimaryDeviceAttributes returns the terminal's primary device
// attributes reply (CSI c), used to detect Sixel support (attribute 4).
func QueryPrimaryDeviceAttributes() (string, bool) {
	reply, ok := query("\x1b[c")
	if !ok || !strings.Contains(reply, "[?") {
		return "", false
	}
	return reply, true
}

// QueryWindowSize returns the terminal size in character cells.
func QueryWindowSize() (cols, rows int, err error) {
	return term.GetSize(int(os.Stdin.Fd()))
}

// QueryFontSize derives the cell pixel size from the text area pixel size
// and the window character size, for terminals that answer CSI 14t but not
// CSI 16t.
func QueryFontSize() (fontWidth, fontHeight int, ok bool) {
	pixelWidth, pixelHeight, ok := QueryTextAreaSizeInPixels()
	if !ok {
		return 0, 0, false
	}
	charCols, charRows, err := QueryWindowSize()
	if err != nil || charCols <= 0 || charRows <= 0 {
		return 0, 0, false
	}

	fontWidth = pixelWidth / charCols
	fontHeight = pixelHeight / charRows

	// Implausible cell sizes mean the reply was garbage.
	if fontWidth < 4 || fontWidth > 50 || fontHeight < 4 || fontHeight > 50 {
		return 0, 0, false
	}
	return fontWidth, fontHeight, true
}

// QuerySupported reports whether the terminal likely answers CSI queries.
func QuerySupported() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "Apple_Terminal":
		// Often ships with CSI queries disabled.
		return false
	case "vscode":
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// InTmux reports whether the process runs inside tmux.
func InTmux() bool {
	return os.Getenv("TMUX") != "" || os.Getenv("TERM_PROGRAM") == "tmux"
}

// wrapTmuxPassthrough wraps an escape sequence in the tmux passthrough
// envelope when needed. Every ESC inside the sequence is doubled.
func wrapTmuxPassthrough(seq string) string {
	if !InTmux() || !strings.HasPrefix(seq, "\x1b") {
		return seq
	}
	return "\x1bPtmux;\x1b" + strings.ReplaceAll(seq, "\x1b", "\x1b\x1b") + "\x1b\\"
}

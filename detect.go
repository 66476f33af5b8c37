package termrender

import (
	"os"
	"strings"

	"github.com/blacktop/go-termrender/pkg/csi"
)

// kittySupported reports whether the terminal understands the Kitty graphics
// protocol.
func kittySupported() bool {
	if inTmux() {
		return outerTerminal() == "kitty" || outerTerminal() == "ghostty"
	}
	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "":
		return true
	case strings.Contains(strings.ToLower(os.Getenv("TERM")), "kitty"):
		return true
	case os.Getenv("TERM_PROGRAM") == "ghostty":
		return true
	case os.Getenv("TERM_PROGRAM") == "WezTerm":
		return true
	case os.Getenv("TERM_PROGRAM") == "rio":
		return true
	}
	return false
}

// iterm2Supported reports whether the terminal understands iTerm2 inline
// images (OSC 1337).
func iterm2Supported() bool {
	termProgram := os.Getenv("TERM_PROGRAM")
	switch {
	case termProgram == "iTerm.app":
		return true
	case termProgram == "WezTerm":
		return true
	case termProgram == "mintty" || os.Getenv("TERM") == "mintty":
		return true
	case termProgram == "rio":
		return true
	case termProgram == "WarpTerminal":
		return true
	case strings.Contains(strings.ToLower(os.Getenv("LC_TERMINAL")), "iterm"):
		return true
	}
	return false
}

// sixelSupported reports whether the terminal understands Sixel graphics,
// by environment first and by a primary device attributes query (capability
// 4) as a last resort.
func sixelSupported() bool {
	termEnv := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	for _, name := range []string{"sixel", "mlterm", "foot", "rio", "yaft", "wezterm", "st-256color"} {
		if strings.Contains(termEnv, name) {
			return true
		}
	}
	// xterm needs to be started with -ti 340.
	if strings.Contains(termEnv, "xterm") && os.Getenv("XTERM_VERSION") != "" {
		return true
	}
	switch termProgram {
	case "mlterm", "iTerm.app", "mintty", "WezTerm", "rio":
		return true
	}

	if !csi.QuerySupported() {
		return false
	}
	reply, ok := csi.QueryPrimaryDeviceAttributes()
	if !ok {
		return false
	}
	return strings.Contains(reply, ";4;") || strings.Contains(reply, ";4c")
}

// outerTerminal guesses the terminal hosting a tmux or screen session.
func outerTerminal() string {
	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "":
		return "kitty"
	case strings.Contains(os.Getenv("TERMINFO"), "Ghostty"):
		return "ghostty"
	case strings.Contains(strings.ToLower(os.Getenv("LC_TERMINAL")), "iterm"):
		return "iterm2"
	default:
		return ""
	}
}

package termrender

import (
	"os"
	"os/exec"
	"strings"
	"sync"
)

var (
	tmuxPassthroughEnabled bool
	tmuxPassthroughOnce    sync.Once

	forceTmux   bool
	forceTmuxMu sync.RWMutex
)

// ForceTmux forces tmux passthrough wrapping regardless of the environment.
// Forcing it on also asks tmux to allow passthrough for the current pane.
func ForceTmux(force bool) {
	forceTmuxMu.Lock()
	forceTmux = force
	forceTmuxMu.Unlock()

	if force {
		enableTmuxPassthrough()
	}
}

func inTmux() bool {
	forceTmuxMu.RLock()
	forced := forceTmux
	forceTmuxMu.RUnlock()
	if forced {
		return true
	}
	return os.Getenv("TMUX") != "" || os.Getenv("TERM_PROGRAM") == "tmux" ||
		os.Getenv("TERM_PROGRAM") == "screen"
}

// enableTmuxPassthrough turns on passthrough for the current pane; graphics
// escape sequences are dropped by tmux without it.
func enableTmuxPassthrough() {
	tmuxPassthroughOnce.Do(func() {
		cmd := exec.Command("tmux", "set", "-p", "allow-passthrough", "on")
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Run(); err == nil {
			tmuxPassthroughEnabled = true
		}
	})
}

// wrapTmuxPassthrough wraps a graphics escape sequence in the tmux
// passthrough envelope when needed. Every ESC inside the sequence is
// doubled.
func wrapTmuxPassthrough(seq string) string {
	if !inTmux() || !strings.HasPrefix(seq, "\x1b") {
		return seq
	}
	return "\x1bPtmux;\x1b" + strings.ReplaceAll(seq, "\x1b", "\x1b\x1b") + "\x1b\\"
}

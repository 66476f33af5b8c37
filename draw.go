package termrender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"
)

const (
	hideCursorSeq = "\x1b[?25l"
	showCursorSeq = "\x1b[?25h"
	resetColorSeq = "\x1b[0m"
)

// DrawOptions configures Draw. The zero value is not useful; start from
// DefaultDrawOptions.
type DrawOptions struct {
	// Args are the render args for every frame drawn.
	Args *RenderArgs
	// Padding pads each frame out to a target area.
	Padding Padding

	// Animate plays all frames of an animated renderable. Animation options
	// are ignored, not rejected, when the renderable is not animated.
	Animate bool
	// Loops is the animation loop count (negative: forever).
	Loops int
	// Cache enables iterator frame caching during animation.
	Cache bool

	// CheckSize rejects renders that do not fit the terminal.
	CheckSize bool
	// AllowScroll permits non-animated renders taller than the terminal.
	// Animations are always bound by the terminal height.
	AllowScroll bool

	// HideCursor hides the cursor while drawing on an interactive stream.
	HideCursor bool
	// EchoInput leaves input echo enabled during animation.
	EchoInput bool

	// Output is the destination stream (default os.Stdout).
	Output io.Writer
	// Context cancels the draw, typically on interrupt. When nil, Draw
	// installs its own interrupt-aware context.
	Context context.Context
}

// DefaultDrawOptions animates forever with caching, size checking, and
// cursor/echo management.
var DefaultDrawOptions = DrawOptions{
	Animate:    true,
	Loops:      -1,
	Cache:      true,
	CheckSize:  true,
	HideCursor: true,
}

// Draw renders r to the output stream.
//
// Animated renderables are played frame by frame, each frame overwriting the
// previous one in place. On an interactive stream the cursor is hidden and
// input echo suppressed for the duration; both are restored on every exit
// path, interrupts included.
func Draw(r Renderable, opts DrawOptions) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	ctx := opts.Context
	if ctx == nil {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
	}

	count := r.FrameCount()
	animated := opts.Animate && (count.IsIndefinite() || count.Count() > 1)

	size, err := r.RenderSize()
	if err != nil {
		return err
	}
	terminal := ActiveTerminal().Size()
	if opts.CheckSize {
		fitsWidth := size.Cols <= terminal.Cols
		fitsHeight := size.Rows <= terminal.Rows
		// Animations rewind the cursor over their own output, so they can
		// never be taller than the screen.
		if !fitsWidth || (!fitsHeight && (animated || !opts.AllowScroll)) {
			return &RenderSizeOutofRangeError{Size: size, Available: terminal, Animated: animated}
		}
	}

	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	if interactive {
		if opts.HideCursor {
			fmt.Fprint(out, hideCursorSeq)
			defer fmt.Fprint(out, showCursorSeq)
		}
		if animated && !opts.EchoInput {
			if restore, err := disableEcho(int(os.Stdin.Fd())); err == nil {
				defer restore()
			}
		}
		defer fmt.Fprint(out, resetColorSeq)
	}

	if !animated {
		frame, err := RenderFrame(r, opts.Args)
		if err != nil {
			return err
		}
		text, _ := padText(frame.Text, frame.Size, opts.Padding, terminal)
		_, err = fmt.Fprintln(out, text)
		return err
	}

	return drawAnimated(ctx, r, opts, out, terminal)
}

func drawAnimated(ctx context.Context, r Renderable, opts DrawOptions, out io.Writer, terminal Size) error {
	loops := opts.Loops
	if loops == 0 {
		loops = -1
	}
	it, err := NewRenderIterator(r, opts.Args, IteratorOptions{
		Loops: loops,
		Cache: opts.Cache,
	})
	if err != nil {
		return err
	}
	defer it.Close()

	prevRows := 0
	for {
		start := time.Now()
		frame, err := it.Next()
		if errors.Is(err, ErrFinished) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		text, size := padText(frame.Text, frame.Size, opts.Padding, terminal)
		if prevRows > 1 {
			// Rewind over the previous frame; its last line has no trailing
			// newline, so the cursor already sits on it.
			fmt.Fprintf(out, "\r\x1b[%dA", prevRows-1)
		} else if prevRows == 1 {
			fmt.Fprint(out, "\r")
		}
		if _, err := fmt.Fprint(out, text); err != nil {
			return err
		}
		prevRows = size.Rows

		// Sleep out the remainder of the frame duration. A render slower
		// than the frame compresses the wait to nothing, never below it.
		if wait := frame.Duration - time.Since(start); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				fmt.Fprintln(out)
				return ctx.Err()
			}
		} else if ctx.Err() != nil {
			fmt.Fprintln(out)
			return ctx.Err()
		}
	}
}

package termrender

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestDrawStatic(t *testing.T) {
	src := newFrameSource(3)

	var buf bytes.Buffer
	opts := DefaultDrawOptions
	opts.Animate = false
	opts.Output = &buf

	if err := Draw(src, opts); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got, want := buf.String(), "0\n"; got != want {
		t.Errorf("Draw() output = %q, want %q", got, want)
	}
}

func TestDrawAnimationOverwritesInPlace(t *testing.T) {
	src := newFrameSource(3)

	var buf bytes.Buffer
	opts := DefaultDrawOptions
	opts.Loops = 2
	opts.Output = &buf

	if err := Draw(src, opts); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	// Six frames, each single-line frame after the first preceded by a
	// carriage return; never appended as new lines.
	want := "0\r1\r2\r0\r1\r2\n"
	if got := buf.String(); got != want {
		t.Errorf("Draw() output = %q, want %q", got, want)
	}
}

func TestDrawCursorRewindForTallFrames(t *testing.T) {
	src := newFrameSource(2)
	src.size = Size{Cols: 1, Rows: 3}

	var buf bytes.Buffer
	opts := DefaultDrawOptions
	opts.Loops = 1
	opts.Output = &buf

	if err := Draw(src, opts); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := buf.String(); !bytes.Contains([]byte(got), []byte("\r\x1b[2A")) {
		t.Errorf("Draw() output %q does not rewind over a 3-line frame", got)
	}
}

func TestDrawRewindTracksPreviousFrameHeight(t *testing.T) {
	src := newFrameSource(2)
	src.size = Size{Cols: 1, Rows: 2}
	src.growRows = true

	var buf bytes.Buffer
	opts := DefaultDrawOptions
	opts.Loops = 1
	opts.Output = &buf

	if err := Draw(src, opts); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	// The second frame is 3 lines tall, but the rewind must cover the 2-line
	// frame already on screen.
	got := buf.Bytes()
	if !bytes.Contains(got, []byte("\r\x1b[1A")) {
		t.Errorf("Draw() output %q does not rewind over the previous 2-line frame", got)
	}
	if bytes.Contains(got, []byte("\r\x1b[2A")) {
		t.Errorf("Draw() output %q rewinds by the new frame's height", got)
	}
}

func TestDrawSizeCheck(t *testing.T) {
	t.Run("oversized render rejected", func(t *testing.T) {
		src := newFrameSource(3)
		src.size = Size{Cols: 1000, Rows: 500}

		opts := DefaultDrawOptions
		opts.Output = &bytes.Buffer{}

		var rangeErr *RenderSizeOutofRangeError
		if err := Draw(src, opts); !errors.As(err, &rangeErr) {
			t.Fatalf("Draw() error = %v, want *RenderSizeOutofRangeError", err)
		}
		if !rangeErr.Animated {
			t.Error("error should mark the draw as animated")
		}
	})

	t.Run("scrolling allows tall static renders", func(t *testing.T) {
		src := newFrameSource(3)
		src.size = Size{Cols: 1, Rows: 500}

		opts := DefaultDrawOptions
		opts.Animate = false
		opts.AllowScroll = true
		opts.Output = &bytes.Buffer{}

		if err := Draw(src, opts); err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
	})

	t.Run("animations stay height bound despite scrolling", func(t *testing.T) {
		src := newFrameSource(3)
		src.size = Size{Cols: 1, Rows: 500}

		opts := DefaultDrawOptions
		opts.AllowScroll = true
		opts.Output = &bytes.Buffer{}

		var rangeErr *RenderSizeOutofRangeError
		if err := Draw(src, opts); !errors.As(err, &rangeErr) {
			t.Fatalf("Draw() error = %v, want *RenderSizeOutofRangeError", err)
		}
	})

	t.Run("disabled check draws anyway", func(t *testing.T) {
		src := newFrameSource(3)
		src.size = Size{Cols: 1000, Rows: 500}

		opts := DefaultDrawOptions
		opts.Animate = false
		opts.CheckSize = false
		opts.Output = &bytes.Buffer{}

		if err := Draw(src, opts); err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
	})
}

func TestDrawCancellation(t *testing.T) {
	src := newFrameSource(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	opts := DefaultDrawOptions
	opts.Output = &buf
	opts.Context = ctx

	err := Draw(src, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Draw() error = %v, want context.Canceled", err)
	}
	// The first frame still made it out before the cancellation took hold.
	if !bytes.HasPrefix(buf.Bytes(), []byte("0")) {
		t.Errorf("Draw() output = %q, want it to start with frame 0", buf.String())
	}
}

func TestDrawWithPadding(t *testing.T) {
	src := newFrameSource(3)

	var buf bytes.Buffer
	opts := DefaultDrawOptions
	opts.Animate = false
	opts.Output = &buf
	opts.Padding = ExactPadding{Left: 2, Right: 1}

	if err := Draw(src, opts); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got, want := buf.String(), "  0 \n"; got != want {
		t.Errorf("Draw() output = %q, want %q", got, want)
	}
}

package termrender

import (
	"fmt"
	"time"
)

// FrameCount describes how many frames a renderable has.
//
// A definite count is a positive number of frames known up front. An
// indefinite count belongs to streaming sources that only discover their end
// by rendering past it. A postponed count is definite but expensive to
// determine; it is resolved through a hook the first time it is needed and
// cached by the renderable.
type FrameCount struct {
	kind frameCountKind
	n    int
}

type frameCountKind int

const (
	frameCountDefinite frameCountKind = iota
	frameCountIndefinite
	frameCountPostponed
)

// Definite is a known frame count. n must be >= 1; a count of 1 means the
// renderable is not animated.
func Definite(n int) FrameCount { return FrameCount{kind: frameCountDefinite, n: n} }

// Indefinite marks a streaming source with an unknown number of frames.
var Indefinite = FrameCount{kind: frameCountIndefinite}

// PostponedCount marks a count that is expensive to compute up front.
var PostponedCount = FrameCount{kind: frameCountPostponed}

// IsDefinite reports whether the count is a known number.
func (fc FrameCount) IsDefinite() bool { return fc.kind == frameCountDefinite }

// IsIndefinite reports whether the count belongs to a streaming source.
func (fc FrameCount) IsIndefinite() bool { return fc.kind == frameCountIndefinite }

// IsPostponed reports whether the count is yet to be resolved.
func (fc FrameCount) IsPostponed() bool { return fc.kind == frameCountPostponed }

// Count returns the definite number of frames; it is meaningless otherwise.
func (fc FrameCount) Count() int { return fc.n }

func (fc FrameCount) String() string {
	switch fc.kind {
	case frameCountIndefinite:
		return "indefinite"
	case frameCountPostponed:
		return "postponed"
	default:
		return fmt.Sprintf("%d", fc.n)
	}
}

// FrameDuration describes how long a frame stays on screen.
//
// A fixed duration applies to every frame. A dynamic duration means each
// frame carries its own, determined during rendering (e.g. per-frame GIF
// delays).
type FrameDuration struct {
	dynamic bool
	d       time.Duration
}

// FixedDuration is the same positive duration for every frame.
func FixedDuration(d time.Duration) FrameDuration { return FrameDuration{d: d} }

// DynamicDuration means every frame determines its own duration.
var DynamicDuration = FrameDuration{dynamic: true}

// IsDynamic reports whether frames carry individual durations.
func (fd FrameDuration) IsDynamic() bool { return fd.dynamic }

// Duration returns the fixed duration; it is meaningless for dynamic.
func (fd FrameDuration) Duration() time.Duration { return fd.d }

func (fd FrameDuration) String() string {
	if fd.dynamic {
		return "dynamic"
	}
	return fd.d.String()
}

// SeekWhence is the reference point of a seek offset.
type SeekWhence int

const (
	// SeekStart seeks relative to the first frame.
	SeekStart SeekWhence = iota
	// SeekCurrent seeks relative to the current frame.
	SeekCurrent
	// SeekEnd seeks relative to the last frame.
	SeekEnd
)

// Frame is one rendered frame. Frames are immutable and safe to reuse; a
// cached frame may be returned any number of times.
type Frame struct {
	// Offset is the frame's position within the renderable.
	Offset int
	// Duration is how long the frame should stay on screen.
	Duration time.Duration
	// Size is the rendered size in cells.
	Size Size
	// Text is the rendered output: Size.Rows lines of Size.Cols cells each,
	// joined by newlines, without a trailing newline.
	Text string

	// Args and Data reference the render call that produced the frame. Data
	// is usually finalized by the time a frame is observed.
	Args *RenderArgs
	Data *RenderData
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(offset=%d duration=%s size=%s)", f.Offset, f.Duration, f.Size)
}

// Renderable is anything that can be rendered to terminal output.
//
// A renderable owns its frame position (Tell/Seek), frame count, duration
// and render size. Render may be called concurrently only with distinct
// RenderData instances.
type Renderable interface {
	// Class returns the render class of the renderable.
	Class() *RenderClass

	// FrameCount returns the frame count. A postponed count is resolved on
	// first call and the result cached, so the returned count is never
	// postponed.
	FrameCount() FrameCount

	// FrameDuration returns how frame durations are determined.
	FrameDuration() FrameDuration

	// Tell returns the current frame offset. Always 0 for non-animated and
	// indefinite renderables.
	Tell() int

	// Seek moves the current frame offset. Offsets resolving outside
	// [0, frame count) yield *SeekError; indefinite renderables yield
	// *IndefiniteSeekError. The resolved offset is returned.
	Seek(offset int, whence SeekWhence) (int, error)

	// RenderSize returns the size the next render will use.
	RenderSize() (Size, error)

	// SeedRenderData fills the core data namespace (and any subclass
	// namespaces) for one render call. iterating is set by render iterators.
	SeedRenderData(data *RenderData, iterating bool) error

	// Render produces the frame identified by data's core namespace.
	// Indefinite renderables return io.EOF past the final frame.
	Render(data *RenderData, args *RenderArgs) (*Frame, error)

	// Close releases underlying resources. Idempotent; renders after Close
	// return a *StateError.
	Close() error
}

// RenderFrame renders the current frame of r: it allocates render data,
// seeds it, renders, and finalizes the data whether or not the render
// succeeded.
func RenderFrame(r Renderable, args *RenderArgs) (*Frame, error) {
	return renderFrame(r, args, false)
}

func renderFrame(r Renderable, args *RenderArgs, iterating bool) (*Frame, error) {
	if args == nil {
		var err error
		if args, err = NewRenderArgs(r.Class()); err != nil {
			return nil, err
		}
	} else if !args.Class().IsSubclassOf(r.Class()) && !r.Class().IsSubclassOf(args.Class()) {
		return nil, &IncompatibleRenderArgsError{Bound: args.Class(), Target: r.Class()}
	}

	data := NewRenderData(r.Class())
	defer data.Finalize()

	if err := r.SeedRenderData(data, iterating); err != nil {
		return nil, err
	}
	return r.Render(data, args)
}

// resolveSeek maps (offset, whence) onto an absolute frame offset.
func resolveSeek(offset int, whence SeekWhence, current, count int) (int, error) {
	var abs int
	switch whence {
	case SeekStart:
		abs = offset
	case SeekCurrent:
		abs = current + offset
	case SeekEnd:
		abs = count - 1 + offset
	default:
		return 0, validationErrorf("invalid seek whence (got: %d)", whence)
	}
	if abs < 0 || abs >= count {
		return 0, &SeekError{Offset: abs, Count: count}
	}
	return abs, nil
}

package termrender

import (
	"errors"
	"io"
)

// ErrFinished is returned by RenderIterator.Next after the final frame of
// the final loop has been emitted.
var ErrFinished = errors.New("render iterator finished")

// DefaultCacheThreshold is the frame count above which iterator frame
// caching is disabled unless a threshold is set explicitly.
const DefaultCacheThreshold = 100

// IteratorOptions configures a RenderIterator.
type IteratorOptions struct {
	// Loops is the number of times to iterate over all frames. Negative
	// means loop forever; zero is invalid.
	Loops int

	// Cache enables per-offset frame caching. Caching is force-disabled
	// when only one loop is requested or the frame count is indefinite.
	Cache bool

	// CacheThreshold disables caching for renderables with more frames
	// than this. Zero means DefaultCacheThreshold.
	CacheThreshold int
}

// DefaultIteratorOptions iterates once with caching allowed.
var DefaultIteratorOptions = IteratorOptions{Loops: 1, Cache: true}

type iteratorState int

const (
	iteratorCreated iteratorState = iota
	iteratorActive
	iteratorExhausted
	iteratorClosed
)

type cacheSlot struct {
	frame *Frame
	size  Size
}

// RenderIterator iterates over the frames of an animated renderable.
//
// Frames are emitted in order, wrapping around for each requested loop. The
// iterator owns one render data instance for its whole life; it is seeded on
// the first Next call and finalized on Close.
type RenderIterator struct {
	r     Renderable
	args  *RenderArgs
	data  *RenderData
	state iteratorState

	count     FrameCount // never postponed
	loopsLeft int        // negative: infinite

	next          int // offset of the next frame to emit
	emitted       int // offset of the most recently emitted frame
	framesInLoop  int // frames emitted in the current loop
	fixedCount    int // informational count fixed by indefinite exhaustion
	hasFixedCount bool

	cache []cacheSlot // nil when caching is disabled
}

// NewRenderIterator creates an iterator over the frames of r.
//
// The frame count must be resolved before construction: Renderable.FrameCount
// resolves postponed counts, so a count that is still postponed here yields
// *ValidationError. A frame count of 1 is not animated and also yields
// *ValidationError.
func NewRenderIterator(r Renderable, args *RenderArgs, opts IteratorOptions) (*RenderIterator, error) {
	if opts.Loops == 0 {
		return nil, validationErrorf("loop count must be non-zero")
	}
	if opts.CacheThreshold == 0 {
		opts.CacheThreshold = DefaultCacheThreshold
	}

	count := r.FrameCount()
	if count.IsPostponed() {
		return nil, validationErrorf("cannot iterate a renderable with an unresolved frame count")
	}
	if count.IsDefinite() && count.Count() < 2 {
		return nil, validationErrorf("cannot iterate a non-animated renderable (frame count: %d)", count.Count())
	}
	if args == nil {
		var err error
		if args, err = NewRenderArgs(r.Class()); err != nil {
			return nil, err
		}
	}

	it := &RenderIterator{
		r:         r,
		args:      args,
		count:     count,
		loopsLeft: opts.Loops,
	}
	if opts.Cache && opts.Loops != 1 && count.IsDefinite() && count.Count() <= opts.CacheThreshold {
		it.cache = make([]cacheSlot, count.Count())
	}
	return it, nil
}

// FrameCount returns the frame count of the underlying renderable. Once an
// indefinite renderable has been exhausted for the first time, the count
// discovered by that exhaustion is returned instead.
func (it *RenderIterator) FrameCount() FrameCount {
	if it.hasFixedCount {
		return Definite(it.fixedCount)
	}
	return it.count
}

// Tell returns the offset of the most recently emitted frame.
func (it *RenderIterator) Tell() int { return it.emitted }

// Seek redirects the iterator so that the next Next call emits the frame at
// offset. Seeking never consumes a loop.
func (it *RenderIterator) Seek(offset int) error {
	switch it.state {
	case iteratorClosed:
		return stateErrorf("render iterator has been closed")
	case iteratorExhausted:
		return stateErrorf("render iterator has been exhausted")
	}
	if it.count.IsIndefinite() {
		return &IndefiniteSeekError{}
	}
	if offset < 0 || offset >= it.count.Count() {
		return &SeekError{Offset: offset, Count: it.count.Count()}
	}
	it.next = offset
	return nil
}

// SetRenderArgs replaces the render args for subsequent frames and drops any
// cached frames rendered with the previous args.
func (it *RenderIterator) SetRenderArgs(args *RenderArgs) error {
	if it.state == iteratorClosed {
		return stateErrorf("render iterator has been closed")
	}
	if args == nil {
		var err error
		if args, err = NewRenderArgs(it.r.Class()); err != nil {
			return err
		}
	}
	it.args = args
	for i := range it.cache {
		it.cache[i] = cacheSlot{}
	}
	return nil
}

// Next renders and returns the next frame.
//
// After the final frame of the final loop, Next returns ErrFinished. A
// closed iterator returns a *StateError. Any render failure closes the
// iterator before the error is returned.
func (it *RenderIterator) Next() (*Frame, error) {
	switch it.state {
	case iteratorClosed:
		return nil, stateErrorf("render iterator has been closed")
	case iteratorExhausted:
		return nil, ErrFinished
	case iteratorCreated:
		if err := it.start(); err != nil {
			it.finalize(iteratorClosed)
			return nil, err
		}
	}

	if it.count.IsIndefinite() {
		return it.nextIndefinite()
	}
	return it.nextDefinite()
}

// Close releases the iterator's render data and cache. Idempotent.
func (it *RenderIterator) Close() error {
	it.finalize(iteratorClosed)
	return nil
}

func (it *RenderIterator) start() error {
	it.data = NewRenderData(it.r.Class())
	if err := it.r.SeedRenderData(it.data, true); err != nil {
		return err
	}
	it.state = iteratorActive
	return nil
}

func (it *RenderIterator) nextDefinite() (*Frame, error) {
	offset := it.next

	frame, err := it.renderAt(offset)
	if err != nil {
		it.finalize(iteratorClosed)
		return nil, err
	}

	it.emitted = offset
	if offset+1 < it.count.Count() {
		it.next = offset + 1
	} else {
		it.next = 0
		if it.loopsLeft > 0 {
			it.loopsLeft--
		}
		if it.loopsLeft == 0 {
			it.finalize(iteratorExhausted)
		}
	}
	return frame, nil
}

func (it *RenderIterator) nextIndefinite() (*Frame, error) {
	frame, err := it.render(it.next)
	if errors.Is(err, io.EOF) {
		if !it.hasFixedCount {
			it.hasFixedCount = true
			it.fixedCount = it.framesInLoop
		}
		if it.framesInLoop == 0 {
			it.finalize(iteratorExhausted)
			return nil, ErrFinished
		}
		it.framesInLoop = 0
		if it.loopsLeft > 0 {
			it.loopsLeft--
		}
		if it.loopsLeft == 0 {
			it.finalize(iteratorExhausted)
			return nil, ErrFinished
		}
		it.next = 0
		frame, err = it.render(it.next)
		// A source that hits EOF again right after wrapping has nothing
		// left; that is exhaustion, not a render failure.
		if errors.Is(err, io.EOF) {
			it.finalize(iteratorExhausted)
			return nil, ErrFinished
		}
	}
	if err != nil {
		it.finalize(iteratorClosed)
		return nil, err
	}

	it.emitted = it.next
	it.next++
	it.framesInLoop++
	return frame, nil
}

// renderAt returns the frame at offset, from the cache when the slot holds a
// frame rendered at the current render size.
func (it *RenderIterator) renderAt(offset int) (*Frame, error) {
	size, err := it.r.RenderSize()
	if err != nil {
		return nil, err
	}

	if it.cache != nil {
		if slot := it.cache[offset]; slot.frame != nil && slot.size == size {
			return slot.frame, nil
		}
	}

	frame, err := it.render(offset)
	if err != nil {
		return nil, err
	}
	if it.cache != nil {
		it.cache[offset] = cacheSlot{frame: frame, size: size}
	}
	return frame, nil
}

func (it *RenderIterator) render(offset int) (*Frame, error) {
	size, err := it.r.RenderSize()
	if err != nil {
		return nil, err
	}
	core := it.data.Core()
	core.Size = size
	core.FrameOffset = offset
	return it.r.Render(it.data, it.args)
}

func (it *RenderIterator) finalize(state iteratorState) {
	if it.state == iteratorClosed || it.state == iteratorExhausted {
		it.state = state
		return
	}
	it.state = state
	if it.data != nil {
		it.data.Finalize()
		it.data = nil
	}
	it.cache = nil
}

// Package loop runs the engine's single-goroutine cycle: poll input,
// decode it, dispatch to the handler, flush the frame.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tercel-dev/tercel/internal/event"
	"github.com/tercel-dev/tercel/internal/input"
	"github.com/tercel-dev/tercel/internal/render"
	"github.com/tercel-dev/tercel/internal/surface"
)

// State is the loop's lifecycle phase. Transitions are strictly
// Idle -> Dispatching -> Rendering -> Idle, ending in Terminated.
type State int32

const (
	// StateIdle means the loop is between cycles (or not yet started).
	StateIdle State = iota
	// StateDispatching means a decoded event is being handled.
	StateDispatching
	// StateRendering means the frame is being flushed.
	StateRendering
	// StateTerminated means the loop has exited and cannot restart.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateRendering:
		return "rendering"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", s)
	}
}

// ErrStop is returned by a handler to request a clean shutdown. The
// loop finishes the current cycle, including the render phase, before
// terminating.
var ErrStop = errors.New("stop requested")

// ErrNotIdle is returned when Run is called on a loop that already ran.
var ErrNotIdle = errors.New("loop is not idle")

// Handler processes one decoded event. Returning ErrStop stops the
// loop; any other error is logged and the loop continues.
type Handler func(input.Event) error

// Logger is the subset of the app logger the loop needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Loop.
type Options struct {
	// Surface supplies raw input and receives draw operations.
	Surface surface.Surface

	// Renderer flushes frames to the surface.
	Renderer *render.Renderer

	// Frame returns the buffer to present. Called once per render
	// phase so the handler may swap or resize the buffer freely.
	Frame func() *render.Buffer

	// Handler receives every decoded event.
	Handler Handler

	// Bus receives loop.* and input.* notifications. Optional.
	Bus *event.Bus

	// Logger receives diagnostics. Optional.
	Logger Logger

	// Config values, see the config package for semantics.
	PollTimeout   time.Duration
	MaxFPS        int
	FailureBudget int
}

// Loop is the engine's cooperative event loop. All work happens on the
// goroutine that calls Run; Stop may be called from any goroutine or
// from within the handler.
type Loop struct {
	surf    surface.Surface
	dec     *input.Decoder
	rend    *render.Renderer
	frame   func() *render.Buffer
	handler Handler
	bus     *event.Bus
	log     Logger

	pollTimeout time.Duration
	budget      int
	limiter     *rate.Limiter

	state    atomic.Int32
	ran      atomic.Bool
	stopFlag atomic.Bool
	dirty    bool
	failures int
}

// New creates a loop. Surface, Renderer, Frame, and Handler are
// required; everything else has a usable zero value.
func New(opts Options) (*Loop, error) {
	if opts.Surface == nil || opts.Renderer == nil || opts.Frame == nil || opts.Handler == nil {
		return nil, errors.New("loop requires a surface, renderer, frame source, and handler")
	}
	budget := opts.FailureBudget
	if budget < 1 {
		budget = 1
	}

	l := &Loop{
		surf:        opts.Surface,
		dec:         input.NewDecoder(opts.Surface),
		rend:        opts.Renderer,
		frame:       opts.Frame,
		handler:     opts.Handler,
		bus:         opts.Bus,
		log:         opts.Logger,
		pollTimeout: opts.PollTimeout,
		budget:      budget,
		dirty:       true,
	}
	if opts.MaxFPS > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(opts.MaxFPS), 1)
	}
	return l, nil
}

// State returns the loop's current lifecycle phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Stop requests termination. A stop arriving mid-cycle lets the
// current dispatch and render phases finish first; the loop never
// terminates with a handled event unpresented.
func (l *Loop) Stop() {
	l.stopFlag.Store(true)
}

// MarkDirty forces a flush on the next render phase even if no event
// arrived. The handler's own mutations mark the frame dirty already.
func (l *Loop) MarkDirty() {
	l.dirty = true
}

// Run executes the loop until Stop is called, ctx is cancelled, the
// surface fails, or the render failure budget is exhausted. A loop
// runs at most once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.ran.CompareAndSwap(false, true) {
		return ErrNotIdle
	}

	l.publish("loop.started", nil)
	defer func() {
		l.state.Store(int32(StateTerminated))
		l.publish("loop.stopped", nil)
	}()

	for {
		// Stop requests are honored at the top of the cycle.
		if l.stopFlag.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		code, err := l.surf.ReadKey(l.pollTimeout)
		if err != nil {
			if errors.Is(err, surface.ErrUnavailable) {
				return fmt.Errorf("surface lost: %w", err)
			}
			if l.log != nil {
				l.log.Warn("input read failed: %v", err)
			}
			continue
		}

		ev, ok := l.dec.Decode(code)
		if ok {
			l.state.Store(int32(StateDispatching))
			l.publishEvent(ev)
			if err := l.dispatch(ev); err != nil {
				if errors.Is(err, ErrStop) {
					l.stopFlag.Store(true)
				} else if l.log != nil {
					l.log.Error("handler failed on %s: %v", ev, err)
				}
			}
		}

		l.state.Store(int32(StateRendering))
		if err := l.renderPhase(); err != nil {
			return err
		}
		l.state.Store(int32(StateIdle))
	}
}

// dispatch invokes the handler, containing panics so a misbehaving
// handler cannot skip the render phase.
func (l *Loop) dispatch(ev input.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked on %s: %v", ev, r)
		}
	}()
	l.dirty = true
	return l.handler(ev)
}

// renderPhase flushes the frame if it is dirty and the frame limiter
// admits it. A pending stop bypasses the limiter so the final frame is
// always presented.
func (l *Loop) renderPhase() error {
	if !l.dirty {
		return nil
	}
	if !l.stopFlag.Load() && l.limiter != nil && !l.limiter.Allow() {
		// Coalesced: the frame stays dirty for the next cycle.
		return nil
	}

	n, err := l.rend.Flush(l.frame())
	if err != nil {
		l.failures++
		l.publish("render.failure", err)
		if l.log != nil {
			l.log.Error("render failed (%d/%d): %v", l.failures, l.budget, err)
		}
		if l.failures >= l.budget {
			return fmt.Errorf("render failure budget exhausted after %d attempts: %w", l.failures, err)
		}
		// The renderer repaints in full on the next flush; the frame
		// stays dirty so that happens promptly.
		return nil
	}

	l.failures = 0
	l.dirty = false
	l.publish("render.flush", n)
	if l.log != nil && n > 0 {
		l.log.Debug("flushed %d cells", n)
	}
	return nil
}

func (l *Loop) publish(topic string, payload any) {
	if l.bus != nil {
		_ = l.bus.Publish(topic, payload)
	}
}

func (l *Loop) publishEvent(ev input.Event) {
	if l.bus == nil {
		return
	}
	switch ev.Kind {
	case input.KindKey:
		_ = l.bus.Publish("input.key", ev)
	case input.KindResize:
		_ = l.bus.Publish("input.resize", ev)
	case input.KindTimeout:
		_ = l.bus.Publish("input.timeout", ev)
	case input.KindUnknown:
		_ = l.bus.Publish("input.unknown", ev)
	}
}

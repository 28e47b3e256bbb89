// Package app wires the engine together: surface, frame buffer,
// renderer, event loop, scripting, configuration, and logging.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/tercel-dev/tercel/internal/cell"
	"github.com/tercel-dev/tercel/internal/config"
	"github.com/tercel-dev/tercel/internal/event"
	"github.com/tercel-dev/tercel/internal/input"
	"github.com/tercel-dev/tercel/internal/loop"
	"github.com/tercel-dev/tercel/internal/render"
	"github.com/tercel-dev/tercel/internal/script"
	"github.com/tercel-dev/tercel/internal/surface"
)

// Options configures an Engine.
type Options struct {
	// Config is the engine configuration. Zero value means defaults.
	Config config.Config

	// ConfigPath enables live reload of the config file when set.
	ConfigPath string

	// Surface overrides the default terminal surface. Tests inject a
	// memory surface here.
	Surface surface.Surface

	// Logger overrides the logger built from Config.Logging.
	Logger *Logger

	// OnKey receives key events not consumed by a script binding.
	// Returning ErrQuit stops the engine cleanly.
	OnKey func(input.Event) error

	// OnResize runs after the frame buffer has been resized.
	OnResize func(width, height int)

	// OnTick runs on every poll timeout. Returning ErrQuit stops the
	// engine cleanly.
	OnTick func() error
}

// Engine owns the full rendering and input pipeline. Create with New,
// drive with Run; Stop is safe from any goroutine.
type Engine struct {
	cfg  config.Config
	log  *Logger
	logC io.Closer
	bus  *event.Bus

	surf  surface.Surface
	frame *render.Buffer
	rend  *render.Renderer
	lp    *loop.Loop
	host  *script.Host
	watch *config.Watcher

	metrics Metrics
	quit    atomic.Bool

	onKey    func(input.Event) error
	onResize func(int, int)
	onTick   func() error
}

// New builds an engine. The surface is not initialized until Run.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	e := &Engine{
		cfg:      cfg,
		log:      opts.Logger,
		bus:      event.NewBus(),
		surf:     opts.Surface,
		onKey:    opts.OnKey,
		onResize: opts.OnResize,
		onTick:   opts.OnTick,
	}

	if e.log == nil {
		logger, closer, err := NewLoggerFromConfig(cfg.Logging)
		if err != nil {
			return nil, &InitError{Component: "logger", Err: err}
		}
		e.log = logger
		e.logC = closer
	}
	if e.surf == nil {
		term, err := surface.NewTerminal()
		if err != nil {
			return nil, &InitError{Component: "surface", Err: err}
		}
		e.surf = term
	}

	if cfg.Script.Path != "" {
		e.host = script.NewHost(e, cfg.HandlerTimeout())
	}
	if opts.ConfigPath != "" {
		e.watch = config.NewWatcher(opts.ConfigPath, 0, e.applyConfig)
	}

	e.subscribeMetrics()

	e.rend = render.NewRenderer(e.surf)
	lp, err := loop.New(loop.Options{
		Surface:       e.surf,
		Renderer:      e.rend,
		Frame:         func() *render.Buffer { return e.frame },
		Handler:       e.handleEvent,
		Bus:           e.bus,
		Logger:        e.log.WithComponent("loop"),
		PollTimeout:   cfg.PollTimeout(),
		MaxFPS:        cfg.Render.MaxFPS,
		FailureBudget: cfg.Render.FailureBudget,
	})
	if err != nil {
		return nil, &InitError{Component: "loop", Err: err}
	}
	e.lp = lp
	return e, nil
}

// Bus returns the engine's event bus for additional observers.
func (e *Engine) Bus() *event.Bus { return e.bus }

// Metrics returns a snapshot of the engine's activity counters.
func (e *Engine) Metrics() MetricsSnapshot { return e.metrics.Snapshot() }

// Frame returns the frame buffer. Nil before Run initializes the
// surface. Callers mutate it only from OnKey/OnTick/script handlers.
func (e *Engine) Frame() *render.Buffer { return e.frame }

// Stop requests a clean shutdown. The in-flight cycle completes its
// dispatch and render phases first.
func (e *Engine) Stop() {
	e.quit.Store(true)
	e.lp.Stop()
}

// Shutdown stops the engine. Safe to call from signal handlers and
// safe to call more than once; teardown itself happens when Run
// returns.
func (e *Engine) Shutdown() {
	e.Stop()
}

// Run initializes the surface and drives the event loop until Stop,
// context cancellation, or a fatal error.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.surf.Init(); err != nil {
		return &InitError{Component: "surface", Err: err}
	}
	defer e.surf.Fini()
	defer e.close()

	w, h := e.surf.Dimensions()
	e.frame = render.NewBuffer(w, h)
	e.log.Info("engine starting, %dx%d surface", w, h)

	if e.host != nil {
		if err := e.host.Run(e.cfg.Script.Path); err != nil {
			return &InitError{Component: "script", Err: err}
		}
	}
	if e.watch != nil {
		if err := e.watch.Start(); err != nil {
			// Live reload is a convenience; run without it.
			e.log.Warn("config watcher unavailable: %v", err)
			e.watch = nil
		}
	}

	if err := e.lp.Run(ctx); err != nil {
		e.log.Error("engine stopped: %v", err)
		return err
	}
	e.log.Info("engine stopped")
	return nil
}

// close tears down auxiliary components after the loop exits.
func (e *Engine) close() {
	if e.watch != nil {
		e.watch.Stop()
	}
	if e.host != nil {
		e.host.Close()
	}
	if e.logC != nil {
		e.logC.Close()
	}
}

// handleEvent is the loop handler: scripts get first claim on key
// events, then the embedding application's callbacks.
func (e *Engine) handleEvent(ev input.Event) error {
	switch ev.Kind {
	case input.KindResize:
		e.frame.Resize(ev.Width, ev.Height)
		if e.onResize != nil {
			e.onResize(ev.Width, ev.Height)
		}
		return nil

	case input.KindKey:
		if e.host != nil {
			handled, err := e.host.HandleKey(ev.Name())
			if err != nil {
				e.log.Error("script handler: %v", err)
			}
			if e.quit.Load() {
				return loop.ErrStop
			}
			if handled {
				return nil
			}
		}
		if e.onKey != nil {
			if err := e.onKey(ev); err != nil {
				return quitOrErr(err)
			}
		}
		return nil

	case input.KindTimeout:
		if e.onTick != nil {
			if err := e.onTick(); err != nil {
				return quitOrErr(err)
			}
		}
		return nil

	case input.KindUnknown:
		e.log.Debug("ignoring unknown input code %d", ev.Code)
		return nil

	default:
		return nil
	}
}

func quitOrErr(err error) error {
	if errors.Is(err, ErrQuit) {
		return loop.ErrStop
	}
	return err
}

// applyConfig handles a live config reload. Only settings that are
// safe to change mid-run are applied.
func (e *Engine) applyConfig(cfg config.Config) {
	e.log.SetLevel(ParseLogLevel(cfg.Logging.Level))
	e.log.Info("configuration reloaded")
	_ = e.bus.Publish("config.reloaded", cfg)
}

// subscribeMetrics counts loop activity off the bus.
func (e *Engine) subscribeMetrics() {
	sub := func(topic string, h event.Handler) {
		if _, err := e.bus.Subscribe(topic, h); err != nil {
			panic(fmt.Sprintf("subscribing %s: %v", topic, err))
		}
	}
	sub("render.flush", func(env event.Envelope) {
		if n, ok := env.Payload.(int); ok {
			e.metrics.recordFrame(n)
		}
	})
	sub("input.key", func(event.Envelope) { e.metrics.recordDispatch() })
	sub("input.unknown", func(event.Envelope) { e.metrics.recordUnknown() })
	sub("input.resize", func(event.Envelope) { e.metrics.recordResize() })
}

// Size implements the scripting API: current frame dimensions.
func (e *Engine) Size() (int, int) {
	if e.frame == nil {
		return 0, 0
	}
	return e.frame.Size()
}

// Write implements the scripting API: draw styled text into the frame.
func (e *Engine) Write(row, col int, text string, style cell.Style) error {
	if e.frame == nil {
		return fmt.Errorf("frame buffer not ready")
	}
	e.frame.SetString(row, col, text, style)
	return nil
}

// Quit implements the scripting API.
func (e *Engine) Quit() {
	e.quit.Store(true)
}

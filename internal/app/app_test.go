package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tercel-dev/tercel/internal/cell"
	"github.com/tercel-dev/tercel/internal/config"
	"github.com/tercel-dev/tercel/internal/input"
	"github.com/tercel-dev/tercel/internal/surface"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Poll.TimeoutMS = 1
	cfg.Render.MaxFPS = 0 // no pacing in tests
	return cfg
}

func runEngine(t *testing.T, e *Engine) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := e.Run(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("engine did not stop before the test deadline")
	}
	return err
}

func TestEngineEchoAndQuit(t *testing.T) {
	surf := surface.NewMemory(20, 5)

	engine, err := New(Options{
		Config:  testConfig(),
		Surface: surf,
		Logger:  NewLogger(&bytes.Buffer{}, LogLevelDebug),
		OnKey: func(ev input.Event) error {
			if ev.Key == input.KeyEscape {
				return ErrQuit
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	surf.PushCodes(0x1B)
	if err := runEngine(t, engine); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestEngineResizeResizesFrame(t *testing.T) {
	surf := surface.NewMemory(10, 4)

	var sawResize bool
	engine, err := New(Options{
		Config:  testConfig(),
		Surface: surf,
		Logger:  NewLogger(&bytes.Buffer{}, LogLevelError),
		OnResize: func(w, h int) {
			sawResize = true
		},
		OnKey: func(ev input.Event) error { return ErrQuit },
	})
	if err != nil {
		t.Fatal(err)
	}

	surf.SimulateResize(30, 10)
	surf.PushCodes(int('q'))
	if err := runEngine(t, engine); err != nil {
		t.Fatal(err)
	}

	if !sawResize {
		t.Error("OnResize never ran")
	}
	w, h := engine.Frame().Size()
	if w != 30 || h != 10 {
		t.Errorf("frame = %dx%d, want 30x10", w, h)
	}
	if got := engine.Metrics().Resizes; got != 1 {
		t.Errorf("resize counter = %d, want 1", got)
	}
}

func TestEngineDrawsThroughLoop(t *testing.T) {
	surf := surface.NewMemory(12, 3)

	var engine *Engine
	engine, err := New(Options{
		Config:  testConfig(),
		Surface: surf,
		Logger:  NewLogger(&bytes.Buffer{}, LogLevelError),
		OnKey: func(ev input.Event) error {
			if ev.Rune == 'd' {
				// Draw and quit in one dispatch: the final render
				// phase still presents the frame.
				engine.Frame().SetString(1, 0, "drawn", cell.DefaultStyle())
				return ErrQuit
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	surf.PushCodes(int('d'))
	if err := runEngine(t, engine); err != nil {
		t.Fatal(err)
	}
	if got := surf.RowString(1); got != "drawn" {
		t.Errorf("row 1 = %q, want %q", got, "drawn")
	}
}

func TestEngineStopFromOutside(t *testing.T) {
	surf := surface.NewMemory(8, 2)

	engine, err := New(Options{
		Config:  testConfig(),
		Surface: surf,
		Logger:  NewLogger(&bytes.Buffer{}, LogLevelError),
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- engine.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	engine.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run after Stop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("engine ignored Stop")
	}
}

func TestEngineScriptBindingsConsumeKeys(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "init.lua")
	script := `
		local t = require("tercel")
		t.bind("g", function() t.write(0, 0, "lua", "bold") end)
		t.bind("q", function() t.quit() end)
	`
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Script.Path = scriptPath

	surf := surface.NewMemory(10, 3)
	var unbound []rune
	engine, err := New(Options{
		Config:  cfg,
		Surface: surf,
		Logger:  NewLogger(&bytes.Buffer{}, LogLevelError),
		OnKey: func(ev input.Event) error {
			unbound = append(unbound, ev.Rune)
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	surf.PushString("gzq")
	if err := runEngine(t, engine); err != nil {
		t.Fatal(err)
	}

	if got := surf.RowString(0); got != "lua" {
		t.Errorf("row 0 = %q, want %q", got, "lua")
	}
	if c := surf.CellAt(0, 0); !c.Style.Attrs.Has(cell.AttrBold) {
		t.Errorf("script write lost its attrs: %v", c.Style.Attrs)
	}
	// 'g' and 'q' were bound; only 'z' reaches OnKey.
	if len(unbound) != 1 || unbound[0] != 'z' {
		t.Errorf("unbound keys = %q, want [z]", string(unbound))
	}
}

func TestEngineShutdownIsIdempotent(t *testing.T) {
	surf := surface.NewMemory(8, 2)

	engine, err := New(Options{
		Config:  testConfig(),
		Surface: surf,
		Logger:  NewLogger(&bytes.Buffer{}, LogLevelError),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Shutdown before Run and twice afterwards must all be harmless.
	engine.Shutdown()
	if err := runEngine(t, engine); err != nil {
		t.Fatalf("Run after early Shutdown: %v", err)
	}
	engine.Shutdown()
	engine.Shutdown()
}

func TestEngineMetrics(t *testing.T) {
	surf := surface.NewMemory(6, 2)

	engine, err := New(Options{
		Config:  testConfig(),
		Surface: surf,
		Logger:  NewLogger(&bytes.Buffer{}, LogLevelError),
		OnKey: func(ev input.Event) error {
			if ev.Rune == 'q' {
				return ErrQuit
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	surf.PushCodes(int('a'), 9999, int('q'))
	if err := runEngine(t, engine); err != nil {
		t.Fatal(err)
	}

	m := engine.Metrics()
	if m.Dispatched != 2 {
		t.Errorf("Dispatched = %d, want 2", m.Dispatched)
	}
	if m.Unknown != 1 {
		t.Errorf("Unknown = %d, want 1", m.Unknown)
	}
	if m.Frames == 0 {
		t.Error("no frames were counted")
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.FailureBudget = 0

	_, err := New(Options{Config: cfg})
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "config" {
		t.Errorf("New with bad config = %v, want config InitError", err)
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LogLevelInfo)

	log.Debug("hidden %d", 1)
	log.Info("visible %s", "message")
	log.WithComponent("loop").Warn("tagged")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug output should be filtered at info level")
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "[INFO]") {
		t.Errorf("info line missing: %q", out)
	}
	if !strings.Contains(out, "component=loop") {
		t.Errorf("field missing: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"WARN", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"bogus", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

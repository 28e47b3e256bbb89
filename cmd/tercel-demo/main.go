// Package main is a small interactive demo of the tercel engine: it
// draws a status line and echoes typed text, with optional Lua
// bindings via -script.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tercel-dev/tercel/internal/app"
	"github.com/tercel-dev/tercel/internal/cell"
	"github.com/tercel-dev/tercel/internal/config"
	"github.com/tercel-dev/tercel/internal/input"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath, scriptPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}
	if scriptPath != "" {
		cfg.Script.Path = scriptPath
	}

	demo := &demoState{}
	engine, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: configPath,
		OnKey:      demo.onKey,
		OnResize:   demo.onResize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	demo.engine = engine

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		engine.Stop()
	}()

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	stats := engine.Metrics()
	fmt.Printf("frames=%d cells=%d keys=%d\n", stats.Frames, stats.Cells, stats.Dispatched)
	return 0
}

// demoState echoes typed characters and shows a status line.
type demoState struct {
	engine *app.Engine
	row    int
	col    int
}

func (d *demoState) onKey(ev input.Event) error {
	frame := d.engine.Frame()
	w, h := frame.Size()

	switch {
	case ev.Key == input.KeyEscape || ev.Key == input.KeyCtrlC:
		return app.ErrQuit
	case ev.Key == input.KeyEnter:
		d.row++
		d.col = 0
	case ev.Key == input.KeyBackspace:
		if d.col > 0 {
			d.col--
			_ = frame.Set(d.row, d.col, cell.Empty())
		}
	case ev.Key == input.KeyRune:
		c := cell.New(ev.Rune)
		if err := frame.Set(d.row, d.col, c); err == nil {
			d.col += c.Width
		}
	}

	if d.row >= h-1 {
		d.row = 0
	}
	d.status(w, h)
	return nil
}

func (d *demoState) onResize(w, h int) {
	if d.row >= h-1 {
		d.row = 0
	}
	if d.col >= w {
		d.col = 0
	}
	d.status(w, h)
}

// status draws a reverse-video bar on the bottom row.
func (d *demoState) status(w, h int) {
	if h == 0 {
		return
	}
	frame := d.engine.Frame()
	bar := cell.DefaultStyle().Reverse()
	frame.FillRect(h-1, 0, 1, w, cell.NewStyled(' ', bar))
	text := fmt.Sprintf(" tercel demo | cursor %d,%d | esc quits ", d.row, d.col)
	frame.SetString(h-1, 0, text, bar)
}

func parseFlags() (configPath, scriptPath string) {
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&scriptPath, "script", "", "Lua script to load at startup")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tercel-demo - terminal engine demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tercel-demo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("tercel-demo %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}
	return configPath, scriptPath
}

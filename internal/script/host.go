package script

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/tercel-dev/tercel/internal/cell"
)

// API is the engine surface exposed to scripts. The app package
// implements it over the frame buffer and the event loop.
type API interface {
	// Size returns the current frame dimensions (width, height).
	Size() (int, int)

	// Write draws text into the frame buffer with the given style.
	Write(row, col int, text string, style cell.Style) error

	// Quit requests a clean shutdown.
	Quit()
}

// Host runs a user script in a sandboxed Lua state and dispatches
// decoded key events to script-registered bindings. Not safe for
// concurrent use; the event loop owns it.
type Host struct {
	mu       sync.Mutex
	L        *lua.LState
	api      API
	timeout  time.Duration
	bindings map[string]*lua.LFunction
	closed   bool
}

// NewHost creates a sandboxed host. timeout bounds each handler call;
// zero means no deadline.
func NewHost(api API, timeout time.Duration) *Host {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	h := &Host{
		L:        L,
		api:      api,
		timeout:  timeout,
		bindings: make(map[string]*lua.LFunction),
	}
	NewSandbox(L).Install()
	L.PreloadModule("tercel", h.loadModule)
	return h
}

// Close releases the Lua state. The host is unusable afterwards.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.L.Close()
}

// Run executes the startup script.
func (h *Host) Run(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("script host is closed")
	}
	if err := h.L.DoFile(path); err != nil {
		return fmt.Errorf("running script %s: %w", path, err)
	}
	return nil
}

// RunString executes source directly. Used by tests and the demo.
func (h *Host) RunString(source string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("script host is closed")
	}
	if err := h.L.DoString(source); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}

// Bound reports whether a binding exists for the given key name.
func (h *Host) Bound(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.bindings[name]
	return ok
}

// HandleKey invokes the binding registered for name, if any. The call
// runs under the host's deadline; a timed-out or erroring handler
// reports the error without poisoning the state.
func (h *Host) HandleKey(name string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false, nil
	}
	fn, ok := h.bindings[name]
	if !ok {
		return false, nil
	}

	if h.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		h.L.SetContext(ctx)
		defer func() {
			cancel()
			h.L.RemoveContext()
		}()
	}

	err := h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	if err != nil {
		return true, fmt.Errorf("key handler %q: %w", name, err)
	}
	return true, nil
}

// loadModule builds the "tercel" module table.
func (h *Host) loadModule(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"bind":  h.luaBind,
		"write": h.luaWrite,
		"size":  h.luaSize,
		"quit":  h.luaQuit,
	})
	L.Push(mod)
	return 1
}

// luaBind implements tercel.bind(name, fn).
func (h *Host) luaBind(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if name == "" {
		L.ArgError(1, "binding name must not be empty")
		return 0
	}
	h.bindings[name] = fn
	return 0
}

// luaWrite implements tercel.write(row, col, text [, attr...]).
// Attrs are names like "bold" or "reverse"; unknown names raise.
func (h *Host) luaWrite(L *lua.LState) int {
	row := L.CheckInt(1)
	col := L.CheckInt(2)
	text := L.CheckString(3)

	style := cell.DefaultStyle()
	for i := 4; i <= L.GetTop(); i++ {
		name := L.CheckString(i)
		attr, ok := cell.AttrFromName(name)
		if !ok {
			L.ArgError(i, fmt.Sprintf("unknown attribute %q", name))
			return 0
		}
		style.Attrs = style.Attrs.With(attr)
	}

	if err := h.api.Write(row, col, text, style); err != nil {
		L.RaiseError("write failed: %v", err)
		return 0
	}
	return 0
}

// luaSize implements tercel.size() -> width, height.
func (h *Host) luaSize(L *lua.LState) int {
	w, ht := h.api.Size()
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(ht))
	return 2
}

// luaQuit implements tercel.quit().
func (h *Host) luaQuit(L *lua.LState) int {
	h.api.Quit()
	return 0
}

// Package script embeds a sandboxed Lua host so users can bind keys
// and draw to the frame buffer without recompiling.
package script

import (
	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts a Lua state to safe operations: no file loading,
// no disk-based module resolution, and a whitelist-only require.
type Sandbox struct {
	L *lua.LState
}

// NewSandbox wraps an existing state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{L: L}
}

// Install applies the restrictions. Call before running any user code.
func (s *Sandbox) Install() {
	// Functions that load code from arbitrary sources.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installSafeRequire()
}

// installSafeRequire clears package.path/cpath so nothing resolves from
// disk, prunes package.loaded to built-ins, and replaces require with a
// whitelist version. Modules preloaded by the host (the "tercel" API)
// remain reachable.
func (s *Sandbox) installSafeRequire() {
	safeModules := map[string]bool{
		"string": true,
		"table":  true,
		"math":   true,
		"bit32":  true,
		"utf8":   true,
	}

	if pkgTable, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkgTable, "path", lua.LString(""))
		s.L.SetField(pkgTable, "cpath", lua.LString(""))

		safeLoaded := map[string]bool{
			"_G": true, "string": true, "table": true, "math": true,
			"bit32": true, "utf8": true, "package": true,
		}
		if loadedTbl, ok := s.L.GetField(pkgTable, "loaded").(*lua.LTable); ok {
			var remove []string
			loadedTbl.ForEach(func(k, _ lua.LValue) {
				if ks, ok := k.(lua.LString); ok && !safeLoaded[string(ks)] {
					remove = append(remove, string(ks))
				}
			})
			for _, key := range remove {
				loadedTbl.RawSetString(key, lua.LNil)
			}
		}
	}

	originalRequire := s.L.GetGlobal("require")
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)
		if safeModules[modName] || modName == "tercel" {
			L.Push(originalRequire)
			L.Push(lua.LString(modName))
			L.Call(1, 1)
			return 1
		}
		L.RaiseError("module %q is not available in the sandbox", modName)
		return 0
	}))
}

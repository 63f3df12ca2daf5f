package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM removes every global that reaches outside the interpreter:
// os and io, module loading (require, dofile, loadfile, load, loadstring)
// and debug. string, table, math and the basic functions stay available.
// Config files are declarative and must not run commands or read files.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"os",
		"io",
		"require",
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"debug",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a new Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}

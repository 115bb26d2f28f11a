// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handler

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/routemark-network/routemarkd/fault"
)

// the deployed chunk must define this global function
const entryFunction = "handle"

// Lua - a handler executing a deployed Lua chunk
//
// each invocation runs in a fresh interpreter state so one request
// can never observe another
type Lua struct {
	source []byte
}

// NewLua - wrap deployed code bytes
func NewLua(code []byte) *Lua {
	source := make([]byte, len(code))
	copy(source, code)
	return &Lua{source: source}
}

// Compile - check that code is a loadable Lua chunk
//
// run once at deployment as the initialisation step; a deployment
// whose code does not compile is rejected before any state is written
func Compile(code []byte) error {
	L := lua.NewState()
	defer L.Close()

	if _, err := L.LoadString(string(code)); nil != err {
		return fault.ProcessErrorf("code does not compile: %s", err)
	}
	return nil
}

// Invoke - execute the chunk's handle(payload) function
func (h *Lua) Invoke(payload []byte) ([]byte, error) {
	L := lua.NewState()
	defer L.Close()
	L.OpenLibs()

	if err := L.DoString(string(h.source)); nil != err {
		return nil, fault.ProcessErrorf("handler load failed: %s", err)
	}

	fn := L.GetGlobal(entryFunction)
	if lua.LTFunction != fn.Type() {
		return nil, fault.ProcessErrorf("handler does not define function: %q", entryFunction)
	}

	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(payload))
	if nil != err {
		return nil, fault.ProcessErrorf("handler execution failed: %s", err)
	}

	result := L.Get(-1)
	L.Pop(1)

	s, ok := result.(lua.LString)
	if !ok {
		return nil, fault.ProcessErrorf("handler returned %s, expected string", result.Type())
	}
	return []byte(string(s)), nil
}

// Package script provides an optional, sandboxed GopherLua hook that a
// deployment can use to override a single named behavior's CanStart
// precondition, per SPEC_FULL.md §5. It has no dependency on the behavior
// package's types; the engine-state snapshot crosses the boundary as a Lua
// table built from plain fields.
package script

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit bounds how many Lua opcodes a single precondition
// call may execute, grounded on the teacher's scripting.DefaultInstructionLimit.
const DefaultInstructionLimit = 100_000

// countingContext cancels itself after Done() has been called limit times,
// matching GopherLua's mainLoopWithContext opcode-per-Done() accounting.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{Context: base, cancel: cancel, remaining: rem}, cancel
}

// newSandboxedState returns an LState with only base/table/string/math
// opened and the dangerous globals GopherLua's OpenBase leaves behind
// removed, bounded by an opcode-count deadline.
//
// Postcondition: caller owns the returned LState and cancel and must call
// both when done.
func newSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"collectgarbage", "require", "module", "newproxy",
		"setfenv", "getfenv", "_printregs",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := newCountingContext(instLimit)
	L.SetContext(ctx)

	return L, cancel
}

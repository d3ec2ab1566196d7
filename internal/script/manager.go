package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Snapshot is the subset of a behavior.Context exposed to a Lua
// precondition hook, translated into plain fields so this package stays
// free of any dependency on the behavior/msdp/textparse types.
type Snapshot struct {
	HPPercent   float64
	ManaPercent float64
	MovePercent float64
	Level       int
	InCombat    bool
	RoomVnum    int
	IsHungry    bool
	IsThirsty   bool
}

// Manager owns one sandboxed LState loaded from a single script file and
// dispatches named precondition hooks against it, grounded on the
// teacher's scripting.Manager but simplified to a single VM, shared by every
// bot of a run, instead of one per zone — a load-generator bot has no zone
// concept.
//
// Manager is safe for concurrent CallPrecondition; L is guarded by mu.
type Manager struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel func()
	log    *zap.Logger
}

// Load reads and executes the Lua file at path in a fresh sandboxed VM.
//
// Precondition: path must be non-empty and name a readable Lua file.
// Postcondition: On success, the Manager is ready for CallPrecondition.
func Load(path string, log *zap.Logger) (*Manager, error) {
	if path == "" {
		return nil, fmt.Errorf("script.Load: path must be non-empty")
	}

	L, cancel := newSandboxedState(DefaultInstructionLimit)
	if err := L.DoFile(path); err != nil {
		cancel()
		L.Close()
		return nil, fmt.Errorf("script.Load: loading %q: %w", path, err)
	}

	return &Manager{L: L, cancel: cancel, log: log}, nil
}

// CallPrecondition calls the Lua global function named hook with a table
// built from snap. If hook is not defined, ok is false and the caller
// should fall back to the behavior's own CanStart. A Lua runtime error or
// a non-boolean return is logged at Warn and treated as "not defined"
// (precondition-false-by-omission, never a crash), matching the teacher's
// scripting.Manager.CallHook contract.
//
// Precondition: m must be non-nil (callers check this via Manager==nil).
func (m *Manager) CallPrecondition(hook string, snap Snapshot) (result bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := m.L.GetGlobal(hook)
	if fn == lua.LNil {
		return false, false
	}

	// Each call runs under a fresh opcode budget.
	callCtx, cancelCall := newCountingContext(DefaultInstructionLimit)
	defer cancelCall()
	m.L.SetContext(callCtx)

	arg := m.snapshotTable(snap)
	if err := m.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		if m.log != nil {
			m.log.Warn("script: lua runtime error", zap.String("hook", hook), zap.Error(err))
		}
		return false, false
	}

	ret := m.L.Get(-1)
	m.L.Pop(1)

	b, isBool := ret.(lua.LBool)
	if !isBool {
		if m.log != nil {
			m.log.Warn("script: hook did not return a boolean", zap.String("hook", hook))
		}
		return false, false
	}
	return bool(b), true
}

func (m *Manager) snapshotTable(snap Snapshot) *lua.LTable {
	t := m.L.NewTable()
	t.RawSetString("hp_percent", lua.LNumber(snap.HPPercent))
	t.RawSetString("mana_percent", lua.LNumber(snap.ManaPercent))
	t.RawSetString("move_percent", lua.LNumber(snap.MovePercent))
	t.RawSetString("level", lua.LNumber(snap.Level))
	t.RawSetString("in_combat", lua.LBool(snap.InCombat))
	t.RawSetString("room_vnum", lua.LNumber(snap.RoomVnum))
	t.RawSetString("is_hungry", lua.LBool(snap.IsHungry))
	t.RawSetString("is_thirsty", lua.LBool(snap.IsThirsty))
	return t
}

// Close releases the underlying LState and its opcode-limit context.
//
// Precondition: no concurrent CallPrecondition calls are in progress.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
	if m.L != nil {
		m.L.Close()
	}
}

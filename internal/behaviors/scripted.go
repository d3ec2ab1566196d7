package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/script"
)

// Scripted wraps a Behavior and overrides its CanStart with a Lua hook
// named "can_start_<name>" when one is defined, per SPEC_FULL.md §5's
// scriptable precondition hooks. Tick, Priority, TickDelay, and the
// optional Start/Stop lifecycle all delegate to the wrapped behavior
// unchanged — only the precondition is scriptable.
type Scripted struct {
	inner behavior.Behavior
	mgr   *script.Manager
	hook  string
}

// WrapScripted returns inner unchanged if mgr is nil (no script configured,
// the common case), or a Scripted decorator otherwise.
func WrapScripted(inner behavior.Behavior, mgr *script.Manager) behavior.Behavior {
	if mgr == nil {
		return inner
	}
	return &Scripted{inner: inner, mgr: mgr, hook: "can_start_" + inner.Name()}
}

func (s *Scripted) Priority() int           { return s.inner.Priority() }
func (s *Scripted) Name() string            { return s.inner.Name() }
func (s *Scripted) TickDelay() time.Duration { return s.inner.TickDelay() }
func (s *Scripted) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	return s.inner.Tick(bot, ctx)
}

// CanStart calls the scripted hook when defined; otherwise falls back to
// the wrapped behavior's own CanStart.
func (s *Scripted) CanStart(ctx behavior.Context) bool {
	snap := script.Snapshot{
		HPPercent:   ctx.Stats.HPPercent(),
		ManaPercent: ctx.Stats.ManaPercent(),
		MovePercent: ctx.Stats.MovePercent(),
		Level:       ctx.Stats.Level,
		InCombat:    ctx.Stats.InCombat,
		RoomVnum:    ctx.Room.Vnum,
		IsHungry:    ctx.IsHungry,
		IsThirsty:   ctx.IsThirsty,
	}
	if result, ok := s.mgr.CallPrecondition(s.hook, snap); ok {
		return result
	}
	return s.inner.CanStart(ctx)
}

// Start delegates to the wrapped behavior's Start, if it implements one.
func (s *Scripted) Start(ctx behavior.Context) {
	if st, ok := s.inner.(interface{ Start(behavior.Context) }); ok {
		st.Start(ctx)
	}
}

// Stop delegates to the wrapped behavior's Stop, if it implements one.
func (s *Scripted) Stop() {
	if st, ok := s.inner.(interface{ Stop() }); ok {
		st.Stop()
	}
}

package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/msdp"
)

const navigateStuckLimit = 5

// Navigate is priority 45: steps a Route (vnum -> direction) toward a
// destination vnum, failing after navigateStuckLimit consecutive ticks in
// the same room (spec.md §4.7, §8 scenario 6).
type Navigate struct {
	Destination int
	Route       map[int]string
	// OneShot marks the behavior permanently done once it succeeds, so it
	// never restarts for the remainder of the session.
	OneShot bool

	lastVnum   int
	stuckCount int
	done       bool
}

func (b *Navigate) Priority() int           { return 45 }
func (b *Navigate) Name() string            { return "Navigate" }
func (b *Navigate) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *Navigate) CanStart(ctx behavior.Context) bool {
	if b.done {
		return false
	}
	if ctx.Room.Vnum == b.Destination {
		return false
	}
	_, inRoute := b.Route[ctx.Room.Vnum]
	return inRoute
}

func (b *Navigate) Start(ctx behavior.Context) {
	b.lastVnum = ctx.Room.Vnum
	b.stuckCount = 0
}

// Step takes one step toward the destination: if the current vnum is a
// route key, emit that direction; otherwise emit `recall` (spec.md §4.7).
func (b *Navigate) step(bot behavior.Bot, vnum int) {
	if dir, ok := b.Route[vnum]; ok {
		_ = bot.SendCommand(dir)
		return
	}
	_ = bot.SendCommand("recall")
}

func (b *Navigate) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if ctx.Room.Vnum == b.Destination {
		_ = bot.SendCommand("look")
		if b.OneShot {
			b.done = true
		}
		return behavior.Completed
	}

	if needsWakeAndStand(ctx.Stats.Position) {
		_ = bot.SendCommand("wake")
		_ = bot.SendCommand("stand")
		return behavior.Continue
	}
	if ctx.Stats.Position < msdp.PositionSitting {
		// Below sitting (sleeping, resting, stunned or worse) — Navigate
		// waits; DeathRecovery outranks Navigate and handles the dead and
		// dying cases.
		return behavior.Waiting
	}

	if ctx.Room.Vnum == b.lastVnum {
		b.stuckCount++
	} else {
		b.stuckCount = 0
		b.lastVnum = ctx.Room.Vnum
	}

	if b.stuckCount >= navigateStuckLimit {
		if b.OneShot {
			b.done = true
		}
		return behavior.Failed
	}

	b.step(bot, ctx.Room.Vnum)
	return behavior.Continue
}

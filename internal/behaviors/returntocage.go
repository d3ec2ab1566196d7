package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// ReturnToCage is priority 35: when a bot has wandered (via Explore) outside
// its home circuit while healthy, it walks itself back to the hub room
// using a known route rather than waiting on a human to recall it.
type ReturnToCage struct {
	HomeVnum         int
	Route            map[int]string
	HealthyHPPercent float64

	stuckCount int
	lastVnum   int
}

func (b *ReturnToCage) Priority() int           { return 35 }
func (b *ReturnToCage) Name() string            { return "ReturnToCage" }
func (b *ReturnToCage) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *ReturnToCage) healthy(ctx behavior.Context) bool {
	threshold := b.HealthyHPPercent
	if threshold <= 0 {
		threshold = 50
	}
	return ctx.Stats.HPPercent() >= threshold
}

func (b *ReturnToCage) CanStart(ctx behavior.Context) bool {
	if ctx.Stats.InCombat || !b.healthy(ctx) {
		return false
	}
	if ctx.Room.Vnum == b.HomeVnum {
		return false
	}
	_, known := b.Route[ctx.Room.Vnum]
	return known
}

func (b *ReturnToCage) Start(ctx behavior.Context) {
	b.stuckCount = 0
	b.lastVnum = ctx.Room.Vnum
}

func (b *ReturnToCage) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if ctx.Room.Vnum == b.HomeVnum {
		return behavior.Completed
	}
	if needsWakeAndStand(ctx.Stats.Position) {
		_ = bot.SendCommand("wake")
		_ = bot.SendCommand("stand")
		return behavior.Continue
	}

	if ctx.Room.Vnum == b.lastVnum {
		b.stuckCount++
	} else {
		b.stuckCount = 0
		b.lastVnum = ctx.Room.Vnum
	}
	if b.stuckCount >= 5 {
		_ = bot.SendCommand("recall")
		return behavior.Failed
	}

	dir, ok := b.Route[ctx.Room.Vnum]
	if !ok {
		_ = bot.SendCommand("recall")
		return behavior.Failed
	}
	_ = bot.SendCommand(dir)
	return behavior.Continue
}

package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// Patrol is priority 55: cycles through a fixed sequence of cage rooms
// while healthy, lingering briefly after each combat, and sets the
// "proactive_shop" flag after each complete circuit (spec.md §4.7).
type Patrol struct {
	Rooms             []int
	Route             map[int]string
	LingerAfterCombat time.Duration
	HealthyHPPercent  float64

	idx         int
	lingerUntil time.Time
	wasInCombat bool
	stuckCount  int
	lastVnum    int
}

func (b *Patrol) Priority() int             { return 55 }
func (b *Patrol) Name() string              { return "Patrol" }
func (b *Patrol) TickDelay() time.Duration  { return 500 * time.Millisecond }

func (b *Patrol) healthy(ctx behavior.Context) bool {
	threshold := b.HealthyHPPercent
	if threshold <= 0 {
		threshold = 50
	}
	return ctx.Stats.HPPercent() >= threshold
}

func (b *Patrol) inPatrolRoom(vnum int) bool {
	for _, r := range b.Rooms {
		if r == vnum {
			return true
		}
	}
	return false
}

func (b *Patrol) CanStart(ctx behavior.Context) bool {
	return len(b.Rooms) > 0 && b.inPatrolRoom(ctx.Room.Vnum) && b.healthy(ctx) && !ctx.Stats.InCombat
}

func (b *Patrol) Start(ctx behavior.Context) {
	b.stuckCount = 0
	b.lastVnum = ctx.Room.Vnum
}

func (b *Patrol) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if ctx.Stats.InCombat {
		b.wasInCombat = true
		return behavior.Waiting
	}

	if b.wasInCombat {
		b.wasInCombat = false
		linger := b.LingerAfterCombat
		if linger <= 0 {
			linger = 2 * time.Second
		}
		b.lingerUntil = time.Now().Add(linger)
	}

	if time.Now().Before(b.lingerUntil) {
		return behavior.Waiting
	}

	if len(b.Rooms) == 0 {
		return behavior.Failed
	}

	next := b.Rooms[b.idx]
	if ctx.Room.Vnum == next {
		b.idx++
		b.stuckCount = 0
		if b.idx >= len(b.Rooms) {
			b.idx = 0
			bot.SetFlag("proactive_shop")
			return behavior.Completed
		}
		return behavior.Continue
	}

	if ctx.Room.Vnum == b.lastVnum {
		b.stuckCount++
	} else {
		b.stuckCount = 0
		b.lastVnum = ctx.Room.Vnum
	}
	if b.stuckCount >= 5 {
		return behavior.Failed
	}

	dir, ok := b.Route[ctx.Room.Vnum]
	if !ok {
		return behavior.Failed
	}
	_ = bot.SendCommand(dir)
	return behavior.Continue
}

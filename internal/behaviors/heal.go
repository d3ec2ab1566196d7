package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// Heal is priority 70: while out of combat and under any of the rest
// thresholds, it rests (or sleeps, if critically low) until all three
// resources recover to their targets. Combat starting wakes it and fails.
type Heal struct {
	RestHPPercent   float64
	RestManaPercent float64
	RestMovePercent float64
	DeepRestPercent float64

	resting bool
	sleeping bool
}

func (b *Heal) Priority() int           { return 70 }
func (b *Heal) Name() string             { return "Heal" }
func (b *Heal) TickDelay() time.Duration { return time.Second }

func (b *Heal) needsRest(ctx behavior.Context) bool {
	return ctx.Stats.HPPercent() < b.RestHPPercent ||
		ctx.Stats.ManaPercent() < b.RestManaPercent ||
		ctx.Stats.MovePercent() < b.RestMovePercent
}

func (b *Heal) CanStart(ctx behavior.Context) bool {
	return !ctx.Stats.InCombat && b.needsRest(ctx)
}

func (b *Heal) Start(ctx behavior.Context) {
	b.resting = false
	b.sleeping = false
}

func (b *Heal) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if ctx.Stats.InCombat {
		if b.sleeping || b.resting {
			_ = bot.SendCommand("wake")
		}
		return behavior.Failed
	}

	if !b.resting && !b.sleeping {
		if ctx.Stats.HPPercent() < b.DeepRestPercent {
			_ = bot.SendCommand("sleep")
			b.sleeping = true
		} else {
			_ = bot.SendCommand("rest")
			b.resting = true
		}
		return behavior.Continue
	}

	if !b.needsRest(ctx) {
		if b.sleeping {
			_ = bot.SendCommand("wake")
		}
		_ = bot.SendCommand("stand")
		return behavior.Completed
	}

	return behavior.Waiting
}

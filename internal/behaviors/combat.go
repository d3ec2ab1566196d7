package behaviors

import (
	"math/rand"
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// Combat is priority 80: while in combat it occasionally invokes a skill
// from the configured list, otherwise it waits for the next round.
type Combat struct {
	Skills     []string
	SkillOdds  float64 // probability per tick of invoking a skill; spec.md default ~30%
	RandSource *rand.Rand

	fallback *rand.Rand
}

func (b *Combat) Priority() int           { return 80 }
func (b *Combat) Name() string             { return "Combat" }
func (b *Combat) TickDelay() time.Duration { return 750 * time.Millisecond }

func (b *Combat) CanStart(ctx behavior.Context) bool {
	return ctx.Stats.InCombat
}

func (b *Combat) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if !ctx.Stats.InCombat {
		_ = bot.SendCommand("look")
		return behavior.Completed
	}

	odds := b.SkillOdds
	if odds <= 0 {
		odds = 0.3
	}
	if len(b.Skills) > 0 && b.rng().Float64() < odds {
		skill := b.Skills[b.rng().Intn(len(b.Skills))]
		_ = bot.SendCommand(skill)
		return behavior.Continue
	}

	return behavior.Waiting
}

// rng returns RandSource when the caller supplied one (tests), else a
// fallback *rand.Rand seeded once per Combat instance rather than reseeded
// every tick.
func (b *Combat) rng() *rand.Rand {
	if b.RandSource != nil {
		return b.RandSource
	}
	if b.fallback == nil {
		b.fallback = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return b.fallback
}

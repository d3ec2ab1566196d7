package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// maxFleeAttempts bounds how many consecutive `flee` commands Survive will
// send before falling through to Recall (spec.md §8 scenario 5: "5 ticks").
const maxFleeAttempts = 5

// Survive is priority 100: it flees combat when HP drops below the
// configured flee threshold, escalating to recall after repeated failures.
type Survive struct {
	FleeHPPercent float64

	// OnFleeAttempt, if set, is called on every `flee` command sent (used to
	// drive the metrics flee-attempt counter).
	OnFleeAttempt func()

	attempts int
}

func (b *Survive) Priority() int           { return 100 }
func (b *Survive) Name() string             { return "Survive" }
func (b *Survive) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *Survive) CanStart(ctx behavior.Context) bool {
	return ctx.Stats.InCombat && ctx.Stats.HPPercent() < b.FleeHPPercent
}

func (b *Survive) Start(ctx behavior.Context) {
	b.attempts = 0
}

func (b *Survive) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if !ctx.Stats.InCombat {
		return behavior.Completed
	}

	if b.attempts >= maxFleeAttempts {
		_ = bot.SendCommand("recall")
		bot.SetFlag("flee_failed")
		return behavior.Failed
	}

	b.attempts++
	if b.OnFleeAttempt != nil {
		b.OnFleeAttempt()
	}
	_ = bot.SendCommand("flee")
	return behavior.Continue
}

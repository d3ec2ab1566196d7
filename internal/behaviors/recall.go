package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// Recall is priority 95: the fallback once Survive exhausts its flee
// attempts and the character is still critically low.
type Recall struct {
	CriticalHPPercent float64
}

func (b *Recall) Priority() int           { return 95 }
func (b *Recall) Name() string             { return "Recall" }
func (b *Recall) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *Recall) CanStart(ctx behavior.Context) bool {
	return ctx.Flags["flee_failed"] && ctx.Stats.HPPercent() < b.CriticalHPPercent
}

func (b *Recall) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	_ = bot.SendCommand("recall")
	bot.ClearFlag("flee_failed")
	return behavior.Completed
}

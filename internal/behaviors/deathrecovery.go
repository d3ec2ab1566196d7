package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/msdp"
)

// DeathRecovery is priority 200: it records a death, waits for respawn, and
// sends look once the character can act again. It fails after 30s so the
// scheduler does not wedge on a server that never respawns the character.
type DeathRecovery struct {
	// OnDeath, if set, is called once when the behavior starts (e.g. to
	// increment a metrics death counter).
	OnDeath func()

	startedAt time.Time
}

func (b *DeathRecovery) Priority() int           { return 200 }
func (b *DeathRecovery) Name() string             { return "DeathRecovery" }
func (b *DeathRecovery) TickDelay() time.Duration { return 500 * time.Millisecond }

// CanStart returns true when the character is DEAD/MORTAL/INCAP, or STUNNED
// with no health remaining (spec.md §4.7, §8 boundary behavior).
func (b *DeathRecovery) CanStart(ctx behavior.Context) bool {
	pos := ctx.Stats.Position
	if pos == msdp.PositionDead || pos == msdp.PositionMortal || pos == msdp.PositionIncap {
		return true
	}
	if pos == msdp.PositionStunned && ctx.Stats.Health <= 0 {
		return true
	}
	return false
}

func (b *DeathRecovery) Start(ctx behavior.Context) {
	b.startedAt = time.Now()
	if b.OnDeath != nil {
		b.OnDeath()
	}
}

func (b *DeathRecovery) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if ctx.Stats.Position >= msdp.PositionResting && ctx.Stats.Health > 0 {
		_ = bot.SendCommand("look")
		return behavior.Completed
	}
	if time.Since(b.startedAt) >= 30*time.Second {
		return behavior.Failed
	}
	return behavior.Waiting
}

package behaviors

import (
	"math/rand"
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// idleCommands are low-impact diagnostic commands Idle occasionally sends so
// a connection looks active even when nothing else wants control.
var idleCommands = []string{"look", "score", "inventory"}

// Idle is priority 10: the bottom of the stack, always eligible, never
// preempting anything. It mostly just waits, occasionally sending a
// diagnostic command so the session produces some traffic.
type Idle struct {
	RandSource *rand.Rand
	Interval   time.Duration

	lastCommandAt time.Time
}

func (b *Idle) Priority() int           { return 10 }
func (b *Idle) Name() string            { return "Idle" }
func (b *Idle) TickDelay() time.Duration { return time.Second }

func (b *Idle) CanStart(ctx behavior.Context) bool { return true }

func (b *Idle) rng() *rand.Rand {
	if b.RandSource == nil {
		b.RandSource = rand.New(rand.NewSource(1))
	}
	return b.RandSource
}

func (b *Idle) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	interval := b.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if time.Since(b.lastCommandAt) >= interval {
		cmd := idleCommands[b.rng().Intn(len(idleCommands))]
		_ = bot.SendCommand(cmd)
		b.lastCommandAt = time.Now()
	}
	return behavior.Waiting
}

package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// Practice is priority 61: a one-shot behavior that navigates to the
// practitioner room and practices a fixed list of skills N times each.
type Practice struct {
	PractitionerVnum int
	Route            map[int]string
	Skills           []string
	PracticeCount    int

	arrived    bool
	practiced  map[string]int
	done       bool
	stuckCount int
	lastVnum   int
}

func (b *Practice) Priority() int           { return 61 }
func (b *Practice) Name() string             { return "Practice" }
func (b *Practice) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *Practice) CanStart(ctx behavior.Context) bool {
	return !b.done
}

func (b *Practice) Start(ctx behavior.Context) {
	b.practiced = make(map[string]int, len(b.Skills))
	b.lastVnum = ctx.Room.Vnum
}

func (b *Practice) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if ctx.Room.Vnum == b.PractitionerVnum {
		b.arrived = true
	}

	if !b.arrived {
		if ctx.Room.Vnum == b.lastVnum {
			b.stuckCount++
		} else {
			b.stuckCount = 0
			b.lastVnum = ctx.Room.Vnum
		}
		if b.stuckCount >= 5 {
			b.done = true
			return behavior.Failed
		}
		dir, ok := b.Route[ctx.Room.Vnum]
		if !ok {
			b.done = true
			return behavior.Failed
		}
		_ = bot.SendCommand(dir)
		return behavior.Continue
	}

	count := b.PracticeCount
	if count <= 0 {
		count = 1
	}

	for _, skill := range b.Skills {
		if b.practiced[skill] < count {
			_ = bot.SendCommand("practice " + skill)
			b.practiced[skill]++
			return behavior.Continue
		}
	}

	b.done = true
	return behavior.Completed
}

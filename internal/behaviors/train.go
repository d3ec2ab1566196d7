package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// Train is priority 62: a one-shot behavior that navigates to the trainer
// room and trains a fixed list of stats N times each.
type Train struct {
	TrainerVnum int
	Route       map[int]string
	Stats       []string
	TrainCount  int

	arrived    bool
	trained    map[string]int
	statIdx    int
	done       bool
	stuckCount int
	lastVnum   int
}

func (b *Train) Priority() int           { return 62 }
func (b *Train) Name() string             { return "Train" }
func (b *Train) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *Train) CanStart(ctx behavior.Context) bool {
	return !b.done
}

func (b *Train) Start(ctx behavior.Context) {
	b.trained = make(map[string]int, len(b.Stats))
	b.lastVnum = ctx.Room.Vnum
}

func (b *Train) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if ctx.Room.Vnum == b.TrainerVnum {
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

	count := b.TrainCount
	if count <= 0 {
		count = 1
	}

	for _, stat := range b.Stats {
		if b.trained[stat] < count {
			_ = bot.SendCommand("train " + stat)
			b.trained[stat]++
			return behavior.Continue
		}
	}

	b.done = true
	return behavior.Completed
}

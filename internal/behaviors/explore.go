package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/textparse"
)

var oppositeDirection = map[string]string{
	"north": "south", "south": "north",
	"east": "west", "west": "east",
	"up": "down", "down": "up",
	"northeast": "southwest", "southwest": "northeast",
	"northwest": "southeast", "southeast": "northwest",
}

// Explore is priority 40: the fallback wanderer. It prefers BOT-known exits
// leading to rooms it hasn't visited yet, and avoids immediately backtracking
// along the reverse of the last direction taken unless no other choice
// remains (spec.md §4.7).
type Explore struct {
	visited map[int]bool
	lastDir string
}

func (b *Explore) Priority() int           { return 40 }
func (b *Explore) Name() string            { return "Explore" }
func (b *Explore) TickDelay() time.Duration { return 750 * time.Millisecond }

func (b *Explore) CanStart(ctx behavior.Context) bool {
	if ctx.Stats.InCombat {
		return false
	}
	if needsWakeAndStand(ctx.Stats.Position) {
		return true
	}
	if !ctx.Stats.CanMove() {
		return false
	}
	return len(ctx.Bot.Exits) > 0
}

func (b *Explore) markVisited(vnum int) {
	if b.visited == nil {
		b.visited = make(map[int]bool)
	}
	b.visited[vnum] = true
}

// choose picks the best exit among the known exits: first preference is an
// unvisited destination that isn't the reverse of the last direction taken;
// second is any non-reverse exit; last resort is the reverse itself.
func (b *Explore) choose(exits []textparse.ExitRecord) string {
	reverse := oppositeDirection[b.lastDir]

	var fallback string
	for _, e := range exits {
		if e.Dir == reverse {
			fallback = e.Dir
			continue
		}
		if !b.visited[e.Vnum] {
			return e.Dir
		}
	}
	for _, e := range exits {
		if e.Dir != reverse {
			return e.Dir
		}
	}
	return fallback
}

func (b *Explore) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if needsWakeAndStand(ctx.Stats.Position) {
		_ = bot.SendCommand("wake")
		_ = bot.SendCommand("stand")
		return behavior.Continue
	}

	b.markVisited(ctx.Room.Vnum)

	if len(ctx.Bot.Exits) == 0 {
		return behavior.Failed
	}

	dir := b.choose(ctx.Bot.Exits)
	if dir == "" {
		return behavior.Failed
	}

	_ = bot.SendCommand(dir)
	b.lastDir = dir
	return behavior.Continue
}

package behaviors

import (
	"regexp"
	"strings"
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

var gotItemPattern = regexp.MustCompile(`(?i)You get (.+?) from (?:the )?corpse`)

// Loot is priority 75: once combat ends and a corpse is present, it loots,
// sends "compare" for each item it picked up, then sacrifices the corpse.
// It does not wear or drop the compared items.
// It has a cooldown to avoid re-looting the same corpse repeatedly.
type Loot struct {
	Cooldown time.Duration

	state      lootState
	lastLooted time.Time
}

type lootState int

const (
	lootIdle lootState = iota
	lootGetting
	lootSacrificing
)

func (b *Loot) Priority() int           { return 75 }
func (b *Loot) Name() string             { return "Loot" }
func (b *Loot) TickDelay() time.Duration { return 400 * time.Millisecond }

func (b *Loot) hasCorpse(ctx behavior.Context) bool {
	for _, o := range ctx.Bot.Objs {
		if strings.Contains(strings.ToLower(o.Type), "corpse") {
			return true
		}
	}
	return false
}

func (b *Loot) CanStart(ctx behavior.Context) bool {
	if ctx.Stats.InCombat {
		return false
	}
	if !b.hasCorpse(ctx) {
		return false
	}
	cd := b.Cooldown
	if cd <= 0 {
		cd = 2 * time.Second
	}
	return time.Since(b.lastLooted) >= cd
}

func (b *Loot) Start(ctx behavior.Context) {
	b.state = lootGetting
}

func (b *Loot) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	switch b.state {
	case lootGetting:
		_ = bot.SendCommand("get all corpse")
		for _, m := range gotItemPattern.FindAllStringSubmatch(ctx.LastText, -1) {
			item := m[1]
			_ = bot.SendCommand("compare " + item)
		}
		b.state = lootSacrificing
		return behavior.Continue
	case lootSacrificing:
		_ = bot.SendCommand("sacrifice corpse")
		b.lastLooted = time.Now()
		b.state = lootIdle
		return behavior.Completed
	default:
		return behavior.Completed
	}
}

package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// Attack is priority 60: initiates combat against an eligible target once
// out of combat, healthy enough, and past its cooldown.
type Attack struct {
	AttackHPPercent float64
	MaxLevelDiff    int
	Whitelist       []string
	Cooldown        time.Duration

	lastAttack time.Time
}

func (b *Attack) Priority() int           { return 60 }
func (b *Attack) Name() string             { return "Attack" }
func (b *Attack) TickDelay() time.Duration { return 200 * time.Millisecond }

func (b *Attack) cooldownElapsed() bool {
	cd := b.Cooldown
	if cd <= 0 {
		cd = 2 * time.Second
	}
	return time.Since(b.lastAttack) >= cd
}

// CanStart requires a BOT mob list to be non-empty when BOT mode is active;
// per spec.md §8 it must not fall back to heuristic text mobs just because
// the structured list happens to be momentarily empty right after a room
// change (it waits for data instead).
func (b *Attack) CanStart(ctx behavior.Context) bool {
	if ctx.Stats.InCombat {
		return false
	}
	if ctx.Stats.HPPercent() < b.AttackHPPercent {
		return false
	}
	if !b.cooldownElapsed() {
		return false
	}

	maxDiff := b.MaxLevelDiff
	if maxDiff == 0 {
		maxDiff = 3
	}

	if ctx.Bot.BotModeActive {
		// BOT mode is active for this session; only the structured list
		// counts, even if it is momentarily empty (spec.md §8 boundary).
		keyword, _ := selectTarget(ctx, ctx.Stats.Level, maxDiff, b.Whitelist)
		return keyword != ""
	}

	name, ok := heuristicMobFromText(ctx.LastText)
	if !ok {
		return false
	}
	return eligibleMob(name, ctx.Stats.Level, nil, ctx.Stats.Level, maxDiff, b.Whitelist)
}

func (b *Attack) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	maxDiff := b.MaxLevelDiff
	if maxDiff == 0 {
		maxDiff = 3
	}

	var keyword string
	if ctx.Bot.BotModeActive {
		keyword, _ = selectTarget(ctx, ctx.Stats.Level, maxDiff, b.Whitelist)
	} else if name, ok := heuristicMobFromText(ctx.LastText); ok {
		keyword = attackKeyword(name)
	}

	if keyword == "" {
		return behavior.Failed
	}

	_ = bot.SendCommand("kill " + keyword)
	b.lastAttack = time.Now()
	return behavior.Completed
}

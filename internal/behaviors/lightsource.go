package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// LightSource is priority 85: it swaps a held light source in or out
// depending on whether the current room is dark (spec.md §4.7).
type LightSource struct {
	// HeldLantern tracks whether the bot currently believes it is holding a
	// lit lantern; toggled by Tick as a simple local model (no inventory
	// introspection is in scope).
	HeldLantern bool
}

func (b *LightSource) Priority() int           { return 85 }
func (b *LightSource) Name() string             { return "LightSource" }
func (b *LightSource) TickDelay() time.Duration { return time.Second }

func (b *LightSource) CanStart(ctx behavior.Context) bool {
	dark := ctx.Bot.Room != nil && containsFlag(ctx.Bot.Room.Flags, "dark")
	return dark != b.HeldLantern
}

func (b *LightSource) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	dark := ctx.Bot.Room != nil && containsFlag(ctx.Bot.Room.Flags, "dark")
	if dark && !b.HeldLantern {
		_ = bot.SendCommand("wield lantern")
		b.HeldLantern = true
	} else if !dark && b.HeldLantern {
		_ = bot.SendCommand("remove lantern")
		b.HeldLantern = false
	}
	return behavior.Completed
}

func containsFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

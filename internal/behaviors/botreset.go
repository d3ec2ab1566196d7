package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

// BotReset is priority 65: a one-shot startup behavior that sends a reset
// command and waits until the character's room matches a known entrance
// vnum before letting subsequent one-shot behaviors proceed.
type BotReset struct {
	EntranceVnum int
	ResetCommand string

	sent bool
	done bool
}

func (b *BotReset) Priority() int           { return 65 }
func (b *BotReset) Name() string             { return "BotReset" }
func (b *BotReset) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *BotReset) CanStart(ctx behavior.Context) bool {
	return !b.done
}

func (b *BotReset) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	if !b.sent {
		cmd := b.ResetCommand
		if cmd == "" {
			cmd = "reset"
		}
		_ = bot.SendCommand(cmd)
		b.sent = true
		return behavior.Continue
	}

	if ctx.Room.Vnum == b.EntranceVnum {
		b.done = true
		return behavior.Completed
	}

	return behavior.Waiting
}

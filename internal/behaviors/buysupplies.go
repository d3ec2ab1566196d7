package behaviors

import (
	"time"

	"github.com/cory-johannsen/mudload/internal/behavior"
)

type buySuppliesState int

const (
	buyWalkingToShop buySuppliesState = iota
	buyPurchasing
	buyConsuming
	buyWalkingBack
)

// BuySupplies is priority 56: when hungry/thirsty (or the proactive-shop
// flag is set) and the bot has at least MinMoney, it walks to the shop,
// buys, eats/drinks, and walks back. Its start condition does not check
// the bot's current location.
type BuySupplies struct {
	ShopVnum       int
	HomeVnum       int
	RouteToShop    map[int]string
	RouteFromShop  map[int]string
	MinMoney       int
	FoodItem       string
	DrinkItem      string

	state            buySuppliesState
	stuckCount       int
	lastVnum         int
	clearedProactive bool
}

func (b *BuySupplies) Priority() int           { return 56 }
func (b *BuySupplies) Name() string             { return "BuySupplies" }
func (b *BuySupplies) TickDelay() time.Duration { return 500 * time.Millisecond }

func (b *BuySupplies) CanStart(ctx behavior.Context) bool {
	needs := ctx.IsHungry || ctx.IsThirsty || ctx.ShouldProactiveShop
	if !needs {
		return false
	}
	if b.MinMoney > 0 && ctx.Stats.Money < b.MinMoney {
		return false
	}
	return true
}

func (b *BuySupplies) Start(ctx behavior.Context) {
	b.state = buyWalkingToShop
	b.stuckCount = 0
	b.lastVnum = ctx.Room.Vnum
	b.clearedProactive = false
}

func (b *BuySupplies) step(bot behavior.Bot, ctx behavior.Context, target int, route map[int]string) behavior.TickResult {
	if ctx.Room.Vnum == target {
		return behavior.Completed
	}
	if ctx.Room.Vnum == b.lastVnum {
		b.stuckCount++
	} else {
		b.stuckCount = 0
		b.lastVnum = ctx.Room.Vnum
	}
	if b.stuckCount >= 5 {
		return behavior.Failed
	}
	dir, ok := route[ctx.Room.Vnum]
	if !ok {
		return behavior.Failed
	}
	_ = bot.SendCommand(dir)
	return behavior.Continue
}

func (b *BuySupplies) Tick(bot behavior.Bot, ctx behavior.Context) behavior.TickResult {
	// Patrol latches "proactive_shop" after each circuit (patrol.go); clear
	// it as soon as a run actually starts so it does not loop or preempt
	// lower-priority behaviors forever once funds allow (spec.md §4.7,
	// original_source/.../behaviors/inventory.py:301-305).
	if !b.clearedProactive {
		bot.ClearFlag("proactive_shop")
		b.clearedProactive = true
	}

	switch b.state {
	case buyWalkingToShop:
		r := b.step(bot, ctx, b.ShopVnum, b.RouteToShop)
		if r == behavior.Completed {
			b.state = buyPurchasing
			return behavior.Continue
		}
		return r

	case buyPurchasing:
		if b.FoodItem != "" {
			_ = bot.SendCommand("buy " + b.FoodItem)
		}
		if b.DrinkItem != "" {
			_ = bot.SendCommand("buy " + b.DrinkItem)
		}
		b.state = buyConsuming
		return behavior.Continue

	case buyConsuming:
		if ctx.IsHungry && b.FoodItem != "" {
			_ = bot.SendCommand("eat " + b.FoodItem)
		}
		if ctx.IsThirsty && b.DrinkItem != "" {
			_ = bot.SendCommand("drink " + b.DrinkItem)
		}
		b.state = buyWalkingBack
		b.stuckCount = 0
		b.lastVnum = ctx.Room.Vnum
		return behavior.Continue

	case buyWalkingBack:
		r := b.step(bot, ctx, b.HomeVnum, b.RouteFromShop)
		if r == behavior.Completed {
			bot.ResetNeedsState()
		}
		return r

	default:
		return behavior.Completed
	}
}

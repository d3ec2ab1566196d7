package coordinator

import (
	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/behaviors"
	"github.com/cory-johannsen/mudload/internal/config"
	"github.com/cory-johannsen/mudload/internal/metrics"
	"github.com/cory-johannsen/mudload/internal/script"
)

// registerBehaviors registers every behavior this bot should run, per
// spec.md §4.8 step 3: the universal survival/combat/explore set is always
// registered; the one-shot and route-dependent behaviors (BotReset, Train,
// Practice, BuySupplies, Patrol, ReturnToCage) are registered only when the
// operator supplied the corresponding world data, since route tables are
// static data this load generator never discovers on its own. Navigate is
// not registered here.
// When mgr is non-nil (cfg.Behavior.ScriptFile was loaded), every behavior
// is wrapped so a deployment can override its CanStart with a named Lua
// hook (SPEC_FULL.md §5); mgr==nil is the common case and leaves every
// behavior's Go CanStart unchanged.
func registerBehaviors(engine *behavior.Engine, cfg config.Config, rec *metrics.Record, mgr *script.Manager) {
	b := cfg.Behavior
	w := cfg.World

	reg := func(beh behavior.Behavior) {
		engine.Register(behaviors.WrapScripted(beh, mgr))
	}

	reg(&behaviors.DeathRecovery{OnDeath: rec.RecordDeath})
	reg(&behaviors.Survive{FleeHPPercent: b.FleeHPPercent, OnFleeAttempt: rec.RecordFleeAttempt})
	reg(&behaviors.Recall{CriticalHPPercent: b.CriticalHPPercent})
	reg(&behaviors.LightSource{})
	reg(&behaviors.Combat{Skills: w.CombatSkills, SkillOdds: w.SkillOdds})
	reg(&behaviors.Loot{})
	reg(&behaviors.Heal{
		RestHPPercent:   b.RestHPPercent,
		RestManaPercent: b.RestManaPercent,
		RestMovePercent: b.RestMovePercent,
		DeepRestPercent: b.DeepRestPercent,
	})

	if w.BotResetEntranceVnum != 0 {
		reg(&behaviors.BotReset{
			EntranceVnum: w.BotResetEntranceVnum,
			ResetCommand: w.BotResetCommand,
		})
	}

	if w.TrainerVnum != 0 && len(w.TrainRoute) > 0 && len(w.TrainStats) > 0 {
		reg(&behaviors.Train{
			TrainerVnum: w.TrainerVnum,
			Route:       w.TrainRoute,
			Stats:       w.TrainStats,
			TrainCount:  w.TrainCount,
		})
	}

	if w.PractitionerVnum != 0 && len(w.PracticeRoute) > 0 && len(w.PracticeSkills) > 0 {
		reg(&behaviors.Practice{
			PractitionerVnum: w.PractitionerVnum,
			Route:            w.PracticeRoute,
			Skills:           w.PracticeSkills,
			PracticeCount:    w.PracticeCount,
		})
	}

	reg(&behaviors.Attack{
		AttackHPPercent: b.AttackHPPercent,
		MaxLevelDiff:    b.MaxLevelDiff,
		Whitelist:       b.Targets,
	})

	if w.ShopVnum != 0 && len(w.RouteToShop) > 0 && len(w.RouteFromShop) > 0 {
		reg(&behaviors.BuySupplies{
			ShopVnum:      w.ShopVnum,
			HomeVnum:      w.HomeVnum,
			RouteToShop:   w.RouteToShop,
			RouteFromShop: w.RouteFromShop,
			MinMoney:      w.MinMoney,
			FoodItem:      w.FoodItem,
			DrinkItem:     w.DrinkItem,
		})
	}

	if len(w.PatrolRooms) > 0 && len(w.PatrolRoute) > 0 {
		reg(&behaviors.Patrol{Rooms: w.PatrolRooms, Route: w.PatrolRoute})
	}

	if w.HomeVnum != 0 && len(w.ReturnToCageRoute) > 0 {
		reg(&behaviors.ReturnToCage{
			HomeVnum: w.HomeVnum,
			Route:    w.ReturnToCageRoute,
		})
	}

	reg(&behaviors.Explore{})
	reg(&behaviors.Idle{})
}

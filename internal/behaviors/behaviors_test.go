package behaviors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/msdp"
	"github.com/cory-johannsen/mudload/internal/textparse"
)

// fakeBot is a minimal behavior.Bot for exercising a single behavior's Tick
// in isolation, without a full Engine.
type fakeBot struct {
	sent            []string
	flags           map[string]bool
	needsStateReset int
}

func newFakeBot() *fakeBot { return &fakeBot{flags: make(map[string]bool)} }

func (f *fakeBot) SendCommand(text string) error {
	f.sent = append(f.sent, text)
	return nil
}
func (f *fakeBot) SetFlag(name string)   { f.flags[name] = true }
func (f *fakeBot) ClearFlag(name string) { delete(f.flags, name) }
func (f *fakeBot) Flag(name string) bool { return f.flags[name] }
func (f *fakeBot) ResetNeedsState()      { f.needsStateReset++ }

func TestDeathRecoveryCanStartBoundary(t *testing.T) {
	d := &DeathRecovery{}

	stunnedDead := behavior.Context{Stats: msdp.CharacterStats{Position: msdp.PositionStunned, Health: 0}}
	assert.True(t, d.CanStart(stunnedDead), "STUNNED with hp<=0 must be eligible for recovery")

	stunnedAlive := behavior.Context{Stats: msdp.CharacterStats{Position: msdp.PositionStunned, Health: 5}}
	assert.False(t, d.CanStart(stunnedAlive), "STUNNED with hp>0 is not a death-recovery case")

	mortal := behavior.Context{Stats: msdp.CharacterStats{Position: msdp.PositionMortal}}
	assert.True(t, d.CanStart(mortal))

	standing := behavior.Context{Stats: msdp.CharacterStats{Position: msdp.PositionStanding, Health: 100, HealthMax: 100}}
	assert.False(t, d.CanStart(standing))
}

func TestDeathRecoveryTickCompletesOnceUpright(t *testing.T) {
	d := &DeathRecovery{}
	ctx := behavior.Context{Stats: msdp.CharacterStats{Position: msdp.PositionMortal}}
	d.Start(ctx)

	bot := newFakeBot()
	restingHealthy := behavior.Context{Stats: msdp.CharacterStats{Position: msdp.PositionResting, Health: 10, HealthMax: 100}}
	result := d.Tick(bot, restingHealthy)
	assert.Equal(t, behavior.Completed, result)
	assert.Contains(t, bot.sent, "look")
}

func TestDeathRecoveryTickFailsAfterTimeout(t *testing.T) {
	d := &DeathRecovery{}
	d.Start(behavior.Context{})
	d.startedAt = time.Now().Add(-time.Hour)

	bot := newFakeBot()
	stillDead := behavior.Context{Stats: msdp.CharacterStats{Position: msdp.PositionMortal}}
	result := d.Tick(bot, stillDead)
	assert.Equal(t, behavior.Failed, result)
}

func TestSurviveFleeCascadeThenRecall(t *testing.T) {
	s := &Survive{FleeHPPercent: 30}
	ctx := behavior.Context{Stats: msdp.CharacterStats{InCombat: true, Health: 10, HealthMax: 100}}

	assert.True(t, s.CanStart(ctx))
	s.Start(ctx)

	bot := newFakeBot()
	var result behavior.TickResult
	for i := 0; i < maxFleeAttempts; i++ {
		result = s.Tick(bot, ctx)
		assert.Equal(t, behavior.Continue, result)
		assert.Equal(t, "flee", bot.sent[len(bot.sent)-1])
	}

	result = s.Tick(bot, ctx)
	assert.Equal(t, behavior.Failed, result, "after maxFleeAttempts flee attempts, Survive must give up")
	assert.Equal(t, "recall", bot.sent[len(bot.sent)-1])
	assert.True(t, bot.flags["flee_failed"])
}

func TestSurviveCompletesWhenCombatEnds(t *testing.T) {
	s := &Survive{FleeHPPercent: 30}
	inCombat := behavior.Context{Stats: msdp.CharacterStats{InCombat: true, Health: 10, HealthMax: 100}}
	s.Start(inCombat)

	bot := newFakeBot()
	outOfCombat := behavior.Context{Stats: msdp.CharacterStats{InCombat: false, Health: 10, HealthMax: 100}}
	result := s.Tick(bot, outOfCombat)
	assert.Equal(t, behavior.Completed, result)
}

func TestRecallFiresOnlyAfterFleeFailedAndCritical(t *testing.T) {
	r := &Recall{CriticalHPPercent: 15}

	notCritical := behavior.Context{
		Stats: msdp.CharacterStats{Health: 50, HealthMax: 100},
		Flags: map[string]bool{"flee_failed": true},
	}
	assert.False(t, r.CanStart(notCritical), "flee_failed alone is not enough without critical hp")

	criticalNoFlag := behavior.Context{
		Stats: msdp.CharacterStats{Health: 5, HealthMax: 100},
		Flags: map[string]bool{},
	}
	assert.False(t, r.CanStart(criticalNoFlag), "critical hp alone is not enough without flee_failed")

	both := behavior.Context{
		Stats: msdp.CharacterStats{Health: 5, HealthMax: 100},
		Flags: map[string]bool{"flee_failed": true},
	}
	assert.True(t, r.CanStart(both))

	bot := newFakeBot()
	result := r.Tick(bot, both)
	assert.Equal(t, behavior.Completed, result)
	assert.Contains(t, bot.sent, "recall")
	assert.False(t, bot.flags["flee_failed"], "Recall must clear flee_failed once it has acted")
}

func TestAttackBotModeActiveWithEmptyMobsWaitsInsteadOfHeuristic(t *testing.T) {
	a := &Attack{AttackHPPercent: 50}
	ctx := behavior.Context{
		Stats: msdp.CharacterStats{Health: 100, HealthMax: 100, Level: 10},
		Bot: textparse.BotSnapshot{
			BotModeActive: true,
			Mobs:          nil,
		},
		LastText: "A fierce rat is here, looking hungry.",
	}
	assert.False(t, a.CanStart(ctx), "BOT mode active with an empty mob list must wait, never fall back to heuristic text")
}

func TestAttackSelectsEligibleBotMob(t *testing.T) {
	a := &Attack{AttackHPPercent: 50, MaxLevelDiff: 3}
	ctx := behavior.Context{
		Stats: msdp.CharacterStats{Health: 100, HealthMax: 100, Level: 10},
		Bot: textparse.BotSnapshot{
			BotModeActive: true,
			Mobs: []textparse.MobRecord{
				{Name: "a city guard", Level: 10},
				{Name: "a giant rat", Level: 9},
			},
		},
	}
	assert.True(t, a.CanStart(ctx))

	bot := newFakeBot()
	result := a.Tick(bot, ctx)
	assert.Equal(t, behavior.Completed, result)
	assert.Equal(t, []string{"kill a"}, bot.sent)
}

func TestAttackFallsBackToHeuristicWhenBotModeNeverSeen(t *testing.T) {
	a := &Attack{AttackHPPercent: 50, MaxLevelDiff: 3}
	ctx := behavior.Context{
		Stats:    msdp.CharacterStats{Health: 100, HealthMax: 100, Level: 10},
		Bot:      textparse.BotSnapshot{BotModeActive: false},
		LastText: "A giant rat is here, gnawing on a bone.",
	}
	assert.True(t, a.CanStart(ctx))
}

func TestNavigateStepsRouteAndDetectsStuck(t *testing.T) {
	n := &Navigate{
		Destination: 300,
		Route:       map[int]string{100: "north", 200: "east"},
	}
	ctx := behavior.Context{
		Stats: msdp.CharacterStats{Position: msdp.PositionStanding},
		Room:  msdp.RoomInfo{Vnum: 100},
	}
	assert.True(t, n.CanStart(ctx))
	n.Start(ctx)

	bot := newFakeBot()
	result := n.Tick(bot, ctx)
	assert.Equal(t, behavior.Continue, result)
	assert.Equal(t, "north", bot.sent[0])

	// Stuck: room_vnum never advances past 100.
	for i := 0; i < navigateStuckLimit; i++ {
		result = n.Tick(bot, ctx)
	}
	assert.Equal(t, behavior.Failed, result)
}

func TestNavigateCompletesAtDestination(t *testing.T) {
	n := &Navigate{Destination: 300, Route: map[int]string{100: "north"}}
	bot := newFakeBot()
	atDest := behavior.Context{
		Stats: msdp.CharacterStats{Position: msdp.PositionStanding},
		Room:  msdp.RoomInfo{Vnum: 300},
	}
	result := n.Tick(bot, atDest)
	assert.Equal(t, behavior.Completed, result)
}

func TestNavigateWakesAndStandsBeforeMoving(t *testing.T) {
	n := &Navigate{Destination: 300, Route: map[int]string{100: "north"}}
	bot := newFakeBot()
	sitting := behavior.Context{
		Stats: msdp.CharacterStats{Position: msdp.PositionSitting},
		Room:  msdp.RoomInfo{Vnum: 100},
	}
	result := n.Tick(bot, sitting)
	assert.Equal(t, behavior.Continue, result)
	assert.Equal(t, []string{"wake", "stand"}, bot.sent)
}

func TestCombatVictorySendsLookThenCompletes(t *testing.T) {
	c := &Combat{SkillOdds: 0}
	inCombat := behavior.Context{Stats: msdp.CharacterStats{InCombat: true}}
	assert.True(t, c.CanStart(inCombat))

	bot := newFakeBot()
	victory := behavior.Context{Stats: msdp.CharacterStats{InCombat: false}}
	result := c.Tick(bot, victory)
	assert.Equal(t, behavior.Completed, result)
	assert.Contains(t, bot.sent, "look")
}

func TestExploreAvoidsImmediateBacktrack(t *testing.T) {
	e := &Explore{lastDir: "north"}
	ctx := behavior.Context{
		Stats: msdp.CharacterStats{Position: msdp.PositionStanding},
		Room:  msdp.RoomInfo{Vnum: 1},
		Bot: textparse.BotSnapshot{
			Exits: []textparse.ExitRecord{
				{Dir: "south", Vnum: 2},
				{Dir: "east", Vnum: 3},
			},
		},
	}
	bot := newFakeBot()
	result := e.Tick(bot, ctx)
	assert.Equal(t, behavior.Continue, result)
	assert.Equal(t, "east", bot.sent[0], "must not immediately backtrack south (the reverse of north) when another exit exists")
}

func TestExploreTakesReverseWhenNoOtherChoice(t *testing.T) {
	e := &Explore{lastDir: "north"}
	ctx := behavior.Context{
		Stats: msdp.CharacterStats{Position: msdp.PositionStanding},
		Room:  msdp.RoomInfo{Vnum: 1},
		Bot: textparse.BotSnapshot{
			Exits: []textparse.ExitRecord{{Dir: "south", Vnum: 2}},
		},
	}
	bot := newFakeBot()
	result := e.Tick(bot, ctx)
	assert.Equal(t, behavior.Continue, result)
	assert.Equal(t, "south", bot.sent[0])
}

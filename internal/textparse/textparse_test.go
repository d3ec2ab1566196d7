package textparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStripANSI(t *testing.T) {
	in := "\x1b[31mHello\x1b[0m world"
	assert.Equal(t, "Hello world", StripANSI(in))
}

func TestStripANSIIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		once := StripANSI(s)
		twice := StripANSI(once)
		assert.Equal(t, once, twice)
	})
}

func TestParsePromptSimple(t *testing.T) {
	p, ok := ParsePrompt("<123 45 67>")
	require.True(t, ok)
	assert.Equal(t, 123, p.HP)
	assert.Equal(t, 45, p.Mana)
	assert.Equal(t, 67, p.Move)
	assert.False(t, p.HasMax)
}

func TestParsePromptWithMax(t *testing.T) {
	p, ok := ParsePrompt("<100/150 30/50 60/70>")
	require.True(t, ok)
	assert.Equal(t, 100, p.HP)
	assert.Equal(t, 150, p.HPMax)
	assert.True(t, p.HasMax)
}

func TestParsePromptRelaxedBrackets(t *testing.T) {
	p, ok := ParsePrompt("[10 20 30]")
	require.True(t, ok)
	assert.Equal(t, 10, p.HP)
}

func TestParsePromptNotFound(t *testing.T) {
	_, ok := ParsePrompt("just some ordinary text")
	assert.False(t, ok)
}

func TestParseExitsBracket(t *testing.T) {
	exits, ok := ParseExits("[Exits: North South East]")
	require.True(t, ok)
	assert.Equal(t, []string{"north", "south", "east"}, exits)
}

func TestParseExitsObvious(t *testing.T) {
	exits, ok := ParseExits("Obvious exits: north, south.")
	require.True(t, ok)
	assert.Equal(t, []string{"north", "south"}, exits)
}

func TestParseExitsNone(t *testing.T) {
	exits, ok := ParseExits("[Exits: none]")
	require.True(t, ok)
	assert.Empty(t, exits)
}

func TestParseCombatPlayerAttack(t *testing.T) {
	ev, ok := ParseCombatEvent("Your sword misses the orc.")
	require.True(t, ok)
	assert.True(t, ev.IsPlayerAttack)
	assert.Equal(t, TierMiss, ev.Tier)
}

func TestParseCombatMobAttack(t *testing.T) {
	ev, ok := ParseCombatEvent("The orc's axe hits you.")
	require.True(t, ok)
	assert.False(t, ev.IsPlayerAttack)
	assert.Equal(t, TierHit, ev.Tier)
}

func TestParseCombatTierOrdering(t *testing.T) {
	assert.Less(t, int(TierMiss), int(TierEviscerate))
	assert.Less(t, int(TierHit), int(TierMaul))
}

func TestParseKill(t *testing.T) {
	name, ok := ParseKill("the orc is DEAD!")
	require.True(t, ok)
	assert.Equal(t, "the orc", name)
}

func TestParseXPGain(t *testing.T) {
	n, ok := ParseXPGain("You gain 150 experience.")
	require.True(t, ok)
	assert.Equal(t, 150, n)

	n2, ok := ParseXPGain("You receive 42 exp.")
	require.True(t, ok)
	assert.Equal(t, 42, n2)
}

func TestParseBotLineRoom(t *testing.T) {
	tag, room, _, _, _, ok := ParseBotLine("[BOT:ROOM|vnum=3001|flags=dark indoor|sector=city]")
	require.True(t, ok)
	assert.Equal(t, "ROOM", tag)
	require.NotNil(t, room)
	assert.Equal(t, 3001, room.Vnum)
	assert.Equal(t, []string{"dark", "indoor"}, room.Flags)
	assert.Equal(t, "city", room.Sector)
}

func TestParseBotLineRoomNoFlags(t *testing.T) {
	_, room, _, _, _, ok := ParseBotLine("[BOT:ROOM|vnum=1|flags=(none)|sector=city]")
	require.True(t, ok)
	assert.Empty(t, room.Flags)
}

func TestParseBotLineExit(t *testing.T) {
	tag, _, exit, _, _, ok := ParseBotLine("[BOT:EXIT|dir=north|vnum=3002|flags=(none)]")
	require.True(t, ok)
	assert.Equal(t, "EXIT", tag)
	assert.Equal(t, "north", exit.Dir)
	assert.Equal(t, 3002, exit.Vnum)
}

func TestParseBotLineMob(t *testing.T) {
	tag, _, _, mob, _, ok := ParseBotLine("[BOT:MOB|name=fido|vnum=100|level=5|flags=(none)|hp=100%|align=0]")
	require.True(t, ok)
	assert.Equal(t, "MOB", tag)
	assert.Equal(t, "fido", mob.Name)
	assert.Equal(t, 5, mob.Level)
	assert.Equal(t, 100, mob.HP)
}

func TestParseBotLineObj(t *testing.T) {
	tag, _, _, _, obj, ok := ParseBotLine("[BOT:OBJ|name=corpse|vnum=200|type=npccorpse|flags=(none)|wear=none]")
	require.True(t, ok)
	assert.Equal(t, "OBJ", tag)
	assert.Equal(t, "npccorpse", obj.Type)
}

func TestParseBotLineNotABotLine(t *testing.T) {
	_, _, _, _, _, ok := ParseBotLine("A plain line of text.")
	assert.False(t, ok)
}

// Round-trip law: parsing a BOT line and re-serializing its fields
// reproduces the same record (spec.md §8).
func TestMobRecordRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := MobRecord{
			Name:  rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "name"),
			Vnum:  rapid.IntRange(0, 99999).Draw(t, "vnum"),
			Level: rapid.IntRange(0, 100).Draw(t, "level"),
			HP:    rapid.IntRange(0, 100).Draw(t, "hp"),
			Align: rapid.IntRange(-1000, 1000).Draw(t, "align"),
		}
		line := FormatMobLine(m)
		_, _, _, parsed, _, ok := ParseBotLine(line)
		require.True(t, ok)
		assert.Equal(t, m.Name, parsed.Name)
		assert.Equal(t, m.Vnum, parsed.Vnum)
		assert.Equal(t, m.Level, parsed.Level)
		assert.Equal(t, m.HP, parsed.HP)
		assert.Equal(t, m.Align, parsed.Align)
	})
}

func TestDetectHeuristicMob(t *testing.T) {
	name, ok := DetectHeuristicMob("A scruffy dog is here.")
	require.True(t, ok)
	assert.Equal(t, "A scruffy dog", name)
}

func TestDetectHeuristicMobNoMatch(t *testing.T) {
	_, ok := DetectHeuristicMob("The room is quiet.")
	assert.False(t, ok)
}

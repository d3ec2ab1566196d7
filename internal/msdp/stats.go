package msdp

import "strings"

// Position is the character posture/state enum from spec.md §3, ordered
// from least to most capable so "stunned or worse" is a simple comparison.
type Position int

const (
	PositionDead Position = iota
	PositionMortal
	PositionIncap
	PositionStunned
	PositionSleeping
	PositionResting
	PositionSitting
	PositionFighting
	PositionStanding
)

var positionNames = map[string]Position{
	"DEAD":     PositionDead,
	"MORTAL":   PositionMortal,
	"INCAP":    PositionIncap,
	"STUNNED":  PositionStunned,
	"SLEEPING": PositionSleeping,
	"RESTING":  PositionResting,
	"SITTING":  PositionSitting,
	"FIGHTING": PositionFighting,
	"STANDING": PositionStanding,
}

// ParsePosition maps an MSDP POSITION atom to a Position. An unrecognized
// value defaults to PositionStanding (the least restrictive state) so an
// unknown server extension never spuriously blocks movement/combat.
func ParsePosition(s string) Position {
	if p, ok := positionNames[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return p
	}
	return PositionStanding
}

func (p Position) String() string {
	for name, pos := range positionNames {
		if pos == p {
			return name
		}
	}
	return "STANDING"
}

// CharacterStats is the derived, typed mirror of MSDP character variables
// (spec.md §3).
type CharacterStats struct {
	Health      int
	HealthMax   int
	Mana        int
	ManaMax     int
	Movement    int
	MovementMax int
	Level       int
	Experience  int
	Alignment   int
	Money       int

	InCombat bool

	OpponentName      string
	OpponentLevel     int
	OpponentHealth    int
	OpponentHealthMax int

	Position Position
}

// percent returns 100 when max <= 0 (spec.md §3 safety invariant), else
// 100*cur/max clamped to [0, 100].
func percent(cur, max int) float64 {
	if max <= 0 {
		return 100
	}
	p := 100 * float64(cur) / float64(max)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// HPPercent returns the health percentage, 100 when HealthMax <= 0.
func (s CharacterStats) HPPercent() float64 { return percent(s.Health, s.HealthMax) }

// ManaPercent returns the mana percentage, 100 when ManaMax <= 0.
func (s CharacterStats) ManaPercent() float64 { return percent(s.Mana, s.ManaMax) }

// MovePercent returns the movement percentage, 100 when MovementMax <= 0.
func (s CharacterStats) MovePercent() float64 { return percent(s.Movement, s.MovementMax) }

// IsDead reports whether the character's position is DEAD.
func (s CharacterStats) IsDead() bool { return s.Position == PositionDead }

// IsStunnedOrWorse reports whether the character cannot act at all.
func (s CharacterStats) IsStunnedOrWorse() bool { return s.Position <= PositionStunned }

// CanMove reports whether the character's position permits voluntary
// movement (resting/sitting/fighting/standing, after waking if needed).
func (s CharacterStats) CanMove() bool { return s.Position >= PositionResting }

// CanFight reports whether the character's position permits initiating or
// continuing combat.
func (s CharacterStats) CanFight() bool {
	return s.Position == PositionFighting || s.Position == PositionStanding
}

// RoomInfo is the derived, typed mirror of MSDP room variables.
type RoomInfo struct {
	Name  string
	Vnum  int
	Area  string
	Exits map[string]bool
}

// HasExit reports whether the room has an exit in the given direction
// (case-insensitive, accepts abbreviations via NormalizeDirection).
func (r RoomInfo) HasExit(dir string) bool {
	return r.Exits[NormalizeDirection(dir)]
}

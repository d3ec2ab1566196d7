package textparse

import "strings"

// DamageTier orders combat damage verbs from lightest to heaviest, per
// spec.md §4.4.
type DamageTier int

const (
	TierMiss DamageTier = iota
	TierScratch
	TierHit
	TierInjure
	TierMaul
	TierDevastate
	TierEviscerate
)

// verbTiers is the canonical ordering; 3rd-person forms are derived below.
var verbTiers = []struct {
	verb string
	tier DamageTier
}{
	{"miss", TierMiss},
	{"scratch", TierScratch},
	{"hit", TierHit},
	{"injure", TierInjure},
	{"maul", TierMaul},
	{"devastate", TierDevastate},
	{"eviscerate", TierEviscerate},
}

// thirdPerson derives the English 3rd-person singular form of a verb
// ("miss" -> "misses", "hit" -> "hits").
func thirdPerson(verb string) string {
	switch {
	case strings.HasSuffix(verb, "sh"), strings.HasSuffix(verb, "ch"),
		strings.HasSuffix(verb, "s"), strings.HasSuffix(verb, "x"), strings.HasSuffix(verb, "z"):
		return verb + "es"
	case strings.HasSuffix(verb, "e"):
		return verb + "s"
	default:
		return verb + "s"
	}
}

// CombatEvent is one parsed combat narration line.
type CombatEvent struct {
	Verb           string
	Tier           DamageTier
	IsPlayerAttack bool
	Raw            string
}

// ParseCombatEvent recognizes a combat narration line: "Your ... <verb>s
// ..." is tagged as a player attack; "<mob>'s ... <verb>s you" is tagged as
// an attack against the player.
func ParseCombatEvent(line string) (CombatEvent, bool) {
	lower := strings.ToLower(line)

	var tier DamageTier
	var verb string
	found := false
	for _, vt := range verbTiers {
		if strings.Contains(lower, vt.verb) || strings.Contains(lower, thirdPerson(vt.verb)) {
			tier = vt.tier
			verb = vt.verb
			found = true
			break
		}
	}
	if !found {
		return CombatEvent{}, false
	}

	isPlayerAttack := strings.HasPrefix(line, "Your ")
	isMobAttack := strings.Contains(line, "'s ") && strings.Contains(lower, " you")

	if !isPlayerAttack && !isMobAttack {
		return CombatEvent{}, false
	}

	return CombatEvent{
		Verb:           verb,
		Tier:           tier,
		IsPlayerAttack: isPlayerAttack,
		Raw:            line,
	}, true
}

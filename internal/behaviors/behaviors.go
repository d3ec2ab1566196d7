// Package behaviors implements C7: the concrete behavior library consumed
// by the C6 scheduler. Each behavior's priority and name are stable
// identifiers, matching spec.md §4.7's table.
package behaviors

import (
	"strings"

	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/msdp"
	"github.com/cory-johannsen/mudload/internal/textparse"
)

// Thresholds bundles the configurable percentages and limits the library's
// behaviors consult, sourced from config.BehaviorConfig.
type Thresholds struct {
	FleeHPPercent     float64
	RestHPPercent     float64
	RestManaPercent   float64
	RestMovePercent   float64
	AttackHPPercent   float64
	CriticalHPPercent float64
	DeepRestPercent   float64
	MaxLevelDiff      int
	Targets           []string
}

// mobDenyFlags is the deny list from spec.md §9's resolved open question:
// the newer core omits "aggressive", so aggressive mobs remain attackable.
var mobDenyFlags = map[string]bool{
	"pet": true, "train": true, "practice": true,
	"healer": true, "changer": true, "skill_train": true,
}

// mobDenyNameSubstrings rejects mobs whose name matches a non-combat NPC
// role regardless of flags.
var mobDenyNameSubstrings = []string{"guard", "cityguard", "shopkeeper", "healer"}

// stripMobPrefix removes ANSI escapes and a leading parenthetical (e.g. a
// "(White Aura) " prefix some servers prepend) from a mob's display name.
func stripMobPrefix(name string) string {
	name = strings.TrimSpace(name)
	for strings.HasPrefix(name, "(") {
		if idx := strings.Index(name, ")"); idx >= 0 {
			name = strings.TrimSpace(name[idx+1:])
		} else {
			break
		}
	}
	return name
}

// attackKeyword derives the `kill <keyword>` argument from a mob's display
// name: the first whitespace-delimited token, lower-cased, with ANSI
// escapes and parenthetical prefixes stripped (spec.md §4.7).
func attackKeyword(name string) string {
	name = stripMobPrefix(name)
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func hasDenyFlag(flags []string) bool {
	for _, f := range flags {
		if mobDenyFlags[strings.ToLower(f)] {
			return true
		}
	}
	return false
}

func hasDenyName(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range mobDenyNameSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func matchesWhitelist(name string, whitelist []string) bool {
	if len(whitelist) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, w := range whitelist {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// eligibleMob reports whether a mob (by level, flags, and name) is a legal
// Attack target under the deny-list/whitelist rules in spec.md §4.7.
func eligibleMob(name string, level int, flags []string, playerLevel, maxLevelDiff int, whitelist []string) bool {
	if level > playerLevel+maxLevelDiff {
		return false
	}
	if hasDenyFlag(flags) {
		return false
	}
	if hasDenyName(name) {
		return false
	}
	return matchesWhitelist(name, whitelist)
}

// selectTarget implements C7's target-selection rule over the structured
// BOT mob list only; the heuristic text fallback is applied by Attack
// itself when BOT mode is not active. Returns the attack keyword and the
// matched display name, or "" if no eligible target exists.
func selectTarget(ctx behavior.Context, playerLevel, maxLevelDiff int, whitelist []string) (keyword, name string) {
	for _, m := range ctx.Bot.Mobs {
		if eligibleMob(m.Name, m.Level, m.Flags, playerLevel, maxLevelDiff, whitelist) {
			return attackKeyword(m.Name), m.Name
		}
	}
	return "", ""
}

// heuristicMobFromText is the text-heuristic fallback used when the
// session has never seen structured BOT output (spec.md §4.4, §9).
func heuristicMobFromText(text string) (string, bool) {
	return textparse.DetectHeuristicMob(text)
}

// needsWakeAndStand reports whether a Position still needs to "wake then stand"
// before it can move — i.e. it is at least SITTING but not yet STANDING.
func needsWakeAndStand(pos msdp.Position) bool {
	return pos >= msdp.PositionSitting && pos < msdp.PositionStanding
}

package textparse

import "strings"

// heuristicMobPhrases are the room-description phrases that, absent BOT
// mode, signal a mob descriptor line (spec.md §4.4).
var heuristicMobPhrases = []string{
	"is here", "stands here", "leashed here", "resting here", "sleeping here",
}

// DetectHeuristicMob reports whether line describes a mob via the
// text-heuristic fallback, returning the descriptor with the matched
// phrase and trailing punctuation trimmed.
func DetectHeuristicMob(line string) (string, bool) {
	for _, phrase := range heuristicMobPhrases {
		if idx := strings.Index(line, phrase); idx >= 0 {
			name := strings.TrimSpace(line[:idx])
			name = strings.TrimSuffix(name, ".")
			if name == "" {
				continue
			}
			return name, true
		}
	}
	return "", false
}

package textparse

import (
	"regexp"
	"strconv"
)

var (
	killPattern = regexp.MustCompile(`^(.+?) is DEAD!+$`)
	xpPattern   = regexp.MustCompile(`(?i)You (?:gain|receive) (\d+) (?:experience|exp)`)
)

// ParseKill recognizes "<name> is DEAD!" and returns the slain name.
func ParseKill(line string) (string, bool) {
	m := killPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseXPGain recognizes "You gain|receive N experience|exp" and returns N.
func ParseXPGain(line string) (int, bool) {
	m := xpPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

package textparse

import (
	"regexp"
	"strconv"
)

// Prompt is a parsed status-line prompt: "<h m v>", "<h/H m/M v/V>", or the
// relaxed "[h m v]" form (spec.md §4.4).
type Prompt struct {
	HP, HPMax     int
	Mana, ManaMax int
	Move, MoveMax int
	HasMax        bool
}

var promptPattern = regexp.MustCompile(
	`[<\[](\d+)(?:/(\d+))?\s+(\d+)(?:/(\d+))?\s+(\d+)(?:/(\d+))?[>\]]`,
)

// ParsePrompt scans line for a recognized prompt shape.
//
// Postcondition: ok is true iff a prompt was found; HasMax is true iff any
// of the three fields carried a "/max" suffix.
func ParsePrompt(line string) (Prompt, bool) {
	m := promptPattern.FindStringSubmatch(line)
	if m == nil {
		return Prompt{}, false
	}

	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}

	p := Prompt{
		HP:      atoi(m[1]),
		HPMax:   atoi(m[2]),
		Mana:    atoi(m[3]),
		ManaMax: atoi(m[4]),
		Move:    atoi(m[5]),
		MoveMax: atoi(m[6]),
	}
	p.HasMax = m[2] != "" || m[4] != "" || m[6] != ""
	return p, true
}
